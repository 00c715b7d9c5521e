package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger defines a minimal, printf-style logging contract.
//
// Services depend on this interface rather than a concrete logger so tests
// can capture output and callers can silence components independently.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}

var (
	rootOnce sync.Once
	root     zerolog.Logger
)

func rootLogger() zerolog.Logger {
	rootOnce.Do(func() {
		level := zerolog.InfoLevel
		if parsed, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("ARIA_LOG_LEVEL"))); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
		var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		root = zerolog.New(out).Level(level).With().Timestamp().Logger()
	})
	return root
}

// SetLevel adjusts the root logger level for every component logger created afterwards.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		return
	}
	rootLogger()
	root = root.Level(parsed)
}

type componentLogger struct {
	log zerolog.Logger
}

// NewComponentLogger returns the default application logger scoped to a component.
func NewComponentLogger(component string) Logger {
	return &componentLogger{log: rootLogger().With().Str("component", component).Logger()}
}

func (l *componentLogger) Debug(format string, args ...any) {
	l.log.Debug().Msg(fmt.Sprintf(format, args...))
}

func (l *componentLogger) Info(format string, args ...any) {
	l.log.Info().Msg(fmt.Sprintf(format, args...))
}

func (l *componentLogger) Warn(format string, args ...any) {
	l.log.Warn().Msg(fmt.Sprintf(format, args...))
}

func (l *componentLogger) Error(format string, args ...any) {
	l.log.Error().Msg(fmt.Sprintf(format, args...))
}

// UserTag shortens a user id for log lines so raw identifiers stay out of logs.
func UserTag(userID string) string {
	if len(userID) <= 8 {
		return userID
	}
	return userID[:8]
}

// Preview truncates free text for log lines.
func Preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
