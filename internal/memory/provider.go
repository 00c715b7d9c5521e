// Package memory abstracts long-term recall behind a two-method contract.
// Concrete backends differ in storage technology but are interchangeable at
// the call site; absence of a backend is itself a valid provider.
package memory

import (
	"context"
	"strings"
)

// Message is one turn of a conversation handed to Ingest.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the long-term memory contract.
//
// Search returns a human-readable block of up to limit relevant memory
// lines, or "" when nothing is found or the backend is unavailable, never
// an error. When categories are given, results are restricted to them.
//
// Ingest stores a small exchange for later retrieval. Callers must not block
// their response path on it; use IngestAsync. Failures are logged, never
// propagated to the user.
type Provider interface {
	Search(ctx context.Context, userID, query string, limit int, categories ...string) string
	Ingest(ctx context.Context, userID string, messages []Message, category string) error
}

// NopProvider is the explicit null object used when no backend is
// configured. Call sites never branch on nil.
type NopProvider struct{}

func (NopProvider) Search(context.Context, string, string, int, ...string) string {
	return ""
}

func (NopProvider) Ingest(context.Context, string, []Message, string) error {
	return nil
}

// flatten joins conversation turns into one searchable memory text.
func flatten(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Role == "" {
			parts = append(parts, content)
			continue
		}
		parts = append(parts, msg.Role+": "+content)
	}
	return strings.Join(parts, "\n")
}

// formatLines renders memory contents as the block callers inject into
// prompts, capped at limit.
func formatLines(contents []string, limit int) string {
	if limit <= 0 || len(contents) == 0 {
		return ""
	}
	if len(contents) > limit {
		contents = contents[:limit]
	}
	var b strings.Builder
	for _, content := range contents {
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(strings.ReplaceAll(content, "\n", " "))
	}
	return b.String()
}
