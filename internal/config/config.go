// Package config loads runtime configuration from an optional YAML file and
// ARIA_* environment variables, with env taking precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LLMConfig configures the chat model endpoint. An empty BaseURL or APIKey
// leaves the gateway unconfigured; the pipeline then runs on fallbacks only.
type LLMConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MemoryConfig selects the long-term memory backend.
type MemoryConfig struct {
	Backend     string `mapstructure:"backend"`
	HostedURL   string `mapstructure:"hosted_url"`
	HostedKey   string `mapstructure:"hosted_key"`
	VectorPath  string `mapstructure:"vector_path"`
	EmbedderURL string `mapstructure:"embedder_url"`
	EmbedModel  string `mapstructure:"embed_model"`
}

// StoreConfig selects the persistence driver.
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	DSN        string `mapstructure:"dsn"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LogConfig configures log output.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the full runtime configuration.
type Config struct {
	LLM    LLMConfig    `mapstructure:"llm"`
	Memory MemoryConfig `mapstructure:"memory"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("memory.backend", "relational")
	v.SetDefault("memory.embed_model", "mxbai-embed-large")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.sqlite_path", "aria.db")
	v.SetDefault("log.level", "info")
}

// Load reads configuration from path (optional, "" skips the file) and the
// environment. ARIA_LLM_API_KEY overrides llm.api_key, and so on.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("ARIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface keys without defaults through
	// Unmarshal, so bind every known key explicitly.
	for _, key := range []string{
		"llm.base_url", "llm.api_key", "llm.model", "llm.timeout_seconds",
		"memory.backend", "memory.hosted_url", "memory.hosted_key",
		"memory.vector_path", "memory.embedder_url", "memory.embed_model",
		"store.driver", "store.dsn", "store.sqlite_path",
		"log.level",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
