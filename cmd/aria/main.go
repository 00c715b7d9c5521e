// Command aria is the natural-language assistant CLI. It accepts one-shot
// messages or runs an interactive chat loop on top of the configured store,
// memory backend and model endpoint.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"aria/internal/assistant"
	"aria/internal/config"
	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/memory"
	"aria/internal/prompts"
	"aria/internal/store"
	"aria/internal/store/inmemory"
	"aria/internal/store/postgres"
	"aria/internal/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var userID string

	root := &cobra.Command{
		Use:           "aria",
		Short:         "Natural-language personal assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&userID, "user", "default", "user the messages belong to")

	root.AddCommand(newMsgCmd(&configPath, &userID))
	root.AddCommand(newChatCmd(&configPath, &userID))
	return root
}

func newMsgCmd(configPath, userID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "msg <text>",
		Short: "Process a single message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer app.close()

			reply := app.assistant.Process(cmd.Context(), *userID, strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return nil
		},
	}
}

func newChatCmd(configPath, userID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat loop (exit with /quit)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer app.close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "aria ready. /quit to exit.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/quit" || line == "/exit" {
					return nil
				}
				reply := app.assistant.Process(cmd.Context(), *userID, line)
				fmt.Fprintln(out, reply.Text)
			}
		},
	}
}

// app holds the wired pipeline and whatever needs closing on exit.
type app struct {
	assistant *assistant.Assistant
	close     func()
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(cfg.Log.Level)
	log := logging.NewComponentLogger("aria")

	s, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	provider := memory.NewProvider(memory.Options{
		Backend: cfg.Memory.Backend,
		Hosted: memory.HostedConfig{
			BaseURL: cfg.Memory.HostedURL,
			APIKey:  cfg.Memory.HostedKey,
		},
		Vector:      memory.VectorConfig{PersistPath: cfg.Memory.VectorPath},
		EmbedderURL: cfg.Memory.EmbedderURL,
		EmbedModel:  cfg.Memory.EmbedModel,
		Store:       s,
	}, logging.NewComponentLogger("memory"))

	registry, err := prompts.NewRegistry()
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("load prompt templates: %w", err)
	}

	var client llm.Client
	llmConfig := llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout(),
	}
	if llmConfig.Configured() {
		client = llm.NewHTTPClient(llmConfig)
	} else {
		log.Warn("no model endpoint configured; running on fallback heuristics only")
	}
	gateway := llm.NewGateway(client, registry, cfg.LLM.Timeout(), logging.NewComponentLogger("llm"))

	return &app{
		assistant: assistant.New(gateway, s, provider, logging.NewComponentLogger("assistant")),
		close:     closeStore,
	}, nil
}

func openStore(cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		return inmemory.New(), func() {}, nil
	case "sqlite":
		path := cfg.SQLitePath
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := postgres.Open(context.Background(), cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
