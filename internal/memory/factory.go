package memory

import (
	"context"
	"time"

	"aria/internal/async"
	"aria/internal/logging"
	"aria/internal/store"
)

// Options selects and configures the concrete backend.
type Options struct {
	// Backend is one of "hosted", "vector", "relational", or "" (no memory).
	Backend string

	Hosted HostedConfig
	Vector VectorConfig
	// EmbedderURL enables the vector backend; empty leaves it unconfigured.
	EmbedderURL string
	EmbedModel  string

	Store store.Store
}

// NewProvider builds the configured backend. Missing credentials for the
// selected backend degrade to NopProvider with a warn log; selection never
// fails startup.
func NewProvider(opts Options, log logging.Logger) Provider {
	log = logging.OrNop(log)

	switch opts.Backend {
	case "hosted":
		if !opts.Hosted.Configured() {
			log.Warn("hosted memory backend selected but not configured; memory disabled")
			return NopProvider{}
		}
		return NewHostedProvider(opts.Hosted, log)

	case "vector":
		if opts.EmbedderURL == "" {
			log.Warn("vector memory backend selected but no embedder configured; memory disabled")
			return NopProvider{}
		}
		embedder := NewOllamaEmbedder(opts.EmbedderURL, opts.EmbedModel)
		provider, err := NewVectorProvider(opts.Vector, embedder, log)
		if err != nil {
			log.Warn("vector memory backend unavailable: %v; memory disabled", err)
			return NopProvider{}
		}
		return provider

	case "relational":
		if opts.Store == nil {
			log.Warn("relational memory backend selected but no store wired; memory disabled")
			return NopProvider{}
		}
		return NewRelationalProvider(opts.Store, log)

	case "":
		return NopProvider{}

	default:
		log.Warn("unknown memory backend %q; memory disabled", opts.Backend)
		return NopProvider{}
	}
}

const ingestTimeout = 15 * time.Second

// IngestAsync runs Ingest on a detached goroutine. The caller's response
// path never waits on it; rejection is routed to the log only. No ordering
// or at-least-once guarantee is provided.
func IngestAsync(provider Provider, log logging.Logger, userID string, messages []Message, category string) {
	if provider == nil {
		return
	}
	if _, ok := provider.(NopProvider); ok {
		return
	}
	log = logging.OrNop(log)

	async.Go(log, "memory-ingest", func() {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		if err := provider.Ingest(ctx, userID, messages, category); err != nil {
			log.Warn("[%s] memory ingest failed: %v", logging.UserTag(userID), err)
		}
	})
}
