package memory

import (
	"context"
	"fmt"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	chromem "github.com/philippgille/chromem-go"
	"github.com/segmentio/ksuid"

	"aria/internal/logging"
)

// Embedder turns text into a vector. The vector backend is inert without one.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

const embedCacheSize = 512

// VectorProvider indexes memories in an embedded chromem-go collection and
// recalls them by similarity. When constructed without an embedder it
// degrades to a no-op provider.
type VectorProvider struct {
	collection *chromem.Collection
	log        logging.Logger
}

// VectorConfig holds vector backend settings.
type VectorConfig struct {
	// PersistPath persists the index on disk; empty keeps it in memory.
	PersistPath string
	Collection  string
}

// NewVectorProvider builds the chromem-backed provider. Returns nil and an
// error only for real storage failures; a missing embedder is reported by
// the factory as "unconfigured", not here.
func NewVectorProvider(config VectorConfig, embedder Embedder, log logging.Logger) (*VectorProvider, error) {
	if embedder == nil {
		return nil, fmt.Errorf("vector provider requires an embedder")
	}
	if config.Collection == "" {
		config.Collection = "memories"
	}

	var db *chromem.DB
	var err error
	if config.PersistPath != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(config.PersistPath, "memories.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("open vector store: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	cache, err := lru.New[string, []float32](embedCacheSize)
	if err != nil {
		return nil, err
	}
	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		if vec, ok := cache.Get(text); ok {
			return vec, nil
		}
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		cache.Add(text, vec)
		return vec, nil
	}

	collection, err := db.GetOrCreateCollection(config.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	return &VectorProvider{collection: collection, log: logging.OrNop(log)}, nil
}

var _ Provider = (*VectorProvider)(nil)

func (p *VectorProvider) Search(ctx context.Context, userID, query string, limit int, categories ...string) string {
	if limit <= 0 || query == "" {
		return ""
	}

	count := p.collection.Count()
	if count == 0 {
		return ""
	}
	// Over-fetch so category post-filtering still fills the limit.
	n := limit * 4
	if n > count {
		n = count
	}

	results, err := p.collection.Query(ctx, query, n, map[string]string{"user_id": userID}, nil)
	if err != nil {
		p.log.Warn("[%s] vector memory search failed: %v", logging.UserTag(userID), err)
		return ""
	}

	allowed := make(map[string]bool, len(categories))
	for _, category := range categories {
		allowed[category] = true
	}

	var contents []string
	for _, result := range results {
		if len(allowed) > 0 && !allowed[result.Metadata["category"]] {
			continue
		}
		contents = append(contents, result.Content)
		if len(contents) >= limit {
			break
		}
	}
	return formatLines(contents, limit)
}

func (p *VectorProvider) Ingest(ctx context.Context, userID string, messages []Message, category string) error {
	content := flatten(messages)
	if content == "" {
		return nil
	}

	metadata := map[string]string{"user_id": userID}
	if category != "" {
		metadata["category"] = category
	}

	return p.collection.AddDocuments(ctx, []chromem.Document{{
		ID:       ksuid.New().String(),
		Content:  content,
		Metadata: metadata,
	}}, 1)
}
