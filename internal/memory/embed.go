package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// OllamaEmbedder calls a local Ollama-compatible embedding endpoint.
type OllamaEmbedder struct {
	client *resty.Client
	model  string
}

// NewOllamaEmbedder creates an embedder against baseURL (e.g.
// http://localhost:11434) using the given model.
func NewOllamaEmbedder(baseURL, model string) *OllamaEmbedder {
	if model == "" {
		model = "mxbai-embed-large"
	}
	return &OllamaEmbedder{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(30 * time.Second),
		model:  model,
	}
}

var _ Embedder = (*OllamaEmbedder)(nil)

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the embedding vector for text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var result embedResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embedRequest{Model: e.model, Prompt: text}).
		SetResult(&result).
		Post("/api/embeddings")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("embed status %d", resp.StatusCode())
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	return result.Embedding, nil
}
