package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"aria/internal/jsonx"
)

// Client abstracts a chat completion provider.
type Client interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Config selects the provider endpoint and model.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Configured reports whether credentials are present. An unconfigured client
// is a supported state; the gateway degrades to empty answers.
func (c Config) Configured() bool {
	return c.APIKey != "" && c.BaseURL != ""
}

// HTTPClient talks to any OpenAI-compatible chat completion endpoint.
type HTTPClient struct {
	config     Config
	httpClient *http.Client
}

// NewHTTPClient creates an HTTP-based chat client.
func NewHTTPClient(config Config) *HTTPClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Chat sends a chat completion request and returns the parsed response.
func (c *HTTPClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	if !c.config.Configured() {
		return nil, fmt.Errorf("llm client not configured")
	}

	req.Stream = false
	if req.Model == "" {
		req.Model = c.config.Model
	}

	body, err := jsonx.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat request status %d: %s", resp.StatusCode, preview)
	}

	var chatResp ChatResponse
	if err := jsonx.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &chatResp, nil
}
