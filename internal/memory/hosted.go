package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"aria/internal/logging"
)

// HostedProvider delegates both search and ingestion to a remote memory API.
type HostedProvider struct {
	client *resty.Client
	log    logging.Logger
}

// HostedConfig holds hosted backend credentials.
type HostedConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Configured reports whether the hosted backend can be used.
func (c HostedConfig) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// NewHostedProvider builds a client for the remote memory service.
func NewHostedProvider(config HostedConfig, log logging.Logger) *HostedProvider {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetAuthToken(config.APIKey).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &HostedProvider{client: client, log: logging.OrNop(log)}
}

var _ Provider = (*HostedProvider)(nil)

type hostedSearchRequest struct {
	UserID     string   `json:"userId"`
	Query      string   `json:"query"`
	TopK       int      `json:"topK"`
	Categories []string `json:"categories,omitempty"`
}

type hostedSearchResponse struct {
	Entries []struct {
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"entries"`
}

type hostedAddRequest struct {
	RequestID string    `json:"requestId"`
	UserID    string    `json:"userId"`
	Messages  []Message `json:"messages"`
	Category  string    `json:"category,omitempty"`
}

func (p *HostedProvider) Search(ctx context.Context, userID, query string, limit int, categories ...string) string {
	if limit <= 0 || query == "" {
		return ""
	}

	var result hostedSearchResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(hostedSearchRequest{UserID: userID, Query: query, TopK: limit, Categories: categories}).
		SetResult(&result).
		Post("/api/search")
	if err != nil {
		p.log.Warn("[%s] hosted memory search failed: %v", logging.UserTag(userID), err)
		return ""
	}
	if resp.IsError() {
		p.log.Warn("[%s] hosted memory search status %d", logging.UserTag(userID), resp.StatusCode())
		return ""
	}

	contents := make([]string, 0, len(result.Entries))
	for _, entry := range result.Entries {
		contents = append(contents, entry.Content)
	}
	return formatLines(contents, limit)
}

func (p *HostedProvider) Ingest(ctx context.Context, userID string, messages []Message, category string) error {
	if len(messages) == 0 {
		return nil
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(hostedAddRequest{
			RequestID: uuid.NewString(),
			UserID:    userID,
			Messages:  messages,
			Category:  category,
		}).
		Post("/api/memories")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("hosted memory add status %d", resp.StatusCode())
	}
	return nil
}
