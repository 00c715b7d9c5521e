package memory

import (
	"context"
	"strings"

	"github.com/segmentio/ksuid"

	"aria/internal/domain"
	"aria/internal/logging"
	"aria/internal/store"
)

// RelationalProvider stores memories as plain rows and recalls them with
// case-insensitive substring matching. It is the fallback strategy when no
// embedding function or hosted API is available.
type RelationalProvider struct {
	store store.Store
	log   logging.Logger
}

// NewRelationalProvider wraps the item store as a memory backend.
func NewRelationalProvider(s store.Store, log logging.Logger) *RelationalProvider {
	return &RelationalProvider{store: s, log: logging.OrNop(log)}
}

var _ Provider = (*RelationalProvider)(nil)

func (p *RelationalProvider) Search(ctx context.Context, userID, query string, limit int, categories ...string) string {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return ""
	}

	seen := make(map[string]bool)
	var contents []string
	appendRecords := func(records []domain.MemoryRecord) {
		for _, record := range records {
			if seen[record.ID] {
				continue
			}
			seen[record.ID] = true
			contents = append(contents, record.Content)
		}
	}

	// Whole-query match first, then per-token so multi-word queries still hit.
	records, err := p.store.SearchMemories(ctx, userID, query, limit, categories)
	if err != nil {
		p.log.Warn("[%s] relational memory search failed: %v", logging.UserTag(userID), err)
		return ""
	}
	appendRecords(records)

	if len(contents) < limit {
		for _, token := range searchTokens(query) {
			records, err := p.store.SearchMemories(ctx, userID, token, limit, categories)
			if err != nil {
				p.log.Warn("[%s] relational memory search failed: %v", logging.UserTag(userID), err)
				break
			}
			appendRecords(records)
			if len(contents) >= limit {
				break
			}
		}
	}

	return formatLines(contents, limit)
}

func (p *RelationalProvider) Ingest(ctx context.Context, userID string, messages []Message, category string) error {
	content := flatten(messages)
	if content == "" {
		return nil
	}
	_, err := p.store.InsertMemory(ctx, domain.MemoryRecord{
		ID:       ksuid.New().String(),
		UserID:   userID,
		Content:  content,
		Category: category,
	})
	return err
}

// searchTokens splits a query into coarse match candidates: whitespace-
// separated words plus bigrams of any CJK runs, since Chinese text has no
// word boundaries to split on.
func searchTokens(query string) []string {
	var tokens []string
	seen := make(map[string]bool)
	add := func(token string) {
		token = strings.TrimSpace(token)
		if len([]rune(token)) < 2 || seen[token] {
			return
		}
		seen[token] = true
		tokens = append(tokens, token)
	}

	for _, field := range strings.Fields(query) {
		runes := []rune(field)
		if isCJK(runes) {
			for i := 0; i+1 < len(runes); i++ {
				add(string(runes[i : i+2]))
			}
			continue
		}
		add(field)
	}
	return tokens
}

func isCJK(runes []rune) bool {
	for _, r := range runes {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}
