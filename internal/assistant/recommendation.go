package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/segmentio/ksuid"

	"aria/internal/domain"
	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/memory"
	"aria/internal/store"
)

// RecommendationService records what the user wants recommendations about.
type RecommendationService struct {
	gateway *llm.Gateway
	store   store.Store
	memory  memory.Provider
	log     logging.Logger
}

// NewRecommendationService wires the recommendation service.
func NewRecommendationService(gateway *llm.Gateway, s store.Store, provider memory.Provider, log logging.Logger) *RecommendationService {
	return &RecommendationService{gateway: gateway, store: s, memory: provider, log: logging.OrNop(log)}
}

type recommendationDraft struct {
	Subject string   `json:"subject"`
	Reason  string   `json:"reason"`
	Tags    []string `json:"tags"`
}

// Capture persists the recommendation request as an entertainment-category
// item.
func (s *RecommendationService) Capture(ctx context.Context, userID, text string) (domain.SavedItem, error) {
	draft := extract(ctx, s.gateway, "recommendation_extract", map[string]string{"text": text},
		func(d recommendationDraft) bool { return strings.TrimSpace(d.Subject) != "" },
		func() recommendationDraft {
			return recommendationDraft{Subject: truncateTitle(text, fallbackTitleRunes)}
		},
	)

	item, err := s.store.CreateItem(ctx, domain.SavedItem{
		ID:         ksuid.New().String(),
		UserID:     userID,
		Title:      strings.TrimSpace(draft.Subject),
		Content:    text,
		Summary:    strings.TrimSpace(draft.Reason),
		SourceType: "recommendation",
		Category:   domain.CategoryEntertainment,
		Tags:       lowerTags(draft.Tags),
	})
	if err != nil {
		return item, fmt.Errorf("save recommendation: %w", err)
	}

	memory.IngestAsync(s.memory, s.log, userID, []memory.Message{
		{Content: "[Extracted Memory] 想要推荐: " + item.Title},
	}, string(domain.CategoryEntertainment))

	s.log.Info("[%s] recorded recommendation request %q", logging.UserTag(userID), item.Title)
	return item, nil
}
