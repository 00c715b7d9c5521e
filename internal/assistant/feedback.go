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

// FeedbackService records user feedback with a sentiment label.
type FeedbackService struct {
	gateway *llm.Gateway
	store   store.Store
	memory  memory.Provider
	log     logging.Logger
}

// NewFeedbackService wires the feedback service.
func NewFeedbackService(gateway *llm.Gateway, s store.Store, provider memory.Provider, log logging.Logger) *FeedbackService {
	return &FeedbackService{gateway: gateway, store: s, memory: provider, log: logging.OrNop(log)}
}

type feedbackDraft struct {
	Topic     string `json:"topic"`
	Sentiment string `json:"sentiment"`
	Summary   string `json:"summary"`
}

var knownSentiments = map[string]bool{"positive": true, "negative": true, "neutral": true}

// Capture persists the feedback as a project-category item tagged with its
// sentiment.
func (s *FeedbackService) Capture(ctx context.Context, userID, text string) (domain.SavedItem, error) {
	draft := extract(ctx, s.gateway, "feedback_extract", map[string]string{"text": text},
		func(d feedbackDraft) bool { return strings.TrimSpace(d.Topic) != "" },
		func() feedbackDraft {
			return feedbackDraft{Topic: truncateTitle(text, fallbackTitleRunes), Sentiment: "neutral"}
		},
	)
	if !knownSentiments[draft.Sentiment] {
		draft.Sentiment = "neutral"
	}

	item, err := s.store.CreateItem(ctx, domain.SavedItem{
		ID:         ksuid.New().String(),
		UserID:     userID,
		Title:      strings.TrimSpace(draft.Topic),
		Content:    text,
		Summary:    strings.TrimSpace(draft.Summary),
		SourceType: "feedback",
		Category:   domain.CategoryProject,
		Tags:       []string{"feedback", draft.Sentiment},
	})
	if err != nil {
		return item, fmt.Errorf("save feedback: %w", err)
	}

	memory.IngestAsync(s.memory, s.log, userID, []memory.Message{
		{Content: "[Extracted Memory] 反馈(" + draft.Sentiment + "): " + item.Title},
	}, string(domain.CategoryProject))

	s.log.Info("[%s] recorded %s feedback %q", logging.UserTag(userID), draft.Sentiment, item.Title)
	return item, nil
}
