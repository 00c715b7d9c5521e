package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/segmentio/ksuid"

	"aria/internal/domain"
	"aria/internal/intent"
	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/memory"
	"aria/internal/store"
)

// CaptureService owns the single-purpose extraction flows (knowledge, life,
// music, insight, content): one template, one parse-or-fallback contract,
// one persisted item, one memory ingestion.
type CaptureService struct {
	gateway *llm.Gateway
	store   store.Store
	memory  memory.Provider
	log     logging.Logger
}

// NewCaptureService wires the capture service.
func NewCaptureService(gateway *llm.Gateway, s store.Store, provider memory.Provider, log logging.Logger) *CaptureService {
	return &CaptureService{gateway: gateway, store: s, memory: provider, log: logging.OrNop(log)}
}

type captureDraft struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

type captureKind struct {
	template string
	category domain.Category
}

// captureKinds maps a capture intent to its template and item category.
var captureKinds = map[intent.Intent]captureKind{
	intent.IntentKnowledge: {template: "knowledge_extract", category: domain.CategoryKnowledge},
	intent.IntentContent:   {template: "content_extract", category: domain.CategoryKnowledge},
	intent.IntentInsight:   {template: "insight_extract", category: domain.CategoryInspiration},
	intent.IntentLife:      {template: "life_extract", category: domain.CategoryEntertainment},
	intent.IntentMusic:     {template: "music_extract", category: domain.CategoryEntertainment},
}

// Capture persists text as a SavedItem for the given capture intent and
// feeds the extract into long-term memory tagged with the item category.
func (s *CaptureService) Capture(ctx context.Context, userID, text string, kind intent.Intent) (domain.SavedItem, error) {
	entry, ok := captureKinds[kind]
	if !ok {
		return domain.SavedItem{}, fmt.Errorf("intent %s is not a capture intent", kind)
	}

	draft := extract(ctx, s.gateway, entry.template, map[string]string{"text": text},
		func(d captureDraft) bool { return strings.TrimSpace(d.Title) != "" },
		func() captureDraft { return captureDraft{Title: truncateTitle(text, fallbackTitleRunes)} },
	)

	item, err := s.store.CreateItem(ctx, domain.SavedItem{
		ID:         ksuid.New().String(),
		UserID:     userID,
		Title:      strings.TrimSpace(draft.Title),
		Content:    text,
		Summary:    strings.TrimSpace(draft.Summary),
		SourceType: string(kind),
		Category:   entry.category,
		Tags:       lowerTags(draft.Tags),
	})
	if err != nil {
		return item, fmt.Errorf("save capture: %w", err)
	}

	summary := item.Summary
	if summary == "" {
		summary = truncateTitle(text, 60)
	}
	memory.IngestAsync(s.memory, s.log, userID, []memory.Message{
		{Content: "[Extracted Memory] " + item.Title + ": " + summary},
	}, string(entry.category))

	s.log.Info("[%s] captured %s item %q", logging.UserTag(userID), kind, item.Title)
	return item, nil
}
