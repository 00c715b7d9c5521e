package assistant

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/segmentio/ksuid"

	"aria/internal/domain"
	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/memory"
	"aria/internal/store"
)

// LinkService captures shared URLs as saved items.
type LinkService struct {
	gateway *llm.Gateway
	store   store.Store
	memory  memory.Provider
	log     logging.Logger
}

// NewLinkService wires the link service.
func NewLinkService(gateway *llm.Gateway, s store.Store, provider memory.Provider, log logging.Logger) *LinkService {
	return &LinkService{gateway: gateway, store: s, memory: provider, log: logging.OrNop(log)}
}

var linkPattern = regexp.MustCompile(`(?i)https?://[^\s]+|www\.[^\s]+\.[a-z]{2,}[^\s]*`)

// FindURL returns the first URL-looking token in text, or "".
func FindURL(text string) string {
	return linkPattern.FindString(text)
}

type linkDraft struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	LinkType string   `json:"linkType"`
}

// linkTypeCategories maps the model's link type to an item category.
var linkTypeCategories = map[string]domain.Category{
	"article": domain.CategoryKnowledge,
	"video":   domain.CategoryEntertainment,
	"music":   domain.CategoryEntertainment,
	"tool":    domain.CategoryTool,
	"other":   domain.CategoryInspiration,
}

// Capture saves the link in text as a SavedItem with sourceType "link" and a
// category derived from the mapped link type.
func (s *LinkService) Capture(ctx context.Context, userID, text string) (domain.SavedItem, error) {
	rawURL := FindURL(text)

	draft := extract(ctx, s.gateway, "link_extract", map[string]string{
		"url":  rawURL,
		"text": text,
	}, func(d linkDraft) bool { return strings.TrimSpace(d.Title) != "" },
		func() linkDraft { return fallbackLinkDraft(rawURL, text) })

	category, ok := linkTypeCategories[strings.ToLower(draft.LinkType)]
	if !ok {
		category = domain.CategoryKnowledge
	}

	item, err := s.store.CreateItem(ctx, domain.SavedItem{
		ID:         ksuid.New().String(),
		UserID:     userID,
		Title:      strings.TrimSpace(draft.Title),
		Content:    text,
		Summary:    strings.TrimSpace(draft.Summary),
		SourceURL:  rawURL,
		SourceType: "link",
		Category:   category,
		Tags:       lowerTags(draft.Tags),
	})
	if err != nil {
		return item, fmt.Errorf("save link: %w", err)
	}

	memory.IngestAsync(s.memory, s.log, userID, []memory.Message{
		{Content: "[Extracted Memory] 收藏链接: " + item.Title + " " + item.SourceURL},
	}, string(category))

	s.log.Info("[%s] saved link %q category=%s", logging.UserTag(userID), item.Title, category)
	return item, nil
}

// fallbackLinkDraft derives a title from the URL host and path when the
// model gave nothing usable.
func fallbackLinkDraft(rawURL, text string) linkDraft {
	title := truncateTitle(text, fallbackTitleRunes)

	if rawURL != "" {
		candidate := rawURL
		if !strings.Contains(candidate, "://") {
			candidate = "https://" + candidate
		}
		if parsed, err := url.Parse(candidate); err == nil && parsed.Host != "" {
			title = parsed.Host
			if trimmed := strings.Trim(parsed.Path, "/"); trimmed != "" {
				title += "/" + trimmed
			}
		}
	}

	return linkDraft{Title: title, LinkType: "article"}
}
