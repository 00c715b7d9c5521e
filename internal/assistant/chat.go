package assistant

import (
	"context"
	"strings"

	"aria/internal/domain"
	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/memory"
	"aria/internal/store"
)

const (
	chatMemoryLimit    = 5
	chatRecentFallback = 3
	historyLimit       = 10

	// noAnswerMessage is the worst-case user-visible outcome; raw errors
	// never reach the user.
	noAnswerMessage = "我暂时没法回答这个问题，稍后再试试吧。"
	nothingFoundMsg = "没有找到相关的记录。"
)

// ChatService is the retrieval-then-generate conversation flow: memory
// first, persisted items as fallback context, then one generation call.
type ChatService struct {
	gateway *llm.Gateway
	store   store.Store
	memory  memory.Provider
	log     logging.Logger
}

// NewChatService wires the chat orchestrator.
func NewChatService(gateway *llm.Gateway, s store.Store, provider memory.Provider, log logging.Logger) *ChatService {
	return &ChatService{gateway: gateway, store: s, memory: provider, log: logging.OrNop(log)}
}

// Chat answers text using the user's memories, or their most recent items
// when memory has nothing, and feeds the exchange back into memory.
func (s *ChatService) Chat(ctx context.Context, userID, text string) string {
	contextBlock := s.memory.Search(ctx, userID, text, chatMemoryLimit)
	source := "memory"
	if contextBlock == "" {
		source = "recent-items"
		items, err := s.store.ListRecentItems(ctx, userID, chatRecentFallback)
		if err != nil {
			s.log.Warn("[%s] recent items fallback failed: %v", logging.UserTag(userID), err)
		}
		contextBlock = formatItems(items)
	}
	s.log.Info("[%s] chat context from %s (%d chars) for %q",
		logging.UserTag(userID), source, len(contextBlock), logging.Preview(text, 40))

	answer := s.gateway.Generate(ctx, "chat_answer", map[string]string{
		"context": contextBlock,
		"text":    text,
	})
	if answer == "" {
		return noAnswerMessage
	}

	memory.IngestAsync(s.memory, s.log, userID, []memory.Message{
		{Role: "user", Content: text},
		{Role: "assistant", Content: answer},
	}, "")
	return answer
}

type keywordDraft struct {
	Keywords []string `json:"keywords"`
}

// tagVocabulary maps utterance keywords to item tags for the history
// fallback search.
var tagVocabulary = map[string]string{
	"音乐": "music", "歌": "music", "专辑": "music",
	"电影": "movie", "视频": "video",
	"书": "reading", "阅读": "reading", "文章": "article",
	"工作": "work", "项目": "project",
	"学习": "study", "笔记": "study",
	"链接": "link", "网站": "link",
	"灵感": "inspiration", "想法": "inspiration",
	"美食": "food", "吃": "food",
	"旅行": "travel", "旅游": "travel",
	"运动": "sports", "健身": "sports",
}

// SearchHistory answers a question about the user's own records. Memory is
// tried first; otherwise keywords and derived tags drive a search over
// persisted items. When truly nothing is found the generator is not called.
func (s *ChatService) SearchHistory(ctx context.Context, userID, query string) string {
	contextBlock := s.memory.Search(ctx, userID, query, historyLimit)

	if contextBlock == "" {
		items := s.fallbackItemSearch(ctx, userID, query)
		if len(items) == 0 {
			return nothingFoundMsg
		}
		contextBlock = formatItems(items)
	}

	answer := s.gateway.Generate(ctx, "history_answer", map[string]string{
		"context": contextBlock,
		"text":    query,
	})
	if answer == "" {
		// No generator: surface the retrieved records directly.
		return contextBlock
	}
	return answer
}

func (s *ChatService) fallbackItemSearch(ctx context.Context, userID, query string) []domain.SavedItem {
	draft := extract(ctx, s.gateway, "history_keywords", map[string]string{"text": query},
		func(d keywordDraft) bool { return len(d.Keywords) > 0 },
		func() keywordDraft { return keywordDraft{Keywords: []string{query}} },
	)

	var tags []string
	for vocab, tag := range tagVocabulary {
		if strings.Contains(query, vocab) {
			tags = append(tags, tag)
		}
	}

	seen := make(map[string]bool)
	var results []domain.SavedItem
	appendItems := func(items []domain.SavedItem) {
		for _, item := range items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			results = append(results, item)
		}
	}

	if len(tags) > 0 {
		items, err := s.store.SearchItemsByTags(ctx, userID, tags)
		if err != nil {
			s.log.Warn("[%s] tag search failed: %v", logging.UserTag(userID), err)
		}
		appendItems(items)
	}
	for _, keyword := range draft.Keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		items, err := s.store.SearchItemsByText(ctx, userID, keyword)
		if err != nil {
			s.log.Warn("[%s] text search failed: %v", logging.UserTag(userID), err)
			continue
		}
		appendItems(items)
		if len(results) >= historyLimit {
			break
		}
	}

	if len(results) > historyLimit {
		results = results[:historyLimit]
	}
	return results
}

func formatItems(items []domain.SavedItem) string {
	var b strings.Builder
	for _, item := range items {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		if item.Title != "" {
			b.WriteString(item.Title)
			b.WriteString(": ")
		}
		body := item.Summary
		if body == "" {
			body = truncateTitle(item.Content, 80)
		}
		b.WriteString(body)
	}
	return b.String()
}
