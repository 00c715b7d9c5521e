package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria/internal/domain"
	"aria/internal/intent"
	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/memory"
	"aria/internal/store/inmemory"
)

func TestCaptureKindsCoverAllCaptureIntents(t *testing.T) {
	for _, kind := range []intent.Intent{
		intent.IntentKnowledge, intent.IntentContent, intent.IntentInsight,
		intent.IntentLife, intent.IntentMusic,
	} {
		_, ok := captureKinds[kind]
		assert.True(t, ok, "missing capture kind %s", kind)
	}
}

func TestCaptureRejectsNonCaptureIntent(t *testing.T) {
	s := inmemory.New()
	svc := NewCaptureService(deadGateway(t), s, memory.NopProvider{}, logging.Nop())

	_, err := svc.Capture(context.Background(), "u1", "随便说说", intent.IntentTodo)
	assert.Error(t, err)
}

func TestCaptureIngestsIntoMemory(t *testing.T) {
	s := inmemory.New()
	mock := llm.NewMockClient("").
		Respond("知识", `{"title": "索引原理", "summary": "B+ 树的查找路径"}`)
	provider := memory.NewRelationalProvider(s, logging.Nop())
	svc := NewCaptureService(newTestGateway(t, mock), s, provider, logging.Nop())

	item, err := svc.Capture(context.Background(), "u1", "今天看了数据库索引的原理", intent.IntentKnowledge)
	require.NoError(t, err)
	assert.Equal(t, "索引原理", item.Title)

	require.Eventually(t, func() bool {
		records, err := s.SearchMemories(context.Background(), "u1", "索引原理", 10, nil)
		return err == nil && len(records) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The memory record carries the item category.
	records, err := s.SearchMemories(context.Background(), "u1", "索引原理", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, string(domain.CategoryKnowledge), records[0].Category)
}

func TestCaptureFallbackOnDeadModel(t *testing.T) {
	s := inmemory.New()
	svc := NewCaptureService(deadGateway(t), s, memory.NopProvider{}, logging.Nop())

	item, err := svc.Capture(context.Background(), "u1", "这首歌的旋律让我想起夏天", intent.IntentMusic)
	require.NoError(t, err)
	assert.Equal(t, "这首歌的旋律让我想起夏天", item.Title)
	assert.Equal(t, domain.CategoryEntertainment, item.Category)
	assert.Equal(t, "music", item.SourceType)
}

func TestLinkCaptureExtractsMetadata(t *testing.T) {
	s := inmemory.New()
	mock := llm.NewMockClient("").
		Respond(markLinkExtract, `{"title": "Go 泛型入门", "summary": "类型参数教程", "tags": ["Go"], "linkType": "article"}`)
	svc := NewLinkService(newTestGateway(t, mock), s, memory.NopProvider{}, logging.Nop())

	item, err := svc.Capture(context.Background(), "u1", "看看这个 https://blog.example.com/go-generics")
	require.NoError(t, err)
	assert.Equal(t, "Go 泛型入门", item.Title)
	assert.Equal(t, "https://blog.example.com/go-generics", item.SourceURL)
	assert.Equal(t, domain.CategoryKnowledge, item.Category)
}

func TestLinkTypeMapsToCategory(t *testing.T) {
	tests := []struct {
		linkType string
		want     domain.Category
	}{
		{"article", domain.CategoryKnowledge},
		{"video", domain.CategoryEntertainment},
		{"tool", domain.CategoryTool},
		{"other", domain.CategoryInspiration},
		{"something-new", domain.CategoryKnowledge},
	}
	for _, tt := range tests {
		t.Run(tt.linkType, func(t *testing.T) {
			s := inmemory.New()
			mock := llm.NewMockClient("").
				Respond(markLinkExtract, `{"title": "t", "linkType": "`+tt.linkType+`"}`)
			svc := NewLinkService(newTestGateway(t, mock), s, memory.NopProvider{}, logging.Nop())

			item, err := svc.Capture(context.Background(), "u1", "https://example.com/x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Category)
		})
	}
}

func TestFindURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a", FindURL("看看 https://example.com/a 这个"))
	assert.Equal(t, "www.example.com/b", FindURL("www.example.com/b 不错"))
	assert.Equal(t, "", FindURL("没有链接"))
}

func TestFeedbackSentimentNormalized(t *testing.T) {
	s := inmemory.New()
	mock := llm.NewMockClient("").
		Respond("反馈", `{"topic": "搜索太慢", "sentiment": "furious", "summary": "查询超过十秒"}`)
	svc := NewFeedbackService(newTestGateway(t, mock), s, memory.NopProvider{}, logging.Nop())

	item, err := svc.Capture(context.Background(), "u1", "搜索功能太慢了")
	require.NoError(t, err)
	assert.Equal(t, "搜索太慢", item.Title)
	assert.Equal(t, domain.CategoryProject, item.Category)
	// Unknown sentiment labels degrade to neutral.
	assert.Equal(t, []string{"feedback", "neutral"}, item.Tags)
}

func TestRecommendationCapture(t *testing.T) {
	s := inmemory.New()
	mock := llm.NewMockClient("").
		Respond("推荐", `{"subject": "科幻小说", "reason": "最近在看三体", "tags": ["科幻"]}`)
	svc := NewRecommendationService(newTestGateway(t, mock), s, memory.NopProvider{}, logging.Nop())

	item, err := svc.Capture(context.Background(), "u1", "最近在看三体，推荐点类似的科幻小说")
	require.NoError(t, err)
	assert.Equal(t, "科幻小说", item.Title)
	assert.Equal(t, "recommendation", item.SourceType)
	assert.Equal(t, domain.CategoryEntertainment, item.Category)
}
