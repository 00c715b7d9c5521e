package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria/internal/llm"
	"aria/internal/prompts"
)

func newGateway(t *testing.T, client llm.Client) *llm.Gateway {
	t.Helper()
	registry, err := prompts.NewRegistry()
	require.NoError(t, err)
	return llm.NewGateway(client, registry, 0, nil)
}

func TestClassifyUsesModelOutput(t *testing.T) {
	mock := llm.NewMockClient(`{"intent":"music","confidence":0.82}`)
	classifier := NewClassifier(newGateway(t, mock), nil)

	got := classifier.Classify(context.Background(), "u1", "刚听了一张很棒的专辑")
	assert.Equal(t, IntentMusic, got.Intent)
	assert.InDelta(t, 0.82, got.Confidence, 1e-9)
}

func TestClassifyNormalizesTodoSubIntent(t *testing.T) {
	mock := llm.NewMockClient(`<JSON>{"intent":"todo","subIntent":null,"confidence":1.4}</JSON>`)
	classifier := NewClassifier(newGateway(t, mock), nil)

	got := classifier.Classify(context.Background(), "u1", "记得买牛奶")
	assert.Equal(t, IntentTodo, got.Intent)
	assert.Equal(t, SubIntentCreate, got.SubIntent)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestClassifyGarbageFallsBackToKeywords(t *testing.T) {
	mock := llm.NewMockClient("我觉得这可能是个 todo 吧")
	classifier := NewClassifier(newGateway(t, mock), nil)

	got := classifier.Classify(context.Background(), "u1", "记得明天要交报告")
	assert.Equal(t, IntentTodo, got.Intent)
	assert.Equal(t, SubIntentCreate, got.SubIntent)
}

func TestClassifyUnknownIntentFallsBack(t *testing.T) {
	mock := llm.NewMockClient(`{"intent":"banana","confidence":0.99}`)
	classifier := NewClassifier(newGateway(t, mock), nil)

	got := classifier.Classify(context.Background(), "u1", "https://example.com/post")
	assert.Equal(t, IntentLink, got.Intent)
}

func TestClassifyUnconfiguredGatewayFallsBack(t *testing.T) {
	classifier := NewClassifier(newGateway(t, nil), nil)

	got := classifier.Classify(context.Background(), "u1", "有哪些待办没做完")
	assert.Equal(t, IntentTodo, got.Intent)
	assert.Equal(t, SubIntentQuery, got.SubIntent)
}

func TestKeywordHeuristicsOrdering(t *testing.T) {
	cases := []struct {
		text      string
		intent    Intent
		subIntent SubIntent
	}{
		// URL outranks everything, even todo vocabulary in the same text.
		{"记得看 https://example.com/a", IntentLink, SubIntentNone},
		{"www.example.com 这个不错", IntentLink, SubIntentNone},
		// Todo vocabulary with a query verb beats the update/create rules.
		{"查一下我的待办有哪些", IntentTodo, SubIntentQuery},
		// Completion vocabulary wins over plain create.
		{"报告写完了", IntentTodo, SubIntentUpdate},
		{"取消明天的任务", IntentTodo, SubIntentUpdate},
		{"记得明天要交报告", IntentTodo, SubIntentCreate},
		{"这个产品我想反馈一个问题", IntentFeedback, SubIntentNone},
		{"推荐一部电影", IntentRecommendation, SubIntentNone},
		{"找一下我之前说过的话", IntentChatHistory, SubIntentNone},
		{"今天天气真好", IntentOther, SubIntentNone},
	}

	for _, tc := range cases {
		got := ClassifyByKeywords(tc.text)
		assert.Equal(t, tc.intent, got.Intent, "text: %s", tc.text)
		assert.Equal(t, tc.subIntent, got.SubIntent, "text: %s", tc.text)
	}
}

func TestKeywordDefaultConfidence(t *testing.T) {
	got := ClassifyByKeywords("随便聊聊")
	assert.Equal(t, IntentOther, got.Intent)
	assert.Equal(t, 0.5, got.Confidence)
}
