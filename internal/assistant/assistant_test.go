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

func newAssistant(t *testing.T, client llm.Client) (*Assistant, *inmemory.Store) {
	t.Helper()
	s := inmemory.New()
	return New(newTestGateway(t, client), s, memory.NopProvider{}, logging.Nop()), s
}

func TestProcessCreatesTodoEndToEnd(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markClassify, `{"intent": "todo", "subIntent": "create", "confidence": 0.92}`).
		Respond(markTodoBatch, `[{"title": "交报告"}]`).
		Respond(markTodoDatetime, `{"date": "2030-03-14"}`)
	a, s := newAssistant(t, mock)

	reply := a.Process(context.Background(), "u1", "记得明天要交报告")

	assert.Equal(t, intent.IntentTodo, reply.Intent)
	assert.Equal(t, intent.SubIntentCreate, reply.SubIntent)
	require.Len(t, reply.Todos, 1)
	todo := reply.Todos[0]
	assert.Equal(t, "交报告", todo.Title)
	require.NotNil(t, todo.Date)
	// A bare extracted date lands at 08:00 local.
	assert.Equal(t, time.Date(2030, 3, 14, 8, 0, 0, 0, time.Local), *todo.Date)
	assert.Contains(t, reply.Text, "交报告")

	reminders, err := s.ListPendingReminders(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].TriggerAt.Equal(*todo.Date))
}

func TestProcessBareURLWithDeadModel(t *testing.T) {
	a, s := newAssistant(t, nil)

	reply := a.Process(context.Background(), "u1", "https://example.com/articles/go-generics")

	assert.Equal(t, intent.IntentLink, reply.Intent)
	require.NotNil(t, reply.Item)
	assert.Equal(t, "link", reply.Item.SourceType)
	assert.Equal(t, domain.CategoryKnowledge, reply.Item.Category)
	assert.Equal(t, "example.com/articles/go-generics", reply.Item.Title)

	items, err := s.ListRecentItems(context.Background(), "u1", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/articles/go-generics", items[0].SourceURL)
}

func TestProcessKnowledgeCapture(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markClassify, `{"intent": "knowledge", "confidence": 0.8}`).
		Respond("知识", `{"title": "Go 泛型", "summary": "类型参数的用法", "tags": ["Go", "泛型"]}`)
	a, _ := newAssistant(t, mock)

	reply := a.Process(context.Background(), "u1", "今天学了 Go 泛型的类型参数")

	assert.Equal(t, intent.IntentKnowledge, reply.Intent)
	require.NotNil(t, reply.Item)
	assert.Equal(t, "Go 泛型", reply.Item.Title)
	assert.Equal(t, domain.CategoryKnowledge, reply.Item.Category)
	assert.Equal(t, []string{"go", "泛型"}, reply.Item.Tags)
}

func TestProcessTodoUpdateRoute(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markClassify, `{"intent": "todo", "subIntent": "update", "confidence": 0.9}`).
		Respond(markTodoMatch, `{"matchedTodoId": "t1", "action": "完成", "confidence": 0.9}`)
	a, s := newAssistant(t, mock)
	seedTodo(t, s, "t1", "u1", "写报告", wednesday)

	reply := a.Process(context.Background(), "u1", "报告写完了")

	assert.Equal(t, intent.SubIntentUpdate, reply.SubIntent)
	require.Len(t, reply.Todos, 1)
	assert.Equal(t, domain.TodoDone, reply.Todos[0].Status)
	assert.Contains(t, reply.Text, "已完成")
}

func TestProcessChatRoute(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markClassify, `{"intent": "other", "confidence": 0.5}`).
		Respond(markChatAnswer, "今天也要加油。")
	a, _ := newAssistant(t, mock)

	reply := a.Process(context.Background(), "u1", "今天好累")

	assert.Equal(t, intent.IntentOther, reply.Intent)
	assert.Equal(t, "今天也要加油。", reply.Text)
}

func TestProcessHistoryRoute(t *testing.T) {
	a, _ := newAssistant(t, nil)

	// Keyword fallback classifies the lookup phrasing as a history search.
	reply := a.Process(context.Background(), "u1", "找一下我之前说过的话")

	assert.Equal(t, intent.IntentChatHistory, reply.Intent)
	assert.Equal(t, nothingFoundMsg, reply.Text)
}

func TestProcessGarbageModelOutputNeverPanics(t *testing.T) {
	// Every template call answers non-JSON chatter. No route may panic and
	// each reply must still carry user-facing text.
	mock := llm.NewMockClient("咦，这个我不太明白呢。")
	a, _ := newAssistant(t, mock)

	inputs := []string{
		"记得明天要交报告",
		"报告写完了",
		"明天有什么安排",
		"https://example.com 不错的文章",
		"这首歌真好听",
		"随便聊聊",
	}
	for _, input := range inputs {
		reply := a.Process(context.Background(), "u1", input)
		assert.NotEmpty(t, reply.Text, "input %q", input)
	}
}

func TestProcessEmptyInput(t *testing.T) {
	a, _ := newAssistant(t, nil)
	reply := a.Process(context.Background(), "u1", "   ")
	assert.Equal(t, intent.IntentOther, reply.Intent)
	assert.NotEmpty(t, reply.Text)
}

func TestFormatTodoList(t *testing.T) {
	assert.Equal(t, "这个时间段没有待办。", formatTodoList(nil))

	at := time.Date(2030, 3, 14, 8, 0, 0, 0, time.Local)
	got := formatTodoList([]domain.Todo{{Title: "交报告", Date: &at}})
	assert.Contains(t, got, "共 1 个待办")
	assert.Contains(t, got, "交报告 (03-14 08:00)")
}
