package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria/internal/domain"
	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/store"
	"aria/internal/store/inmemory"
)

func newTodoService(t *testing.T, client llm.Client) (*TodoService, *inmemory.Store) {
	t.Helper()
	s := inmemory.New()
	svc := NewTodoService(newTestGateway(t, client), s, logging.Nop())
	svc.now = func() time.Time { return wednesday }
	return svc, s
}

func TestCreateTodoWithExtractedDates(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markTodoExtract, `{"title": "交报告", "description": "季度总结"}`).
		Respond(markTodoDatetime, `{"date": "2030-03-20", "due": "2030-03-25"}`)
	svc, s := newTodoService(t, mock)

	todo, err := svc.CreateTodo(context.Background(), "u1", "三月初要交报告")
	require.NoError(t, err)

	assert.Equal(t, "交报告", todo.Title)
	assert.Equal(t, "季度总结", todo.Description)
	assert.Equal(t, domain.TodoPending, todo.Status)
	require.NotNil(t, todo.Date)
	assert.Equal(t, time.Date(2030, 3, 20, 8, 0, 0, 0, time.Local), *todo.Date)
	require.NotNil(t, todo.Due)
	assert.Equal(t, time.Date(2030, 3, 25, 23, 59, 59, 0, time.Local), *todo.Due)

	// A matching reminder goes out at the todo's date.
	reminders, err := s.ListPendingReminders(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "交报告", reminders[0].Title)
	assert.True(t, reminders[0].TriggerAt.Equal(*todo.Date))
}

func TestCreateTodoWithoutDateDefaultsToTonight(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markTodoExtract, `{"title": "买牛奶"}`).
		Respond(markTodoDatetime, `{"date": "", "due": ""}`)
	svc, _ := newTodoService(t, mock)

	todo, err := svc.CreateTodo(context.Background(), "u1", "记得买牛奶")
	require.NoError(t, err)

	require.NotNil(t, todo.Date)
	assert.Equal(t, time.Date(2030, 3, 13, 21, 0, 0, 0, time.Local), *todo.Date)
	assert.Nil(t, todo.Due)
}

func TestCreateTodoSurvivesDeadModel(t *testing.T) {
	svc, _ := newTodoService(t, nil)

	long := strings.Repeat("很长的待办描述", 10)
	todo, err := svc.CreateTodo(context.Background(), "u1", long)
	require.NoError(t, err)

	// Fallback title is the truncated raw text.
	assert.Equal(t, fallbackTitleRunes, len([]rune(todo.Title)))
	assert.True(t, strings.HasPrefix(long, todo.Title))
	require.NotNil(t, todo.Date)
	assert.Equal(t, 21, todo.Date.Hour())
}

func TestCreateTodoSurvivesGarbageOutput(t *testing.T) {
	mock := llm.NewMockClient("这不是 JSON，只是闲聊。")
	svc, _ := newTodoService(t, mock)

	todo, err := svc.CreateTodo(context.Background(), "u1", "记得买牛奶")
	require.NoError(t, err)
	assert.Equal(t, "记得买牛奶", todo.Title)
}

func TestCreateTodosBatch(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markTodoBatch, `[{"title": "买牛奶"}, {"title": "取快递"}]`).
		Respond(markTodoDatetime, `{"date": "2030-03-14 10:00"}`)
	svc, _ := newTodoService(t, mock)

	todos, err := svc.CreateTodos(context.Background(), "u1", "明天买牛奶，顺便取快递")
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "买牛奶", todos[0].Title)
	assert.Equal(t, "取快递", todos[1].Title)
	// The batch shares one extracted date.
	assert.True(t, todos[0].Date.Equal(*todos[1].Date))
}

func TestReminderNotDuplicated(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markTodoExtract, `{"title": "交报告"}`).
		Respond(markTodoDatetime, `{"date": "2030-03-16 09:00"}`)
	svc, s := newTodoService(t, mock)

	_, err := svc.CreateTodo(context.Background(), "u1", "周五交报告")
	require.NoError(t, err)
	_, err = svc.CreateTodo(context.Background(), "u1", "周五交报告")
	require.NoError(t, err)

	reminders, err := s.ListPendingReminders(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, reminders, 1)
}

func seedTodo(t *testing.T, s *inmemory.Store, id, userID, title string, date time.Time) domain.Todo {
	t.Helper()
	todo, err := s.CreateTodo(context.Background(), domain.Todo{
		ID:     id,
		UserID: userID,
		Title:  title,
		Status: domain.TodoPending,
		Date:   &date,
	})
	require.NoError(t, err)
	return todo
}

func TestUpdateTodoByMatchedID(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markTodoMatch, `{"matchedTodoId": "t1", "action": "完成", "confidence": 0.9}`)
	svc, s := newTodoService(t, mock)
	seedTodo(t, s, "t1", "u1", "写报告", wednesday)
	seedTodo(t, s, "t2", "u1", "买牛奶", wednesday)

	todo, err := svc.UpdateTodoByText(context.Background(), "u1", "报告写完了")
	require.NoError(t, err)
	require.NotNil(t, todo)
	assert.Equal(t, "t1", todo.ID)
	assert.Equal(t, domain.TodoDone, todo.Status)
}

func TestUpdateTodoLowConfidenceFallsBackToSubstring(t *testing.T) {
	// Confidence below the floor: the substring fallback must still find
	// 寫報告 inside 報告寫完了 once completion vocabulary is stripped.
	mock := llm.NewMockClient("").
		Respond(markTodoMatch, `{"matchedTodoId": "t1", "action": "完成", "confidence": 0.2}`)
	svc, s := newTodoService(t, mock)
	seedTodo(t, s, "t1", "u1", "寫報告", wednesday)
	seedTodo(t, s, "t2", "u1", "買牛奶", wednesday)

	todo, err := svc.UpdateTodoByText(context.Background(), "u1", "報告寫完了")
	require.NoError(t, err)
	require.NotNil(t, todo)
	assert.Equal(t, "t1", todo.ID)
	assert.Equal(t, domain.TodoDone, todo.Status)
}

func TestUpdateTodoCancelVocabulary(t *testing.T) {
	svc, s := newTodoService(t, nil)
	seedTodo(t, s, "t1", "u1", "开会", wednesday)

	todo, err := svc.UpdateTodoByText(context.Background(), "u1", "开会取消了")
	require.NoError(t, err)
	require.NotNil(t, todo)
	assert.Equal(t, domain.TodoCancelled, todo.Status)
}

func TestUpdateTodoNoMatch(t *testing.T) {
	svc, s := newTodoService(t, nil)
	seedTodo(t, s, "t1", "u1", "写报告", wednesday)

	todo, err := svc.UpdateTodoByText(context.Background(), "u1", "去健身房的事办完了")
	require.NoError(t, err)
	assert.Nil(t, todo)
}

func TestQueryTodosTomorrowDefaultsToPending(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markTodoQuery, `{"timeRange": "明天"}`)
	svc, s := newTodoService(t, mock)

	tomorrow := time.Date(2030, 3, 14, 9, 0, 0, 0, time.Local)
	seedTodo(t, s, "t1", "u1", "交报告", tomorrow)
	seedTodo(t, s, "t2", "u1", "买牛奶", wednesday)
	done := seedTodo(t, s, "t3", "u1", "取快递", tomorrow)
	require.NoError(t, s.UpdateTodoStatus(context.Background(), "u1", done.ID, domain.TodoDone))

	todos, err := svc.QueryTodosByText(context.Background(), "u1", "明天有什么安排")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "交报告", todos[0].Title)
}

func TestQueryTodosSpecificDateOutranksRange(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markTodoQuery, `{"specificDate": "2030-03-15", "timeRange": "本周"}`)
	svc, s := newTodoService(t, mock)

	seedTodo(t, s, "t1", "u1", "交报告", time.Date(2030, 3, 15, 9, 0, 0, 0, time.Local))
	seedTodo(t, s, "t2", "u1", "买牛奶", wednesday)

	todos, err := svc.QueryTodosByText(context.Background(), "u1", "周五有什么安排")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "交报告", todos[0].Title)
}

func TestQueryTodosExplicitStatusWins(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markTodoQuery, `{"timeRange": "本周", "status": "done"}`)
	svc, s := newTodoService(t, mock)

	seedTodo(t, s, "t1", "u1", "交报告", wednesday)
	done := seedTodo(t, s, "t2", "u1", "买牛奶", wednesday)
	require.NoError(t, s.UpdateTodoStatus(context.Background(), "u1", done.ID, domain.TodoDone))

	todos, err := svc.QueryTodosByText(context.Background(), "u1", "这周做完了什么")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "买牛奶", todos[0].Title)
}

func TestQueryTodosKeywordFilter(t *testing.T) {
	mock := llm.NewMockClient("").
		Respond(markTodoQuery, `{"keywords": ["报告"]}`)
	svc, s := newTodoService(t, mock)

	seedTodo(t, s, "t1", "u1", "写报告", wednesday)
	seedTodo(t, s, "t2", "u1", "买牛奶", wednesday)

	todos, err := svc.QueryTodosByText(context.Background(), "u1", "报告相关的任务")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "写报告", todos[0].Title)
}

func TestQueryTodosFallbackSpotsRangeInText(t *testing.T) {
	svc, s := newTodoService(t, nil)

	tomorrow := time.Date(2030, 3, 14, 9, 0, 0, 0, time.Local)
	seedTodo(t, s, "t1", "u1", "交报告", tomorrow)
	seedTodo(t, s, "t2", "u1", "买牛奶", wednesday)

	todos, err := svc.QueryTodosByText(context.Background(), "u1", "明天有什么安排")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "交报告", todos[0].Title)
}

func TestFallbackQueryDraft(t *testing.T) {
	assert.Equal(t, "明天", fallbackQueryDraft("明天有什么事").TimeRange)
	assert.Equal(t, queryDraft{}, fallbackQueryDraft("我的任务呢"))
}

func TestStripCompletionVocab(t *testing.T) {
	assert.Equal(t, "報告", stripCompletionVocab("報告寫完了"))
	assert.Equal(t, "报告", stripCompletionVocab("我把报告写完了"))
	assert.Equal(t, "", stripCompletionVocab("做完了"))
}

var _ store.Store = (*inmemory.Store)(nil)
