// Package assistant turns free-form user messages into persisted todos,
// saved items and conversational answers. Every entry point degrades to a
// deterministic heuristic when the model is unavailable, so a message is
// never dropped on the floor.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"aria/internal/domain"
	"aria/internal/intent"
	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/memory"
	"aria/internal/store"
)

// Reply is the outcome of processing one user message.
type Reply struct {
	Intent    intent.Intent
	SubIntent intent.SubIntent
	Text      string
	Item      *domain.SavedItem
	Todos     []domain.Todo
}

// Assistant routes classified messages to the matching service.
type Assistant struct {
	classifier     *intent.Classifier
	todos          *TodoService
	links          *LinkService
	captures       *CaptureService
	feedback       *FeedbackService
	recommendation *RecommendationService
	chat           *ChatService
	log            logging.Logger
}

// New wires the full message pipeline on top of one gateway, store and
// memory provider.
func New(gateway *llm.Gateway, s store.Store, provider memory.Provider, log logging.Logger) *Assistant {
	log = logging.OrNop(log)
	return &Assistant{
		classifier:     intent.NewClassifier(gateway, log),
		todos:          NewTodoService(gateway, s, log),
		links:          NewLinkService(gateway, s, provider, log),
		captures:       NewCaptureService(gateway, s, provider, log),
		feedback:       NewFeedbackService(gateway, s, provider, log),
		recommendation: NewRecommendationService(gateway, s, provider, log),
		chat:           NewChatService(gateway, s, provider, log),
		log:            log,
	}
}

// Todos exposes the todo service for callers that address it directly.
func (a *Assistant) Todos() *TodoService { return a.todos }

// Chat exposes the conversational service.
func (a *Assistant) Chat() *ChatService { return a.chat }

// Process classifies text and dispatches it. The returned Reply always has
// user-facing Text, even when a downstream service failed.
func (a *Assistant) Process(ctx context.Context, userID, text string) Reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Intent: intent.IntentOther, Text: noAnswerMessage}
	}

	c := a.classifier.Classify(ctx, userID, text)
	a.log.Info("[%s] intent %s/%s (%.2f) for %q",
		logging.UserTag(userID), c.Intent, c.SubIntent, c.Confidence, logging.Preview(text, 40))

	reply := Reply{Intent: c.Intent, SubIntent: c.SubIntent}
	switch c.Intent {
	case intent.IntentTodo:
		a.processTodo(ctx, userID, text, c.SubIntent, &reply)
	case intent.IntentLink:
		item, err := a.links.Capture(ctx, userID, text)
		a.fillCapture(&reply, item, err, "链接已收藏: %s")
	case intent.IntentKnowledge, intent.IntentLife, intent.IntentMusic,
		intent.IntentInsight, intent.IntentContent:
		item, err := a.captures.Capture(ctx, userID, text, c.Intent)
		a.fillCapture(&reply, item, err, "已记下: %s")
	case intent.IntentFeedback:
		item, err := a.feedback.Capture(ctx, userID, text)
		a.fillCapture(&reply, item, err, "反馈已记录: %s")
	case intent.IntentRecommendation:
		item, err := a.recommendation.Capture(ctx, userID, text)
		a.fillCapture(&reply, item, err, "已记下你的推荐请求: %s")
	case intent.IntentChatHistory:
		reply.Text = a.chat.SearchHistory(ctx, userID, text)
	default:
		reply.Text = a.chat.Chat(ctx, userID, text)
	}
	return reply
}

func (a *Assistant) processTodo(ctx context.Context, userID, text string, sub intent.SubIntent, reply *Reply) {
	switch sub {
	case intent.SubIntentUpdate:
		todo, err := a.todos.UpdateTodoByText(ctx, userID, text)
		if err != nil {
			a.log.Warn("[%s] todo update failed: %v", logging.UserTag(userID), err)
			reply.Text = "更新待办失败了，稍后再试试吧。"
			return
		}
		if todo == nil {
			reply.Text = "没有找到要更新的待办。"
			return
		}
		reply.Todos = []domain.Todo{*todo}
		if todo.Status == domain.TodoCancelled {
			reply.Text = fmt.Sprintf("已取消: %s", todo.Title)
		} else {
			reply.Text = fmt.Sprintf("已完成: %s", todo.Title)
		}
	case intent.SubIntentQuery:
		todos, err := a.todos.QueryTodosByText(ctx, userID, text)
		if err != nil {
			a.log.Warn("[%s] todo query failed: %v", logging.UserTag(userID), err)
			reply.Text = "查询待办失败了，稍后再试试吧。"
			return
		}
		reply.Todos = todos
		reply.Text = formatTodoList(todos)
	default:
		todos, err := a.todos.CreateTodos(ctx, userID, text)
		if err != nil {
			a.log.Warn("[%s] todo create failed: %v", logging.UserTag(userID), err)
			reply.Text = "添加待办失败了，稍后再试试吧。"
			return
		}
		reply.Todos = todos
		if len(todos) == 1 {
			reply.Text = fmt.Sprintf("已添加待办: %s", todos[0].Title)
		} else {
			reply.Text = fmt.Sprintf("已添加 %d 个待办。", len(todos))
		}
	}
}

func (a *Assistant) fillCapture(reply *Reply, item domain.SavedItem, err error, format string) {
	if err != nil {
		a.log.Warn("capture failed: %v", err)
		reply.Text = "保存失败了，稍后再试试吧。"
		return
	}
	reply.Item = &item
	reply.Text = fmt.Sprintf(format, item.Title)
}

func formatTodoList(todos []domain.Todo) string {
	if len(todos) == 0 {
		return "这个时间段没有待办。"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "共 %d 个待办:\n", len(todos))
	for _, todo := range todos {
		b.WriteString("- ")
		b.WriteString(todo.Title)
		if todo.Date != nil {
			fmt.Fprintf(&b, " (%s)", todo.Date.Format("01-02 15:04"))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
