package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"aria/internal/domain"
	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/store"
)

const fallbackTitleRunes = 20

// TodoService turns natural language into todos, status updates, and
// queries. Every operation survives generator failure via a deterministic
// fallback.
type TodoService struct {
	gateway *llm.Gateway
	store   store.Store
	log     logging.Logger
	// now is injectable for date-sensitive tests.
	now func() time.Time
}

// NewTodoService wires the todo service.
func NewTodoService(gateway *llm.Gateway, s store.Store, log logging.Logger) *TodoService {
	return &TodoService{
		gateway: gateway,
		store:   s,
		log:     logging.OrNop(log),
		now:     time.Now,
	}
}

type todoDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type dateDraft struct {
	Date string `json:"date"`
	Due  string `json:"due"`
}

// CreateTodo extracts one todo from text and persists it, with a reminder
// when a date is set (which is always, by the default-date rule).
func (s *TodoService) CreateTodo(ctx context.Context, userID, text string) (domain.Todo, error) {
	draft := extract(ctx, s.gateway, "todo_extract", map[string]string{"text": text},
		func(d todoDraft) bool { return strings.TrimSpace(d.Title) != "" },
		func() todoDraft { return todoDraft{Title: truncateTitle(text, fallbackTitleRunes)} },
	)

	date, due := s.extractDates(ctx, text)
	return s.createOne(ctx, userID, draft, date, due)
}

// CreateTodos is the batch variant for multi-item input. One extracted
// date/time is shared across the whole batch; an unparseable array degrades
// to a single todo from the raw text.
func (s *TodoService) CreateTodos(ctx context.Context, userID, text string) ([]domain.Todo, error) {
	drafts := extract(ctx, s.gateway, "todo_extract_batch", map[string]string{"text": text},
		func(ds []todoDraft) bool {
			for _, d := range ds {
				if strings.TrimSpace(d.Title) == "" {
					return false
				}
			}
			return len(ds) > 0
		},
		func() []todoDraft { return []todoDraft{{Title: truncateTitle(text, fallbackTitleRunes)}} },
	)

	date, due := s.extractDates(ctx, text)

	todos := make([]domain.Todo, 0, len(drafts))
	for _, draft := range drafts {
		todo, err := s.createOne(ctx, userID, draft, date, due)
		if err != nil {
			return todos, err
		}
		todos = append(todos, todo)
	}
	return todos, nil
}

func (s *TodoService) extractDates(ctx context.Context, text string) (*time.Time, *time.Time) {
	now := s.now()
	draft := extract(ctx, s.gateway, "todo_datetime", map[string]string{
		"text":    text,
		"today":   now.Format("2006-01-02"),
		"weekday": now.Weekday().String(),
	}, nil, func() dateDraft { return dateDraft{} })

	return parseDate(draft.Date, now), parseDue(draft.Due, now)
}

func (s *TodoService) createOne(ctx context.Context, userID string, draft todoDraft, date, due *time.Time) (domain.Todo, error) {
	if date == nil {
		at := defaultDate(s.now())
		date = &at
	}

	todo, err := s.store.CreateTodo(ctx, domain.Todo{
		ID:          ksuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Status:      domain.TodoPending,
		Date:        date,
		Due:         due,
	})
	if err != nil {
		return todo, fmt.Errorf("create todo: %w", err)
	}

	s.ensureReminder(ctx, todo)
	s.log.Info("[%s] created todo %q date=%s", logging.UserTag(userID), todo.Title, date.Format(time.RFC3339))
	return todo, nil
}

// ensureReminder creates a reminder for the todo's date unless a pending one
// with the same (user, title, trigger) already exists. The key is the title
// text itself, so re-extracted titles that differ by a character create a
// second reminder; stronger dedup is deliberately not attempted.
func (s *TodoService) ensureReminder(ctx context.Context, todo domain.Todo) {
	if todo.Date == nil {
		return
	}

	pending, err := s.store.ListPendingReminders(ctx, todo.UserID)
	if err != nil {
		s.log.Warn("[%s] list reminders failed: %v", logging.UserTag(todo.UserID), err)
		return
	}
	for _, reminder := range pending {
		if reminder.Title == todo.Title && reminder.TriggerAt.Equal(*todo.Date) {
			return
		}
	}

	if _, err := s.store.CreateReminder(ctx, domain.Reminder{
		ID:          ksuid.New().String(),
		UserID:      todo.UserID,
		Title:       todo.Title,
		Description: todo.Description,
		TriggerAt:   *todo.Date,
	}); err != nil {
		s.log.Warn("[%s] create reminder failed: %v", logging.UserTag(todo.UserID), err)
	}
}

type matchDraft struct {
	MatchedTodoID string  `json:"matchedTodoId"`
	Action        string  `json:"action"`
	Confidence    float64 `json:"confidence"`
}

const matchConfidenceFloor = 0.5

// UpdateTodoByText resolves text like "报告写完了" against the user's open
// todos and applies the matched status change. Returns nil when nothing
// could be matched.
func (s *TodoService) UpdateTodoByText(ctx context.Context, userID, text string) (*domain.Todo, error) {
	pending := domain.TodoPending
	todos, err := s.store.ListTodos(ctx, userID, store.TodoFilter{Status: &pending})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	if len(todos) == 0 {
		return nil, nil
	}

	var listing strings.Builder
	for _, todo := range todos {
		fmt.Fprintf(&listing, "%s | %s | %s\n", todo.ID, todo.Title, todo.Status)
	}

	match := extract(ctx, s.gateway, "todo_match", map[string]string{
		"todos": listing.String(),
		"text":  text,
	}, nil, func() matchDraft { return matchDraft{} })

	if match.MatchedTodoID != "" && match.Confidence >= matchConfidenceFloor {
		for _, todo := range todos {
			if todo.ID == match.MatchedTodoID {
				return s.applyStatus(ctx, todo, actionToStatus(match.Action))
			}
		}
	}

	// Low confidence or no id: substring matching between the utterance
	// (with completion/cancellation vocabulary stripped) and todo titles.
	stripped := stripCompletionVocab(text)
	for _, todo := range todos {
		if stripped == "" {
			break
		}
		if strings.Contains(stripped, todo.Title) || strings.Contains(todo.Title, stripped) {
			return s.applyStatus(ctx, todo, actionToStatus(text))
		}
	}
	return nil, nil
}

func (s *TodoService) applyStatus(ctx context.Context, todo domain.Todo, status domain.TodoStatus) (*domain.Todo, error) {
	if err := s.store.UpdateTodoStatus(ctx, todo.UserID, todo.ID, status); err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	todo.Status = status
	s.log.Info("[%s] todo %q -> %s", logging.UserTag(todo.UserID), todo.Title, status)
	return &todo, nil
}

var cancelVocabulary = []string{"取消", "不用了", "不做了", "算了"}

func actionToStatus(action string) domain.TodoStatus {
	for _, word := range cancelVocabulary {
		if strings.Contains(action, word) {
			return domain.TodoCancelled
		}
	}
	return domain.TodoDone
}

var completionStopWords = []string{
	"完成了", "完成", "做完了", "做完", "写完了", "写完", "寫完了", "寫完",
	"完了", "搞定了", "搞定", "弄完", "办完", "辦完",
	"取消", "不用了", "不做了", "算了", "了", "已经", "已經", "我", "把", "的",
}

func stripCompletionVocab(text string) string {
	stripped := strings.TrimSpace(text)
	for _, word := range completionStopWords {
		stripped = strings.ReplaceAll(stripped, word, "")
	}
	return strings.TrimSpace(stripped)
}

type queryDraft struct {
	SpecificDate string   `json:"specificDate"`
	TimeRange    string   `json:"timeRange"`
	Keywords     []string `json:"keywords"`
	Status       string   `json:"status"`
}

// QueryTodosByText filters the user's todos by extracted criteria. A
// specific date outranks a relative time range; future-looking ranges
// default the status filter to pending unless the user named one.
func (s *TodoService) QueryTodosByText(ctx context.Context, userID, text string) ([]domain.Todo, error) {
	now := s.now()
	draft := extract(ctx, s.gateway, "todo_query", map[string]string{
		"text":    text,
		"today":   now.Format("2006-01-02"),
		"weekday": now.Weekday().String(),
	}, nil, func() queryDraft { return fallbackQueryDraft(text) })

	var window *timeWindow
	futureRange := false

	if at := parseDate(draft.SpecificDate, now); at != nil {
		day := startOfDay(*at)
		window = &timeWindow{day, day.AddDate(0, 0, 1)}
	} else if draft.TimeRange != "" {
		if w, future, ok := resolveTimeRange(draft.TimeRange, now); ok {
			window = &w
			futureRange = future
		}
	}

	filter := store.TodoFilter{}
	switch {
	case draft.Status != "":
		status := domain.TodoStatus(draft.Status)
		filter.Status = &status
	case futureRange:
		pending := domain.TodoPending
		filter.Status = &pending
	}

	todos, err := s.store.ListTodos(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	var results []domain.Todo
	for _, todo := range todos {
		if window != nil {
			if todo.Date == nil || !window.contains(*todo.Date) {
				continue
			}
		}
		if !matchesKeywords(todo, draft.Keywords) {
			continue
		}
		results = append(results, todo)
	}
	return results, nil
}

// fallbackQueryDraft scans the utterance for a known relative range when the
// model gave nothing usable.
func fallbackQueryDraft(text string) queryDraft {
	for _, expr := range knownTimeRanges {
		if strings.Contains(text, expr) {
			return queryDraft{TimeRange: expr}
		}
	}
	return queryDraft{}
}

func matchesKeywords(todo domain.Todo, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(todo.Title + "\n" + todo.Description)
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}
