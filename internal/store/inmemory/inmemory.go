// Package inmemory implements the store contract for tests and local demos.
package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"aria/internal/domain"
	"aria/internal/store"
)

// Store keeps everything in process memory, newest first per user.
type Store struct {
	mu        sync.RWMutex
	items     map[string][]domain.SavedItem
	todos     map[string][]domain.Todo
	reminders map[string][]domain.Reminder
	memories  map[string][]domain.MemoryRecord
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		items:     make(map[string][]domain.SavedItem),
		todos:     make(map[string][]domain.Todo),
		reminders: make(map[string][]domain.Reminder),
		memories:  make(map[string][]domain.MemoryRecord),
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) CreateItem(_ context.Context, item domain.SavedItem) (domain.SavedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	s.items[item.UserID] = append([]domain.SavedItem{item}, s.items[item.UserID]...)
	return item, nil
}

func (s *Store) ListRecentItems(_ context.Context, userID string, limit int) ([]domain.SavedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.items[userID]
	sorted := make([]domain.SavedItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func (s *Store) SearchItemsByText(_ context.Context, userID, substr string) ([]domain.SavedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(substr)
	if needle == "" {
		return nil, nil
	}

	var results []domain.SavedItem
	for _, item := range s.items[userID] {
		haystack := strings.ToLower(item.Title + "\n" + item.Content)
		if strings.Contains(haystack, needle) {
			results = append(results, item)
		}
	}
	return results, nil
}

func (s *Store) SearchItemsByTags(_ context.Context, userID string, tags []string) ([]domain.SavedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(tags))
	for _, tag := range tags {
		wanted[strings.ToLower(tag)] = true
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	var results []domain.SavedItem
	for _, item := range s.items[userID] {
		for _, tag := range item.Tags {
			if wanted[strings.ToLower(tag)] {
				results = append(results, item)
				break
			}
		}
	}
	return results, nil
}

func (s *Store) CreateTodo(_ context.Context, todo domain.Todo) (domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now()
	}
	s.todos[todo.UserID] = append(s.todos[todo.UserID], todo)
	return todo, nil
}

func (s *Store) GetTodo(_ context.Context, userID, todoID string) (*domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, todo := range s.todos[userID] {
		if todo.ID == todoID {
			copied := todo
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *Store) ListTodos(_ context.Context, userID string, filter store.TodoFilter) ([]domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.Todo
	for _, todo := range s.todos[userID] {
		if filter.Status != nil && todo.Status != *filter.Status {
			continue
		}
		results = append(results, todo)
	}
	return results, nil
}

func (s *Store) UpdateTodoStatus(_ context.Context, userID, todoID string, status domain.TodoStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	todos := s.todos[userID]
	for i := range todos {
		if todos[i].ID == todoID {
			todos[i].Status = status
			return nil
		}
	}
	return nil
}

func (s *Store) CreateReminder(_ context.Context, reminder domain.Reminder) (domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}
	s.reminders[reminder.UserID] = append(s.reminders[reminder.UserID], reminder)
	return reminder, nil
}

func (s *Store) ListPendingReminders(_ context.Context, userID string) ([]domain.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var results []domain.Reminder
	for _, reminder := range s.reminders[userID] {
		if reminder.TriggerAt.After(now) {
			results = append(results, reminder)
		}
	}
	return results, nil
}

func (s *Store) InsertMemory(_ context.Context, record domain.MemoryRecord) (domain.MemoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	s.memories[record.UserID] = append([]domain.MemoryRecord{record}, s.memories[record.UserID]...)
	return record, nil
}

func (s *Store) SearchMemories(_ context.Context, userID, substr string, limit int, categories []string) ([]domain.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(substr)
	allowed := make(map[string]bool, len(categories))
	for _, category := range categories {
		allowed[category] = true
	}

	var results []domain.MemoryRecord
	for _, record := range s.memories[userID] {
		if len(allowed) > 0 && !allowed[record.Category] {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(record.Content), needle) {
			continue
		}
		results = append(results, record)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}
