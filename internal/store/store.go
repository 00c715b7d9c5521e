// Package store defines the persistence contract the assistant core relies
// on. The core never reaches past this interface; backends only need the
// read patterns listed here.
package store

import (
	"context"

	"aria/internal/domain"
)

// TodoFilter narrows ListTodos. A nil Status means any status.
type TodoFilter struct {
	Status *domain.TodoStatus
}

// Store is the relational persistence contract for items, todos, reminders,
// and the relational memory backend's rows.
type Store interface {
	// Items.
	CreateItem(ctx context.Context, item domain.SavedItem) (domain.SavedItem, error)
	ListRecentItems(ctx context.Context, userID string, limit int) ([]domain.SavedItem, error)
	SearchItemsByText(ctx context.Context, userID, substr string) ([]domain.SavedItem, error)
	SearchItemsByTags(ctx context.Context, userID string, tags []string) ([]domain.SavedItem, error)

	// Todos.
	CreateTodo(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	GetTodo(ctx context.Context, userID, todoID string) (*domain.Todo, error)
	ListTodos(ctx context.Context, userID string, filter TodoFilter) ([]domain.Todo, error)
	UpdateTodoStatus(ctx context.Context, userID, todoID string, status domain.TodoStatus) error

	// Reminders.
	CreateReminder(ctx context.Context, reminder domain.Reminder) (domain.Reminder, error)
	ListPendingReminders(ctx context.Context, userID string) ([]domain.Reminder, error)

	// Relational memory rows.
	InsertMemory(ctx context.Context, record domain.MemoryRecord) (domain.MemoryRecord, error)
	SearchMemories(ctx context.Context, userID, substr string, limit int, categories []string) ([]domain.MemoryRecord, error)
}
