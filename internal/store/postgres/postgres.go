// Package postgres implements the store contract on a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aria/internal/domain"
	"aria/internal/store"
)

// Store is a Postgres-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn and bootstraps the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool wires an existing pool without schema bootstrap.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    source_url TEXT NOT NULL DEFAULT '',
    source_type TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    tags TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_items_user ON items (user_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_items_tags ON items USING GIN (tags);`,
		`CREATE TABLE IF NOT EXISTS todos (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    date TIMESTAMPTZ,
    due TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_todos_user ON todos (user_id, status);`,
		`CREATE TABLE IF NOT EXISTS reminders (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    trigger_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders (user_id, trigger_at);`,
		`CREATE TABLE IF NOT EXISTS memories (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    content TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_memories_user ON memories (user_id, created_at DESC);`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) CreateItem(ctx context.Context, item domain.SavedItem) (domain.SavedItem, error) {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO items
(id, user_id, title, content, summary, source_url, source_type, category, tags, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		item.ID, item.UserID, item.Title, item.Content, item.Summary,
		item.SourceURL, item.SourceType, string(item.Category), item.Tags, item.CreatedAt)
	return item, err
}

const itemColumns = `id, user_id, title, content, summary, source_url, source_type, category, tags, created_at`

func (s *Store) ListRecentItems(ctx context.Context, userID string, limit int) ([]domain.SavedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *Store) SearchItemsByText(ctx context.Context, userID, substr string) ([]domain.SavedItem, error) {
	if strings.TrimSpace(substr) == "" {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM items
WHERE user_id = $1 AND (title ILIKE $2 OR content ILIKE $2)
ORDER BY created_at DESC`, userID, "%"+substr+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *Store) SearchItemsByTags(ctx context.Context, userID string, tags []string) ([]domain.SavedItem, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(tags))
	for i, tag := range tags {
		lowered[i] = strings.ToLower(tag)
	}
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM items
WHERE user_id = $1 AND tags && $2
ORDER BY created_at DESC`, userID, lowered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows pgx.Rows) ([]domain.SavedItem, error) {
	var items []domain.SavedItem
	for rows.Next() {
		var item domain.SavedItem
		var category string
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Content, &item.Summary,
			&item.SourceURL, &item.SourceType, &category, &item.Tags, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Category = domain.Category(category)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) CreateTodo(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO todos
(id, user_id, title, description, status, date, due, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		todo.ID, todo.UserID, todo.Title, todo.Description, string(todo.Status),
		todo.Date, todo.Due, todo.CreatedAt)
	return todo, err
}

const todoColumns = `id, user_id, title, description, status, date, due, created_at`

func (s *Store) GetTodo(ctx context.Context, userID, todoID string) (*domain.Todo, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+todoColumns+` FROM todos WHERE user_id = $1 AND id = $2`, userID, todoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	todos, err := scanTodos(rows)
	if err != nil || len(todos) == 0 {
		return nil, err
	}
	return &todos[0], nil
}

func (s *Store) ListTodos(ctx context.Context, userID string, filter store.TodoFilter) ([]domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != nil {
		query += ` AND status = $2`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTodos(rows)
}

func scanTodos(rows pgx.Rows) ([]domain.Todo, error) {
	var todos []domain.Todo
	for rows.Next() {
		var todo domain.Todo
		var status string
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description,
			&status, &todo.Date, &todo.Due, &todo.CreatedAt); err != nil {
			return nil, err
		}
		todo.Status = domain.TodoStatus(status)
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

func (s *Store) UpdateTodoStatus(ctx context.Context, userID, todoID string, status domain.TodoStatus) error {
	_, err := s.pool.Exec(ctx, `UPDATE todos SET status = $1 WHERE user_id = $2 AND id = $3`,
		string(status), userID, todoID)
	return err
}

func (s *Store) CreateReminder(ctx context.Context, reminder domain.Reminder) (domain.Reminder, error) {
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO reminders
(id, user_id, title, description, trigger_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
		reminder.ID, reminder.UserID, reminder.Title, reminder.Description,
		reminder.TriggerAt, reminder.CreatedAt)
	return reminder, err
}

func (s *Store) ListPendingReminders(ctx context.Context, userID string) ([]domain.Reminder, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, title, description, trigger_at, created_at
FROM reminders WHERE user_id = $1 AND trigger_at > now() ORDER BY trigger_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []domain.Reminder
	for rows.Next() {
		var reminder domain.Reminder
		if err := rows.Scan(&reminder.ID, &reminder.UserID, &reminder.Title,
			&reminder.Description, &reminder.TriggerAt, &reminder.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (s *Store) InsertMemory(ctx context.Context, record domain.MemoryRecord) (domain.MemoryRecord, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO memories
(id, user_id, content, category, created_at) VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO NOTHING`,
		record.ID, record.UserID, record.Content, record.Category, record.CreatedAt)
	return record, err
}

func (s *Store) SearchMemories(ctx context.Context, userID, substr string, limit int, categories []string) ([]domain.MemoryRecord, error) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}
	argPos := 2

	if strings.TrimSpace(substr) != "" {
		conditions = append(conditions, fmt.Sprintf("content ILIKE $%d", argPos))
		args = append(args, "%"+substr+"%")
		argPos++
	}
	if len(categories) > 0 {
		conditions = append(conditions, fmt.Sprintf("category = ANY($%d)", argPos))
		args = append(args, categories)
		argPos++
	}

	query := `SELECT id, user_id, content, category, created_at FROM memories WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.MemoryRecord
	for rows.Next() {
		var record domain.MemoryRecord
		if err := rows.Scan(&record.ID, &record.UserID, &record.Content,
			&record.Category, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
