// Package sqlite implements the store contract on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"aria/internal/domain"
	"aria/internal/jsonx"
	"aria/internal/store"
)

// Store is a SQLite-backed store.Store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the database file and bootstraps the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wires an existing connection (used by tests and the factory).
func NewWithDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
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
    tags TEXT NOT NULL DEFAULT '[]',
    created_at TIMESTAMP NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_items_user ON items (user_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS todos (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    date TIMESTAMP,
    due TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_todos_user ON todos (user_id, status);`,
		`CREATE TABLE IF NOT EXISTS reminders (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    trigger_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders (user_id, trigger_at);`,
		`CREATE TABLE IF NOT EXISTS memories (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    content TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_memories_user ON memories (user_id, created_at DESC);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) CreateItem(ctx context.Context, item domain.SavedItem) (domain.SavedItem, error) {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	tags, err := jsonx.Marshal(item.Tags)
	if err != nil {
		return item, fmt.Errorf("encode tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO items
(id, user_id, title, content, summary, source_url, source_type, category, tags, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
		item.ID, item.UserID, item.Title, item.Content, item.Summary,
		item.SourceURL, item.SourceType, string(item.Category), string(tags), item.CreatedAt)
	return item, err
}

const itemColumns = `id, user_id, title, content, summary, source_url, source_type, category, tags, created_at`

func (s *Store) ListRecentItems(ctx context.Context, userID string, limit int) ([]domain.SavedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanItems(rows)
}

func (s *Store) SearchItemsByText(ctx context.Context, userID, substr string) ([]domain.SavedItem, error) {
	if strings.TrimSpace(substr) == "" {
		return nil, nil
	}
	pattern := "%" + strings.ToLower(substr) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items
WHERE user_id = ? AND (lower(title) LIKE ? OR lower(content) LIKE ?)
ORDER BY created_at DESC`, userID, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanItems(rows)
}

func (s *Store) SearchItemsByTags(ctx context.Context, userID string, tags []string) ([]domain.SavedItem, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	// Tags are stored as a JSON array; substring matching on the quoted tag
	// keeps the SQL portable across drivers.
	conditions := make([]string, 0, len(tags))
	args := []any{userID}
	for _, tag := range tags {
		conditions = append(conditions, `tags LIKE ?`)
		args = append(args, `%"`+strings.ToLower(tag)+`"%`)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items
WHERE user_id = ? AND (`+strings.Join(conditions, " OR ")+`)
ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]domain.SavedItem, error) {
	var items []domain.SavedItem
	for rows.Next() {
		var item domain.SavedItem
		var category, tags string
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Content, &item.Summary,
			&item.SourceURL, &item.SourceType, &category, &tags, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Category = domain.Category(category)
		if err := jsonx.Unmarshal([]byte(tags), &item.Tags); err != nil {
			item.Tags = nil
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) CreateTodo(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO todos
(id, user_id, title, description, status, date, due, created_at)
VALUES (?,?,?,?,?,?,?,?)`,
		todo.ID, todo.UserID, todo.Title, todo.Description, string(todo.Status),
		todo.Date, todo.Due, todo.CreatedAt)
	return todo, err
}

const todoColumns = `id, user_id, title, description, status, date, due, created_at`

func (s *Store) GetTodo(ctx context.Context, userID, todoID string) (*domain.Todo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE user_id = ? AND id = ?`, userID, todoID)
	todo, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *Store) ListTodos(ctx context.Context, userID string, filter store.TodoFilter) ([]domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ?`
	args := []any{userID}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var todos []domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	var todo domain.Todo
	var status string
	var date, due sql.NullTime
	if err := row.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description,
		&status, &date, &due, &todo.CreatedAt); err != nil {
		return nil, err
	}
	todo.Status = domain.TodoStatus(status)
	if date.Valid {
		todo.Date = &date.Time
	}
	if due.Valid {
		todo.Due = &due.Time
	}
	return &todo, nil
}

func (s *Store) UpdateTodoStatus(ctx context.Context, userID, todoID string, status domain.TodoStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE todos SET status = ? WHERE user_id = ? AND id = ?`,
		string(status), userID, todoID)
	return err
}

func (s *Store) CreateReminder(ctx context.Context, reminder domain.Reminder) (domain.Reminder, error) {
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO reminders
(id, user_id, title, description, trigger_at, created_at)
VALUES (?,?,?,?,?,?)`,
		reminder.ID, reminder.UserID, reminder.Title, reminder.Description,
		reminder.TriggerAt, reminder.CreatedAt)
	return reminder, err
}

func (s *Store) ListPendingReminders(ctx context.Context, userID string) ([]domain.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, title, description, trigger_at, created_at
FROM reminders WHERE user_id = ? AND trigger_at > ? ORDER BY trigger_at ASC`, userID, time.Now())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

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
	_, err := s.db.ExecContext(ctx, `INSERT INTO memories
(id, user_id, content, category, created_at) VALUES (?,?,?,?,?)`,
		record.ID, record.UserID, record.Content, record.Category, record.CreatedAt)
	return record, err
}

func (s *Store) SearchMemories(ctx context.Context, userID, substr string, limit int, categories []string) ([]domain.MemoryRecord, error) {
	query := `SELECT id, user_id, content, category, created_at FROM memories WHERE user_id = ?`
	args := []any{userID}
	if strings.TrimSpace(substr) != "" {
		query += ` AND lower(content) LIKE ?`
		args = append(args, "%"+strings.ToLower(substr)+"%")
	}
	if len(categories) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categories)), ",")
		query += ` AND category IN (` + placeholders + `)`
		for _, category := range categories {
			args = append(args, category)
		}
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

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
