package domain

import "time"

// Category classifies a saved item. The set is closed; unknown model output
// maps to CategoryKnowledge.
type Category string

const (
	CategoryInspiration   Category = "inspiration"
	CategoryKnowledge     Category = "knowledge"
	CategoryProject       Category = "project"
	CategoryTool          Category = "tool"
	CategoryEntertainment Category = "entertainment"
)

// ParseCategory maps free text to a known category, defaulting to knowledge.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryInspiration, CategoryKnowledge, CategoryProject, CategoryTool, CategoryEntertainment:
		return Category(s)
	default:
		return CategoryKnowledge
	}
}

// SavedItem is a persisted unit of captured knowledge. Items are immutable
// after creation and owned exclusively by the creating user.
type SavedItem struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title,omitempty"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary,omitempty"`
	SourceURL  string    `json:"source_url,omitempty"`
	SourceType string    `json:"source_type,omitempty"`
	Category   Category  `json:"category"`
	Tags       []string  `json:"tags,omitempty"` // lowercase
	CreatedAt  time.Time `json:"created_at"`
}

// TodoStatus is the lifecycle state of a todo.
type TodoStatus string

const (
	TodoPending   TodoStatus = "pending"
	TodoDone      TodoStatus = "done"
	TodoCancelled TodoStatus = "cancelled"
)

// Todo is a schedulable task. Date is when the task should happen and is
// always set at creation (defaulted when the user gave none); Due is a hard
// deadline and stays nil unless stated.
type Todo struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TodoStatus `json:"status"`
	Date        *time.Time `json:"date,omitempty"`
	Due         *time.Time `json:"due,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Reminder fires once at TriggerAt. (UserID, Title, TriggerAt) acts as a
// natural idempotency key among pending reminders.
type Reminder struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TriggerAt   time.Time `json:"trigger_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemoryRecord is the relational memory backend's row: searchable text with
// an optional category, scoped to a user.
type MemoryRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
