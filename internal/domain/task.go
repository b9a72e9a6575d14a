package domain

import "time"

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
)

// Task - the single persisted to-do entry
type Task struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	DueDate     *string   `db:"due_date" json:"dueDate"` // YYYY-MM-DD or null
	SortOrder   int64     `db:"sort_order" json:"sortOrder"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// TaskInput is the validated, normalized payload of a create or full update.
// Missing optional fields already carry their defaults.
type TaskInput struct {
	Title       string
	Description string
	Completed   bool
	DueDate     *string
	SortOrder   int64
}

// Apply overwrites every mutable field of t with the input (full replace).
func (in TaskInput) Apply(t *Task) {
	t.Title = in.Title
	t.Description = in.Description
	t.Completed = in.Completed
	t.DueDate = in.DueDate
	t.SortOrder = in.SortOrder
}

// DeleteResult is returned by DELETE /api/tasks/:id
type DeleteResult struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
