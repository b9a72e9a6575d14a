package repository

import (
	"context"
	"errors"

	"todo_webapp/internal/domain"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrItemNotFound = errors.New("item not found")
)

// TaskStore is the data-access boundary for tasks. Every read path hands back
// tasks whose Completed flag already went through normalizeCompleted.
type TaskStore interface {
	List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Create(ctx context.Context, in domain.TaskInput) (*domain.Task, error)
	Update(ctx context.Context, id int64, in domain.TaskInput) (*domain.Task, error)
	SetCompleted(ctx context.Context, id int64, completed bool) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// ItemStore backs the legacy /api/items endpoints.
type ItemStore interface {
	List(ctx context.Context) ([]domain.Item, error)
	Create(ctx context.Context, name string) (*domain.Item, error)
	Delete(ctx context.Context, id int64) error
}
