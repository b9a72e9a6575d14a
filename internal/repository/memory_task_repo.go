package repository

import (
	"context"
	"sync"
	"time"

	"todo_webapp/internal/domain"
)

// taskRow keeps completed as 0/1 like the original SQLite table did, so the
// memory store exercises the same normalization as any other backend.
type taskRow struct {
	id          int64
	title       string
	description string
	completed   int
	dueDate     *string
	sortOrder   int64
	createdAt   time.Time
	updatedAt   time.Time
}

// MemoryTaskRepository is a TaskStore for tests and STORE=memory.
type MemoryTaskRepository struct {
	mu     sync.RWMutex
	rows   map[int64]*taskRow
	nextID int64
	now    func() time.Time
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		rows: make(map[int64]*taskRow),
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// WithClock replaces the timestamp source.
func (r *MemoryTaskRepository) WithClock(now func() time.Time) *MemoryTaskRepository {
	r.now = now
	return r
}

func (r *MemoryTaskRepository) List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error) {
	r.mu.RLock()
	all := make([]domain.Task, 0, len(r.rows))
	for _, row := range r.rows {
		all = append(all, row.task())
	}
	r.mu.RUnlock()

	return domain.ApplyQuery(all, q), nil
}

func (r *MemoryTaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	t := row.task()
	return &t, nil
}

func (r *MemoryTaskRepository) Create(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now()
	row := &taskRow{id: r.nextID, createdAt: now}
	row.apply(in, now)
	r.rows[row.id] = row

	t := row.task()
	return &t, nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, id int64, in domain.TaskInput) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	row.apply(in, r.now())

	t := row.task()
	return &t, nil
}

func (r *MemoryTaskRepository) SetCompleted(ctx context.Context, id int64, completed bool) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	row.completed = boolToInt(completed)
	row.updatedAt = r.now()

	t := row.task()
	return &t, nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrTaskNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryTaskRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (row *taskRow) apply(in domain.TaskInput, now time.Time) {
	row.title = in.Title
	row.description = in.Description
	row.completed = boolToInt(in.Completed)
	row.dueDate = copyString(in.DueDate)
	row.sortOrder = in.SortOrder
	row.updatedAt = now
}

func (row *taskRow) task() domain.Task {
	return domain.Task{
		ID:          row.id,
		Title:       row.title,
		Description: row.description,
		Completed:   normalizeCompleted(row.completed),
		DueDate:     copyString(row.dueDate),
		SortOrder:   row.sortOrder,
		CreatedAt:   row.createdAt,
		UpdatedAt:   row.updatedAt,
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
