package repository

import (
	"context"
	"errors"
	"time"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, completed, due_date, sort_order, created_at, updated_at`

// TaskRepository is the Postgres TaskStore.
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// orderClause mirrors domain.Less. Titles use the "C" collation so the
// database compares bytes the same way the client does.
func orderClause(key domain.SortKey) string {
	switch key {
	case domain.SortTitle:
		return ` ORDER BY title COLLATE "C" ASC, id ASC`
	case domain.SortCreatedAt:
		return ` ORDER BY created_at DESC, id DESC`
	case domain.SortOrder:
		return ` ORDER BY sort_order ASC, created_at ASC, id ASC`
	default:
		return ` ORDER BY due_date ASC NULLS LAST, created_at ASC, id ASC`
	}
}

func (r *TaskRepository) List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	switch q.Status {
	case domain.StatusActive:
		query += ` WHERE completed = $1`
		args = append(args, false)
	case domain.StatusCompleted:
		query += ` WHERE completed = $1`
		args = append(args, true)
	}
	query += orderClause(q.Sort)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return notFound(scanTask(row))
}

func (r *TaskRepository) Create(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	due, err := dueDateParam(in.DueDate)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, completed, due_date, sort_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+taskColumns,
		in.Title, in.Description, in.Completed, due, in.SortOrder,
	)
	return scanTask(row)
}

// Update is a full replace. The existence check and the write are one statement.
func (r *TaskRepository) Update(ctx context.Context, id int64, in domain.TaskInput) (*domain.Task, error) {
	due, err := dueDateParam(in.DueDate)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, completed = $3, due_date = $4, sort_order = $5, updated_at = now()
		 WHERE id = $6
		 RETURNING `+taskColumns,
		in.Title, in.Description, in.Completed, due, in.SortOrder, id,
	)
	return notFound(scanTask(row))
}

func (r *TaskRepository) SetCompleted(ctx context.Context, id int64, completed bool) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE tasks SET completed = $1, updated_at = now() WHERE id = $2 RETURNING `+taskColumns,
		completed, id,
	)
	return notFound(scanTask(row))
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t         domain.Task
		completed any
		due       *time.Time
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &completed, &due,
		&t.SortOrder, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Completed = normalizeCompleted(completed)
	t.DueDate = domain.FormatDueDate(due)
	return &t, nil
}

func notFound(t *domain.Task, err error) (*domain.Task, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	return t, err
}

func dueDateParam(s *string) (any, error) {
	if s == nil {
		return nil, nil
	}
	d, err := domain.ParseDueDate(*s)
	if err != nil {
		return nil, err
	}
	return d, nil
}
