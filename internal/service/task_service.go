package service

import (
	"context"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/validation"
)

// TaskService applies validation on top of a TaskStore. Concurrent writes to
// the same id are last-write-wins; there is no version check.
type TaskService struct {
	store   repository.TaskStore
	schemas *validation.Validator
}

func NewTaskService(store repository.TaskStore, schemas *validation.Validator) *TaskService {
	return &TaskService{store: store, schemas: schemas}
}

func (s *TaskService) List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error) {
	return s.store.List(ctx, q)
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.store.GetByID(ctx, id)
}

// Create validates doc (a decoded JSON body) and inserts it.
func (s *TaskService) Create(ctx context.Context, doc any) (*domain.Task, error) {
	in, err := ValidateTask(s.schemas, doc)
	if err != nil {
		return nil, err
	}
	t, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	logger.Debug("task created", "task_id", t.ID)
	return t, nil
}

// Update is a full replace: fields missing from doc go back to their defaults.
// A missing task is reported before validation problems.
func (s *TaskService) Update(ctx context.Context, id int64, doc any) (*domain.Task, error) {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}
	in, err := ValidateTask(s.schemas, doc)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, in)
}

// SetStatus only ever touches completed and updatedAt.
func (s *TaskService) SetStatus(ctx context.Context, id int64, doc any) (*domain.Task, error) {
	completed, err := ValidateStatus(s.schemas, doc)
	if err != nil {
		return nil, err
	}
	return s.store.SetCompleted(ctx, id, completed)
}

func (s *TaskService) Delete(ctx context.Context, id int64) (*domain.DeleteResult, error) {
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	logger.Debug("task deleted", "task_id", id)
	return &domain.DeleteResult{Message: "Task deleted successfully", ID: id}, nil
}

func (s *TaskService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
