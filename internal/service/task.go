package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sumire/charity/internal/domain"
)

// TaskStore defines the admin task data access interface.
type TaskStore interface {
	Create(ctx context.Context, t domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, status *domain.TaskStatus) ([]domain.Task, error)
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// TaskService manages the admin task board.
type TaskService struct {
	tasks TaskStore
	users UserStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore, users UserStore) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

// Create adds a task in the todo column. An assignee must exist.
func (s *TaskService) Create(ctx context.Context, createdBy string, t domain.Task) (*domain.Task, error) {
	if t.AssigneeID != nil {
		if _, err := s.users.FindByID(ctx, *t.AssigneeID); err != nil {
			return nil, err
		}
	}

	t.ID = uuid.NewString()
	t.Status = domain.TaskStatusTodo
	t.CreatedBy = createdBy

	created, err := s.tasks.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// List returns tasks, optionally only those in status.
func (s *TaskService) List(ctx context.Context, status *domain.TaskStatus) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus moves a task to another column.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	return s.tasks.UpdateStatus(ctx, id, status)
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}
