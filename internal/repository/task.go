package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/charity/internal/domain"
)

const taskColumns = `id, title, description, status, assignee_id, due_date, created_by, created_at, updated_at`

// TaskRepository handles admin task data access operations.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task.
func (r *TaskRepository) Create(ctx context.Context, t domain.Task) (*domain.Task, error) {
	var result domain.Task
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO tasks (id, title, description, status, assignee_id, due_date, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, t.Status, t.AssigneeID, t.DueDate, t.CreatedBy,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &result, nil
}

// FindByID retrieves a task by ID.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.GetContext(ctx, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("task")
		}
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}
	return &t, nil
}

// List returns tasks, optionally filtered by status, oldest due date first.
func (r *TaskRepository) List(ctx context.Context, status *domain.TaskStatus) ([]domain.Task, error) {
	filter := ""
	if status != nil {
		filter = string(*status)
	}

	tasks := []domain.Task{}
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+` FROM tasks WHERE ($1 = '' OR status = $1)
		 ORDER BY due_date ASC NULLS LAST, created_at DESC`, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus sets the status of a task.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	var result domain.Task
	err := r.db.QueryRowxContext(ctx,
		`UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+taskColumns,
		id, status,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("task")
		}
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return &result, nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n == 0 {
		return domain.NotFound("task")
	}
	return nil
}
