package domain

import "time"

// TaskStatus represents the lifecycle state of an admin task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Task is an item in the admin task board.
type Task struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	AssigneeID  *string    `json:"assigneeId,omitempty" db:"assignee_id"`
	DueDate     *time.Time `json:"dueDate,omitempty" db:"due_date"`
	CreatedBy   string     `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// WithStatus returns a new Task with the given status.
func (t Task) WithStatus(status TaskStatus) Task {
	out := t
	out.Status = status
	out.UpdatedAt = time.Now()
	return out
}
