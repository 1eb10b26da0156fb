package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/service"
)

type createTaskRequest struct {
	Title       string     `json:"title" mod:"trim" validate:"required,max=200"`
	Description string     `json:"description" mod:"trim" validate:"max=2000"`
	AssigneeID  string     `json:"assigneeId" mod:"trim"`
	DueDate     *time.Time `json:"dueDate"`
}

type taskStatusRequest struct {
	Status string `json:"status" mod:"trim,lcase" validate:"required,oneof=todo in_progress done"`
}

type listTasksQuery struct {
	Status string `query:"status" json:"status" mod:"trim,lcase" validate:"omitempty,oneof=todo in_progress done"`
}

// TaskHandler serves the admin task board.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List returns tasks, optionally filtered by status.
func (h *TaskHandler) List(c echo.Context) error {
	var q listTasksQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	var status *domain.TaskStatus
	if q.Status != "" {
		s := domain.TaskStatus(q.Status)
		status = &s
	}

	tasks, err := h.tasks.List(c.Request().Context(), status)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "tasks", tasks)
}

// Create adds a task.
func (h *TaskHandler) Create(c echo.Context) error {
	body := Body[createTaskRequest](c)
	userID, _ := GetUserID(c)

	task, err := h.tasks.Create(c.Request().Context(), userID, domain.Task{
		Title:       body.Title,
		Description: optional(body.Description),
		AssigneeID:  optional(strings.TrimSpace(body.AssigneeID)),
		DueDate:     body.DueDate,
	})
	if err != nil {
		return err
	}
	return Created(c, "task created", task)
}

// UpdateStatus moves a task to another column.
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	body := Body[taskStatusRequest](c)

	task, err := h.tasks.UpdateStatus(c.Request().Context(), c.Param("id"), domain.TaskStatus(body.Status))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "task updated", task)
}

// Delete removes a task.
func (h *TaskHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.tasks.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "task deleted", map[string]string{"id": id})
}
