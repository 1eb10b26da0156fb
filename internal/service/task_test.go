package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/repository/memory"
	"github.com/sumire/charity/internal/service"
)

func TestTaskBoard(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewTaskService(store.Tasks(), store.Users())

	if _, err := store.Users().Create(ctx, domain.User{ID: "u1", Email: "vol@example.org"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	missing := "ghost"
	if _, err := svc.Create(ctx, "admin-1", domain.Task{Title: "x", AssigneeID: &missing}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected unknown assignee to fail, got %v", err)
	}

	assignee := "u1"
	task, err := svc.Create(ctx, "admin-1", domain.Task{Title: "Call donors", AssigneeID: &assignee, Status: domain.TaskStatusDone})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != domain.TaskStatusTodo {
		t.Fatalf("expected new task in todo, got %q", task.Status)
	}

	moved, err := svc.UpdateStatus(ctx, task.ID, domain.TaskStatusInProgress)
	if err != nil || moved.Status != domain.TaskStatusInProgress {
		t.Fatalf("UpdateStatus: %+v %v", moved, err)
	}

	status := domain.TaskStatusInProgress
	tasks, err := svc.List(ctx, &status)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("List: %v %v", tasks, err)
	}

	if err := svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, task.ID, domain.TaskStatusDone); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
