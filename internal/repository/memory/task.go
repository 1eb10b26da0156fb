package memory

import (
	"context"
	"sort"

	"github.com/sumire/charity/internal/domain"
)

// TaskRepository stores admin tasks in memory.
type TaskRepository struct {
	s *Store
}

func (r *TaskRepository) Create(_ context.Context, t domain.Task) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.tasks[t.ID] = t
	return &t, nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.NotFound("task")
	}
	return &t, nil
}

// List orders by due date with undated tasks last, matching the SQL store.
func (r *TaskRepository) List(_ context.Context, status *domain.TaskStatus) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := []domain.Task{}
	for _, t := range r.s.tasks {
		if status != nil && t.Status != *status {
			continue
		}
		tasks = append(tasks, t)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate == nil && b.DueDate != nil:
			return false
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return tasks, nil
}

func (r *TaskRepository) UpdateStatus(_ context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.NotFound("task")
	}
	t = t.WithStatus(status)
	t.UpdatedAt = r.s.now()
	r.s.tasks[id] = t
	return &t, nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return domain.NotFound("task")
	}
	delete(r.s.tasks, id)
	return nil
}
