package memory

import (
	"context"
	"time"

	"github.com/sumire/charity/internal/domain"
)

// ProjectRepository stores projects in memory.
type ProjectRepository struct {
	s *Store
}

func (r *ProjectRepository) Create(_ context.Context, p domain.Project) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[p.ID]; ok {
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "project already exists")
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.projects[p.ID] = p
	return &p, nil
}

func (r *ProjectRepository) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.NotFound("project")
	}
	return &p, nil
}

func (r *ProjectRepository) List(_ context.Context, f domain.ProjectFilter) ([]domain.Project, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []domain.Project{}
	for _, p := range r.s.projects {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.PublishedOnly && !p.Published {
			continue
		}
		matched = append(matched, p)
	}
	newestFirst(matched, func(p domain.Project) time.Time { return p.CreatedAt })

	return page(matched, f.Page, f.Limit), len(matched), nil
}

func (r *ProjectRepository) Update(_ context.Context, p domain.Project) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.projects[p.ID]
	if !ok {
		return nil, domain.NotFound("project")
	}
	p.RaisedAmount = existing.RaisedAmount
	p.Currency = existing.Currency
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.s.now()
	r.s.projects[p.ID] = p
	return &p, nil
}

func (r *ProjectRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return domain.NotFound("project")
	}
	delete(r.s.projects, id)
	for did, d := range r.s.donations {
		if d.ProjectID == id {
			delete(r.s.donations, did)
		}
	}
	return nil
}
