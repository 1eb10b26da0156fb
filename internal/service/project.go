package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sumire/charity/internal/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ProjectStore defines the project data access interface.
type ProjectStore interface {
	Create(ctx context.Context, p domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, int, error)
	Update(ctx context.Context, p domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// ProjectService manages fundraising projects.
type ProjectService struct {
	projects ProjectStore
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects ProjectStore) *ProjectService {
	return &ProjectService{projects: projects}
}

// Create stores a new project owned by createdBy. Raised amount starts at
// zero regardless of input.
func (s *ProjectService) Create(ctx context.Context, createdBy string, p domain.Project) (*domain.Project, error) {
	p.ID = uuid.NewString()
	p.CreatedBy = createdBy
	p.RaisedAmount = 0
	p.Currency = strings.ToUpper(p.Currency)

	created, err := s.projects.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

// Get returns a project. Unpublished projects are only visible to admins.
func (s *ProjectService) Get(ctx context.Context, id string, admin bool) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Published && !admin {
		return nil, domain.NotFound("project")
	}
	return p, nil
}

// List returns one page of projects plus pagination metadata.
func (s *ProjectService) List(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, Page, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)

	projects, total, err := s.projects.List(ctx, f)
	if err != nil {
		return nil, Page{}, fmt.Errorf("list projects: %w", err)
	}
	return projects, NewPage(f.Page, f.Limit, total), nil
}

// Update applies a partial update.
func (s *ProjectService) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	current, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.projects.Update(ctx, current.Apply(patch))
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return updated, nil
}

// Delete removes a project and its donations.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}
