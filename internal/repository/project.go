package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/charity/internal/domain"
)

const projectColumns = `id, title, category, summary, cover_url, contents, goal_amount, raised_amount,
	currency, published, created_by, created_at, updated_at`

// ProjectRepository handles project data access operations.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project.
func (r *ProjectRepository) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
	var result domain.Project
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO projects (id, title, category, summary, cover_url, contents, goal_amount,
		                       raised_amount, currency, published, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+projectColumns,
		p.ID, p.Title, p.Category, p.Summary, p.CoverURL, p.Contents, p.GoalAmount,
		p.RaisedAmount, p.Currency, p.Published, p.CreatedBy,
	).StructScan(&result)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "project already exists")
		}
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return &result, nil
}

// FindByID retrieves a project by ID.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.GetContext(ctx, &p, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("project")
		}
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	return &p, nil
}

// List returns one page of projects and the total match count.
func (r *ProjectRepository) List(ctx context.Context, f domain.ProjectFilter) ([]domain.Project, int, error) {
	where := ` WHERE ($1 = '' OR category = $1) AND (NOT $2 OR published)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM projects`+where, f.Category, f.PublishedOnly); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	projects := []domain.Project{}
	err := r.db.SelectContext(ctx, &projects,
		`SELECT `+projectColumns+` FROM projects`+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		f.Category, f.PublishedOnly, f.Limit, f.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return projects, total, nil
}

// Update overwrites the mutable fields of a project.
func (r *ProjectRepository) Update(ctx context.Context, p domain.Project) (*domain.Project, error) {
	var result domain.Project
	err := r.db.QueryRowxContext(ctx,
		`UPDATE projects
		 SET title = $2, category = $3, summary = $4, cover_url = $5, contents = $6,
		     goal_amount = $7, published = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+projectColumns,
		p.ID, p.Title, p.Category, p.Summary, p.CoverURL, p.Contents, p.GoalAmount, p.Published,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("project")
		}
		return nil, fmt.Errorf("update project %s: %w", p.ID, err)
	}
	return &result, nil
}

// Delete removes a project and, through the foreign key, its donations.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if n == 0 {
		return domain.NotFound("project")
	}
	return nil
}
