package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/service"
)

type contentBlockRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Complete reports whether all three fields have non-blank text.
func (b contentBlockRequest) Complete() bool {
	return strings.TrimSpace(b.Name) != "" &&
		strings.TrimSpace(b.Description) != "" &&
		strings.TrimSpace(b.Content) != ""
}

func toContentBlocks(in []contentBlockRequest) domain.ContentBlocks {
	out := make(domain.ContentBlocks, 0, len(in))
	for _, b := range in {
		out = append(out, domain.ContentBlock{
			Name:        strings.TrimSpace(b.Name),
			Description: strings.TrimSpace(b.Description),
			Content:     strings.TrimSpace(b.Content),
		})
	}
	return out
}

type createProjectRequest struct {
	Title      string                `json:"title" mod:"trim" validate:"required,max=200"`
	Category   string                `json:"category" mod:"trim,lcase" validate:"required,max=50"`
	Summary    string                `json:"summary" mod:"trim" validate:"max=500"`
	CoverURL   string                `json:"coverUrl" mod:"trim" validate:"omitempty,url"`
	GoalAmount int64                 `json:"goalAmount" validate:"gte=0"`
	Currency   string                `json:"currency" mod:"trim,ucase" validate:"required,iso4217"`
	Published  bool                  `json:"published"`
	Contents   []contentBlockRequest `json:"contents" validate:"required,min=1,any_complete"`
}

type updateProjectRequest struct {
	Title      *string               `json:"title" validate:"omitempty,min=1,max=200"`
	Category   *string               `json:"category" validate:"omitempty,min=1,max=50"`
	Summary    *string               `json:"summary" validate:"omitempty,max=500"`
	CoverURL   *string               `json:"coverUrl" validate:"omitempty,url"`
	GoalAmount *int64                `json:"goalAmount" validate:"omitempty,gte=0"`
	Published  *bool                 `json:"published"`
	Contents   []contentBlockRequest `json:"contents" validate:"omitempty,min=1,any_complete"`
}

type listProjectsQuery struct {
	Category string `query:"category" json:"category" mod:"trim,lcase"`
	Page     int    `query:"page" json:"page" validate:"gte=0"`
	Limit    int    `query:"limit" json:"limit" validate:"gte=0,lte=100"`
}

// ProjectHandler serves public project pages and the admin project CRUD.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List returns a page of projects. Anonymous callers only see published
// projects.
func (h *ProjectHandler) List(c echo.Context) error {
	var q listProjectsQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	projects, page, err := h.projects.List(c.Request().Context(), domain.ProjectFilter{
		Category:      q.Category,
		PublishedOnly: !isAdmin(c),
		Page:          q.Page,
		Limit:         q.Limit,
	})
	if err != nil {
		return err
	}
	return JSONList(c, "projects", projects, metaFromPage(page))
}

// Get returns a single project.
func (h *ProjectHandler) Get(c echo.Context) error {
	project, err := h.projects.Get(c.Request().Context(), c.Param("id"), isAdmin(c))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "project", project)
}

// Create adds a project.
func (h *ProjectHandler) Create(c echo.Context) error {
	body := Body[createProjectRequest](c)
	userID, _ := GetUserID(c)

	project, err := h.projects.Create(c.Request().Context(), userID, domain.Project{
		Title:      body.Title,
		Category:   body.Category,
		Summary:    optional(body.Summary),
		CoverURL:   optional(body.CoverURL),
		Contents:   toContentBlocks(body.Contents),
		GoalAmount: body.GoalAmount,
		Currency:   body.Currency,
		Published:  body.Published,
	})
	if err != nil {
		return err
	}
	return Created(c, "project created", project)
}

// Update applies a partial update.
func (h *ProjectHandler) Update(c echo.Context) error {
	body := Body[updateProjectRequest](c)

	patch := domain.ProjectPatch{
		Title:      trimmed(body.Title),
		Category:   lowered(body.Category),
		Summary:    trimmed(body.Summary),
		CoverURL:   trimmed(body.CoverURL),
		GoalAmount: body.GoalAmount,
		Published:  body.Published,
	}
	if body.Contents != nil {
		patch.Contents = toContentBlocks(body.Contents)
	}

	project, err := h.projects.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "project updated", project)
}

// Delete removes a project and its donations.
func (h *ProjectHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.projects.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "project deleted", map[string]string{"id": id})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func lowered(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	return &v
}
