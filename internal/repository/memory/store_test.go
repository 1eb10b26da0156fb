package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sumire/charity/internal/domain"
)

func newTestStore() *Store {
	s := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := newTestStore().Users()

	if _, err := users.Create(ctx, domain.User{ID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := users.Create(ctx, domain.User{ID: "u2", Email: "A@example.com "})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already-exists error, got %v", err)
	}

	if _, err := users.FindByID(ctx, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserUpsertKeepsRole(t *testing.T) {
	ctx := context.Background()
	users := newTestStore().Users()

	if _, err := users.Create(ctx, domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := users.UpsertByEmail(ctx, domain.User{ID: "u9", Email: "a@example.com", DisplayName: "Ann", Role: domain.RoleDonor})
	if err != nil {
		t.Fatalf("UpsertByEmail: %v", err)
	}
	if got.ID != "u1" || got.Role != domain.RoleAdmin || got.DisplayName != "Ann" {
		t.Fatalf("unexpected upsert result: %+v", got)
	}
}

func TestUserUpsertHandsOverAccount(t *testing.T) {
	ctx := context.Background()
	users := newTestStore().Users()

	if _, err := users.Create(ctx, domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleDonor,
		Provider: domain.AuthProviderPassword, PasswordHash: "hash"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := users.UpsertByEmail(ctx, domain.User{ID: "u9", Email: "A@example.com", Role: domain.RoleAdmin,
		Provider: domain.AuthProviderGoogle})
	if err != nil {
		t.Fatalf("UpsertByEmail: %v", err)
	}
	if got.ID != "u1" || !got.IsAdmin() || got.Provider != domain.AuthProviderGoogle || got.PasswordHash != "" {
		t.Fatalf("unexpected upsert result: %+v", got)
	}
}

func TestProjectListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	projects := newTestStore().Projects()

	for _, p := range []domain.Project{
		{ID: "p1", Category: "water", Published: true},
		{ID: "p2", Category: "water", Published: false},
		{ID: "p3", Category: "water", Published: true},
		{ID: "p4", Category: "school", Published: true},
	} {
		if _, err := projects.Create(ctx, p); err != nil {
			t.Fatalf("Create %s: %v", p.ID, err)
		}
	}

	got, total, err := projects.List(ctx, domain.ProjectFilter{Category: "water", PublishedOnly: true, Page: 1, Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	if len(got) != 1 || got[0].ID != "p3" {
		t.Fatalf("expected newest project p3 first, got %+v", got)
	}

	got, _, _ = projects.List(ctx, domain.ProjectFilter{Page: 5, Limit: 10})
	if len(got) != 0 {
		t.Fatalf("expected empty page, got %d", len(got))
	}
}

func TestDonationRaisesProjectTotal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if _, err := s.Projects().Create(ctx, domain.Project{ID: "p1", Currency: "USD"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Donations().Create(ctx, domain.Donation{ID: "d1", ProjectID: "p1", Amount: 500, Currency: "USD"}, 500); err != nil {
		t.Fatalf("donate: %v", err)
	}
	if _, err := s.Donations().Create(ctx, domain.Donation{ID: "d2", ProjectID: "p1", Amount: 1000, Currency: "EUR"}, 1100); err != nil {
		t.Fatalf("donate: %v", err)
	}

	p, _ := s.Projects().FindByID(ctx, "p1")
	if p.RaisedAmount != 1600 {
		t.Fatalf("expected raised 1600, got %d", p.RaisedAmount)
	}

	list, total, err := s.Donations().ListByProject(ctx, "p1", 1, 10)
	if err != nil || total != 2 || list[0].ID != "d2" {
		t.Fatalf("unexpected donations: %+v total=%d err=%v", list, total, err)
	}

	_, err = s.Donations().Create(ctx, domain.Donation{ID: "d3", ProjectID: "missing"}, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown project, got %v", err)
	}

	if err := s.Projects().Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, total, _ := s.Donations().ListByProject(ctx, "p1", 1, 10); total != 0 {
		t.Fatalf("expected donations removed with project, got %d", total)
	}
}

func TestDonationTotalDoesNotWrap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if _, err := s.Projects().Create(ctx, domain.Project{ID: "p1", Currency: "USD"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Donations().Create(ctx, domain.Donation{ID: "d1", ProjectID: "p1"}, math.MaxInt64-10); err != nil {
		t.Fatalf("donate: %v", err)
	}

	_, err := s.Donations().Create(ctx, domain.Donation{ID: "d2", ProjectID: "p1"}, 11)
	if !errors.Is(err, domain.ErrMissingParameter) {
		t.Fatalf("expected out of range error, got %v", err)
	}

	p, _ := s.Projects().FindByID(ctx, "p1")
	if p.RaisedAmount != math.MaxInt64-10 {
		t.Fatalf("expected total unchanged, got %d", p.RaisedAmount)
	}
	if _, total, _ := s.Donations().ListByProject(ctx, "p1", 1, 10); total != 1 {
		t.Fatalf("expected rejected donation not stored, got %d", total)
	}
}

func TestTaskListOrderAndStatus(t *testing.T) {
	ctx := context.Background()
	tasks := newTestStore().Tasks()

	soon := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	later := soon.Add(48 * time.Hour)

	for _, task := range []domain.Task{
		{ID: "t1", Status: domain.TaskStatusTodo},
		{ID: "t2", Status: domain.TaskStatusTodo, DueDate: &later},
		{ID: "t3", Status: domain.TaskStatusDone, DueDate: &soon},
	} {
		if _, err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, _ := tasks.List(ctx, nil)
	if len(all) != 3 || all[0].ID != "t3" || all[1].ID != "t2" || all[2].ID != "t1" {
		t.Fatalf("unexpected order: %v %v %v", all[0].ID, all[1].ID, all[2].ID)
	}

	updated, err := tasks.UpdateStatus(ctx, "t1", domain.TaskStatusInProgress)
	if err != nil || updated.Status != domain.TaskStatusInProgress {
		t.Fatalf("UpdateStatus: %+v %v", updated, err)
	}

	status := domain.TaskStatusTodo
	todo, _ := tasks.List(ctx, &status)
	if len(todo) != 1 || todo[0].ID != "t2" {
		t.Fatalf("unexpected todo tasks: %+v", todo)
	}

	if err := tasks.Delete(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
