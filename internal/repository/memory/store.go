// Package memory implements the repositories on in-process maps. It backs
// the "memory" database driver and the handler tests.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sumire/charity/internal/domain"
)

// Store holds every table behind one lock so a donation and the project
// total it raises change together.
type Store struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	projects  map[string]domain.Project
	donations map[string]domain.Donation
	tasks     map[string]domain.Task
	now       func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]domain.User),
		projects:  make(map[string]domain.Project),
		donations: make(map[string]domain.Donation),
		tasks:     make(map[string]domain.Task),
		now:       time.Now,
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Projects returns the project repository view of the store.
func (s *Store) Projects() *ProjectRepository { return &ProjectRepository{s: s} }

// Donations returns the donation repository view of the store.
func (s *Store) Donations() *DonationRepository { return &DonationRepository{s: s} }

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s: s} }

func page[T any](items []T, pageNum, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := 0
	if pageNum > 1 {
		start = (pageNum - 1) * limit
	}
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func newestFirst[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
