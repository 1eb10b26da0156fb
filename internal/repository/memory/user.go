package memory

import (
	"context"

	"github.com/sumire/charity/internal/domain"
)

// UserRepository stores users in memory.
type UserRepository struct {
	s *Store
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("user")
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u, ok := r.findByEmail(email); ok {
		return &u, nil
	}
	return nil, domain.NotFound("user")
}

func (r *UserRepository) Create(_ context.Context, user domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.findByEmail(user.Email); ok {
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "email is already registered",
			domain.WithDetails(map[string]any{"field": "email"}))
	}

	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = user
	return &user, nil
}

func (r *UserRepository) UpsertByEmail(_ context.Context, user domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if existing, ok := r.findByEmail(user.Email); ok {
		existing.DisplayName = user.DisplayName
		existing.AvatarURL = user.AvatarURL
		existing.Provider = user.Provider
		existing.PasswordHash = user.PasswordHash
		if user.IsAdmin() {
			existing.Role = domain.RoleAdmin
		}
		existing.UpdatedAt = now
		r.s.users[existing.ID] = existing
		return &existing, nil
	}

	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = user
	return &user, nil
}

// caller holds the lock
func (r *UserRepository) findByEmail(email string) (domain.User, bool) {
	want := normalizeEmail(email)
	for _, u := range r.s.users {
		if normalizeEmail(u.Email) == want {
			return u, true
		}
	}
	return domain.User{}, false
}
