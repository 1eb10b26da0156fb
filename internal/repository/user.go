package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/charity/internal/domain"
)

const userColumns = `id, email, display_name, role, provider, password_hash, avatar_url, created_at, updated_at`

// UserRepository handles user data access operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by their ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("user")
		}
		return nil, fmt.Errorf("find user by id %s: %w", id, err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("user")
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// Create inserts a new user. A taken email yields ERR_DATA_ALREADY_EXIST.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	var result domain.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, email, display_name, role, provider, password_hash, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		user.ID, user.Email, user.DisplayName, user.Role, user.Provider, user.PasswordHash, user.AvatarURL,
	).StructScan(&result)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "email is already registered",
				domain.WithDetails(map[string]any{"field": "email"}))
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &result, nil
}

// UpsertByEmail creates the user or hands the account with the same email
// over to the incoming provider. An admin role is applied on update but
// never taken away.
func (r *UserRepository) UpsertByEmail(ctx context.Context, user domain.User) (*domain.User, error) {
	var result domain.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (id, email, display_name, role, provider, password_hash, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (email)
		 DO UPDATE SET display_name = EXCLUDED.display_name,
		               avatar_url = EXCLUDED.avatar_url,
		               provider = EXCLUDED.provider,
		               password_hash = EXCLUDED.password_hash,
		               role = CASE WHEN EXCLUDED.role = 'admin' THEN 'admin' ELSE users.role END,
		               updated_at = NOW()
		 RETURNING `+userColumns,
		user.ID, user.Email, user.DisplayName, user.Role, user.Provider, user.PasswordHash, user.AvatarURL,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &result, nil
}
