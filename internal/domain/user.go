package domain

import "time"

// Role controls access to the admin dashboard.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleDonor Role = "donor"
)

// AuthProvider records how the account was created.
type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
)

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string       `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	DisplayName  string       `json:"displayName" db:"display_name"`
	Role         Role         `json:"role" db:"role"`
	Provider     AuthProvider `json:"provider" db:"provider"`
	PasswordHash string       `json:"-" db:"password_hash"`
	AvatarURL    *string      `json:"avatarUrl,omitempty" db:"avatar_url"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user may use admin routes.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
