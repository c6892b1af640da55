// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the access level of a user account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered customer or administrator.
//
// Accounts come from two places: email/password registration (PasswordHash set)
// and GitHub sign-in (GitHubID set). Either may be absent, so both are zero
// values rather than pointers. PasswordHash is never serialized.
//
// Name and Image are optional. Empty string means "not provided", the same
// convention the rest of the models use.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Image        string    `json:"image,omitempty"` // avatar URL
	GitHubID     int64     `json:"-"`
	GoogleID     string    `json:"-"` // OpenID Connect subject
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserProfile is the public projection returned by profile endpoints.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
	Image string `json:"image,omitempty"`
}

// Profile projects u onto the fields safe to hand back to its owner.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Image: u.Image,
	}
}
