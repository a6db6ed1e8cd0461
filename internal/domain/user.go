package domain

import "time"

// Role constants for the closed set of privilege levels.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents a community member as returned by the backend.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Points    int       `json:"points"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsModerator reports whether the user holds moderation privileges.
// Admins moderate implicitly.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// IsAdmin reports whether the user holds full administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRoles contains all valid user roles.
var ValidRoles = []string{RoleAdmin, RoleUser, RoleModerator}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
