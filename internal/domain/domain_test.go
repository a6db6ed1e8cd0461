package domain

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role  string
		valid bool
	}{
		{"user", true},
		{"moderator", true},
		{"admin", true},
		{"superuser", false},
		{"", false},
		{"Admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := IsValidRole(tt.role); got != tt.valid {
				t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.valid)
			}
		})
	}
}

func TestUserRoleFlags(t *testing.T) {
	tests := []struct {
		role        string
		isModerator bool
		isAdmin     bool
	}{
		{RoleUser, false, false},
		{RoleModerator, true, false},
		{RoleAdmin, true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run("role_"+tt.role, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.IsModerator(); got != tt.isModerator {
				t.Errorf("IsModerator() with role %q = %v, want %v", tt.role, got, tt.isModerator)
			}
			if got := u.IsAdmin(); got != tt.isAdmin {
				t.Errorf("IsAdmin() with role %q = %v, want %v", tt.role, got, tt.isAdmin)
			}
		})
	}
}

func TestIsValidCommentStatus(t *testing.T) {
	tests := []struct {
		status string
		valid  bool
	}{
		{"visible", true},
		{"hidden", true},
		{"deleted", false},
		{"", false},
		{"VISIBLE", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := IsValidCommentStatus(tt.status); got != tt.valid {
				t.Errorf("IsValidCommentStatus(%q) = %v, want %v", tt.status, got, tt.valid)
			}
		})
	}
}
