package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-school/auth"
)

func TestUserRolePermissions(t *testing.T) {
	tests := []struct {
		role                       auth.UserRole
		read, edit, create, delete bool
	}{
		{auth.RoleGuest, true, false, false, false},
		{auth.RoleMember, true, true, false, false},
		{auth.RoleAdmin, true, true, true, false},
		{auth.RoleOwner, true, true, true, true},
		{auth.UserRole("root"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.read, tt.role.CanRead())
			assert.Equal(t, tt.edit, tt.role.CanEdit())
			assert.Equal(t, tt.create, tt.role.CanCreate())
			assert.Equal(t, tt.delete, tt.role.CanDelete())
		})
	}
}

func TestUserRoleIsAtLeast(t *testing.T) {
	assert.True(t, auth.RoleOwner.IsAtLeast(auth.RoleGuest))
	assert.True(t, auth.RoleAdmin.IsAtLeast(auth.RoleAdmin))
	assert.False(t, auth.RoleMember.IsAtLeast(auth.RoleAdmin))
	assert.False(t, auth.RoleOwner.IsAtLeast(auth.UserRole("root")))
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, role)

	_, ok = auth.ParseRole("Admin")
	assert.False(t, ok)

	assert.Equal(t, []auth.UserRole{auth.RoleGuest, auth.RoleMember, auth.RoleAdmin, auth.RoleOwner}, auth.GetAllRoles())
}
