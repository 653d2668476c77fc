package auth

// UserRole is the user's role
type UserRole string

const (
	// RoleGuest can view records
	RoleGuest UserRole = "guest"
	// RoleMember can view and edit records
	RoleMember UserRole = "member"
	// RoleAdmin can view, edit and create records
	RoleAdmin UserRole = "admin"
	// RoleOwner can view, edit, create and delete records
	RoleOwner UserRole = "owner"
)

var roleHierarchy = map[UserRole]int{
	RoleGuest:  0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// CanRead checks if this role can read resources
func (r UserRole) CanRead() bool {
	return r.IsAtLeast(RoleGuest)
}

// CanEdit checks if this role can edit resources
func (r UserRole) CanEdit() bool {
	return r.IsAtLeast(RoleMember)
}

// CanCreate checks if this role can create resources
func (r UserRole) CanCreate() bool {
	return r.IsAtLeast(RoleAdmin)
}

// CanDelete checks if this role can delete resources
func (r UserRole) CanDelete() bool {
	return r.IsAtLeast(RoleOwner)
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleGuest,
		RoleMember,
		RoleAdmin,
		RoleOwner,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
