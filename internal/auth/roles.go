package auth

import "fmt"

// Role represents an admin role for role-based access control
type Role string

const (
	// RoleAdmin may change the catalog
	RoleAdmin Role = "admin"

	// RoleViewer may read the stored catalog
	RoleViewer Role = "viewer"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a role has permission for a required role.
// Admin has all permissions.
func (r Role) HasPermission(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// ParseRole converts a role name, rejecting unknown ones
func ParseRole(name string) (Role, error) {
	r := Role(name)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role %q (expected %q or %q)", name, RoleAdmin, RoleViewer)
	}
	return r, nil
}
