package models

import "time"

// AdminRole is a console operator permission tier.
type AdminRole string

const (
	RoleViewer     AdminRole = "viewer"
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "superadmin"
)

var roleRank = map[AdminRole]int{
	RoleViewer:     1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// IsValidRole reports whether the role is a known tier.
func IsValidRole(role AdminRole) bool {
	_, ok := roleRank[role]
	return ok
}

// IsValidRoleList reports whether the list is non-empty and every role is known.
func IsValidRoleList(roles []AdminRole) bool {
	if len(roles) == 0 {
		return false
	}
	for _, role := range roles {
		if !IsValidRole(role) {
			return false
		}
	}
	return true
}

// NormalizeRoles deduplicates a role list, preserving first occurrence order.
func NormalizeRoles(roles []AdminRole) []AdminRole {
	seen := make(map[AdminRole]struct{}, len(roles))
	normalized := make([]AdminRole, 0, len(roles))
	for _, role := range roles {
		if !IsValidRole(role) {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized
}

// EnsureDefaultRole guarantees at least the viewer tier.
func EnsureDefaultRole(roles []AdminRole) []AdminRole {
	if len(roles) == 0 {
		return []AdminRole{RoleViewer}
	}
	return roles
}

// HighestRole returns the strongest tier in the list.
func HighestRole(roles []AdminRole) AdminRole {
	highest := RoleViewer
	for _, role := range roles {
		if roleRank[role] > roleRank[highest] {
			highest = role
		}
	}
	return highest
}

// HasAtLeast reports whether any role in the list meets the required tier.
func HasAtLeast(roles []AdminRole, required AdminRole) bool {
	need := roleRank[required]
	for _, role := range roles {
		if roleRank[role] >= need {
			return true
		}
	}
	return false
}

// Admin is a console operator account.
type Admin struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	DisplayName  string      `json:"display_name"`
	PasswordHash string      `json:"-"`
	IsActive     bool        `json:"is_active"`
	Roles        []AdminRole `json:"roles"`
	CreatedAt    time.Time   `json:"created_at"`
}
