// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// Role represents the coarse authorization level granted to an identity.
type Role string

const (
	// Unrestricted access, including unmasked sensitive configuration
	RoleSuperadmin Role = "superadmin"

	// Can manage configuration, roles, and view the audit log
	RoleAdmin Role = "admin"

	// Can talk to the bot and manage their own context memory
	RoleUser Role = "user"

	// Zero-privilege default when no role record exists
	RoleGuest Role = "guest"
)

// # Role Sets

// AssignableRoles are the values an operator may write through the ACL API.
// Guest is deliberately absent: it is the implicit absence of a role, never
// an assigned one.
var AssignableRoles = []Role{RoleUser, RoleAdmin, RoleSuperadmin}

// ParseRole normalizes a stored role string. Unknown values collapse to guest
// so a corrupted row can never grant privileges.
func ParseRole(value string) Role {
	switch Role(value) {
	case RoleSuperadmin, RoleAdmin, RoleUser:
		return Role(value)
	default:
		return RoleGuest
	}
}

// In reports whether the role is a member of the allowed set.
//
// Authorization in the gateway is set-membership, not hierarchy: an endpoint
// names the exact roles it admits.
func (r Role) In(allowed ...Role) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}

// IsGuest reports whether the role carries zero privilege.
func (r Role) IsGuest() bool {
	return r == RoleGuest || r == ""
}
