// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/renkei/internal/platform/sec"
)

/*
TestParseRole verifies that unknown values can never grant privileges.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  sec.Role
	}{
		{"superadmin", "superadmin", sec.RoleSuperadmin},
		{"admin", "admin", sec.RoleAdmin},
		{"user", "user", sec.RoleUser},
		{"guest", "guest", sec.RoleGuest},
		{"empty", "", sec.RoleGuest},
		{"corrupted", "root", sec.RoleGuest},
		{"case_sensitive", "Admin", sec.RoleGuest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sec.ParseRole(tt.value))
		})
	}
}

/*
TestRole_In verifies set-membership authorization: no hierarchy is implied.
*/
func TestRole_In(t *testing.T) {
	assert.True(t, sec.RoleAdmin.In(sec.RoleAdmin, sec.RoleSuperadmin))
	assert.False(t, sec.RoleUser.In(sec.RoleAdmin, sec.RoleSuperadmin))

	// Superadmin is NOT implicitly a member of admin-only sets.
	assert.False(t, sec.RoleSuperadmin.In(sec.RoleAdmin))

	assert.False(t, sec.RoleGuest.In())
}

/*
TestRole_IsGuest covers the zero-privilege default.
*/
func TestRole_IsGuest(t *testing.T) {
	assert.True(t, sec.RoleGuest.IsGuest())
	assert.True(t, sec.Role("").IsGuest())
	assert.False(t, sec.RoleUser.IsGuest())
}

/*
TestAssignableRoles ensures guest can never be written through the ACL API.
*/
func TestAssignableRoles(t *testing.T) {
	assert.NotContains(t, sec.AssignableRoles, sec.RoleGuest)
	assert.Len(t, sec.AssignableRoles, 3)
}
