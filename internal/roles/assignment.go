// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package roles implements the access-control list (ACL) for the Renkei gateway.

It resolves external identities into authorization roles and exposes the
operator-facing endpoints that manage those assignments.

Architecture:

  - Resolver: Fault-tolerant role resolution (store → static fallback → guest).
  - Repository: Abstracted PostgreSQL storage for role assignments.
  - Handler: Admin-gated HTTP surface (/acl) for reading and writing roles.

The resolver NEVER fails a login because the role store is down; it degrades
to the static fallback table and finally to the zero-privilege guest role.
*/
package roles

import "time"

// Assignment binds one external identity to an authorization role.
type Assignment struct {
	// UserID is the external identity's numeric id (snowflake).
	UserID string `json:"user_id"`

	// Role is the stored role value ("user", "admin", "superadmin").
	Role string `json:"role"`

	// AssignedBy records the operator who last wrote this row.
	AssignedBy string `json:"assigned_by"`

	// UpdatedAt is the time of the last write.
	UpdatedAt time.Time `json:"updated_at"`
}
