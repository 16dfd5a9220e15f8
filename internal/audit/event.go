// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package audit implements the append-only security event trail.

Every security-relevant transition (logins, rotations, role changes, denied
permissions) is recorded as an immutable event row. The trail is the
operator's forensic record: who did what, from where, and when.

Architecture:

  - Service: Best-effort, time-bounded recording that never blocks a response.
  - Repository: Append-and-list storage over PostgreSQL.
  - Handler: Admin-gated read access (/audit/logs) with pagination.

Recording is deliberately fire-and-forget: a failed audit write is logged
server-side but never turns a successful login into a failed one.
*/
package audit

import "time"

// # Event Actions
//
// Action values are stable identifiers: dashboards and alerting filter on
// them, so renaming one is a breaking change.
const (
	ActionLoginSuccess        = "login_success"
	ActionLoginDeniedRole     = "login_denied_role"
	ActionLoginFailedUpstream = "login_failed_upstream"
	ActionRefreshSuccess      = "refresh_success"
	ActionRefreshDenied       = "refresh_denied"
	ActionLogout              = "logout"
	ActionPermissionDenied    = "permission_denied"
	ActionAsk                 = "ask"
	ActionSetRole             = "set_role"
	ActionRemoveRole          = "remove_role"
	ActionConfigUpdate        = "config_update"
)

// Event is one immutable row in the security trail.
type Event struct {
	// ID is a time-sortable UUIDv7 primary key.
	ID string `json:"id"`

	// Action is one of the Action* identifiers above.
	Action string `json:"action"`

	// UserID is the acting identity's external id, empty for anonymous events.
	UserID string `json:"user_id"`

	// Username is the acting identity's handle at event time.
	Username string `json:"username"`

	// Detail carries action-specific context (target user, rejected path, ...).
	Detail string `json:"detail"`

	// IPAddress is the client address the event originated from.
	IPAddress string `json:"ip_address"`

	// CreatedAt is the event timestamp.
	CreatedAt time.Time `json:"created_at"`
}
