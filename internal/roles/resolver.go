// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roles

import (
	"context"
	"log/slog"

	"github.com/taibuivan/renkei/internal/platform/apperr"
	"github.com/taibuivan/renkei/internal/platform/sec"
)

// Resolver maps an external identity id onto an authorization role.
//
// # Failure Policy
//
// Resolve NEVER returns an error. An unreachable store or a missing row both
// degrade through the static fallback table and finally to guest, so the
// login path stays available during a database outage — the worst outcome is
// a zero-privilege session that the callback rejects anyway.
type Resolver struct {
	repository Repository
	fallback   map[string]sec.Role
	logger     *slog.Logger
}

// NewResolver constructs a [Resolver].
//
// # Parameters
//   - repository: Primary role store.
//   - fallback: Static identity→role override table (may be empty).
//   - logger: Structured logger for degradation events.
func NewResolver(repository Repository, fallback map[string]string, logger *slog.Logger) *Resolver {
	parsed := make(map[string]sec.Role, len(fallback))
	for userID, role := range fallback {
		parsed[userID] = sec.ParseRole(role)
	}

	return &Resolver{
		repository: repository,
		fallback:   parsed,
		logger:     logger,
	}
}

/*
Resolve determines the authorization role for an external identity.

Description: Consults the role store first, then the static fallback table,
and finally collapses to guest. A missing row is normal operation (logged at
debug); a store failure is an infrastructure event (logged at warn).

Parameters:
  - ctx: context.Context
  - userID: string (external snowflake id)

Returns:
  - sec.Role: Always a usable role; guest when nothing matched
*/
func (resolver *Resolver) Resolve(ctx context.Context, userID string) sec.Role {
	assignment, err := resolver.repository.Get(ctx, userID)
	if err == nil {
		return sec.ParseRole(assignment.Role)
	}

	// Missing row: expected for unknown identities, nothing to warn about.
	if apperr.CodeOf(err) == "NOT_FOUND" {
		resolver.logger.DebugContext(ctx, "role_not_assigned",
			slog.String("user_id", userID),
		)
		return resolver.fromFallback(userID)
	}

	// Store failure: degrade rather than fail the login path.
	resolver.logger.WarnContext(ctx, "role_store_unreachable",
		slog.String("user_id", userID),
		slog.Any("error", err),
	)
	return resolver.fromFallback(userID)
}

// fromFallback consults the static override table, defaulting to guest.
func (resolver *Resolver) fromFallback(userID string) sec.Role {
	if role, found := resolver.fallback[userID]; found {
		return role
	}
	return sec.RoleGuest
}
