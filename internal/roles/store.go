// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roles

import "context"

// Repository abstracts the persistence of role assignments.
//
// # Error Contract
//
// Get distinguishes "no assignment exists" (apperr.NotFound) from "the store
// is unreachable" (wrapped driver error). The [Resolver] depends on this
// distinction for its logging, even though both degrade to the same fallback.
type Repository interface {
	// Get returns the assignment for one external identity.
	Get(ctx context.Context, userID string) (*Assignment, error)

	// Set creates or replaces the assignment for one external identity.
	Set(ctx context.Context, assignment *Assignment) error

	// List returns every stored assignment ordered by most recent write.
	List(ctx context.Context) ([]Assignment, error)

	// Remove deletes the assignment, returning the identity to guest.
	Remove(ctx context.Context, userID string) error
}
