// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package botconfig

import "context"

// Repository abstracts the persistence of runtime overrides.
type Repository interface {
	// Get returns the stored override, or apperr.NotFound when none exists.
	Get(ctx context.Context, key string) (string, error)

	// Set creates or replaces the override for one key.
	Set(ctx context.Context, key, value, updatedBy string) error

	// Delete removes the override for one key. Absent overrides are not an error.
	Delete(ctx context.Context, key string) error

	// All returns every stored override as key→value.
	All(ctx context.Context) (map[string]string, error)
}
