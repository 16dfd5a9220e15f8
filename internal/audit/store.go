// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import "context"

// ListFilter narrows the event listing.
type ListFilter struct {
	// Actions keeps only events whose action is in the set. Empty means all.
	Actions []string

	// UserID keeps only events for one acting identity. Empty means all.
	UserID string
}

// Repository abstracts the append-and-list persistence of audit events.
type Repository interface {
	// Insert appends one event to the trail.
	Insert(ctx context.Context, event *Event) error

	// List returns a page of events (newest first) and the total match count.
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Event, int, error)
}
