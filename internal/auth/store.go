// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// SessionRepository abstracts the persistence of refresh sessions.
type SessionRepository interface {
	// Create persists a new session record.
	Create(ctx context.Context, session *Session) error

	// FindValidByTokenHash retrieves the live (non-revoked, non-expired)
	// session matching a refresh-secret digest.
	FindValidByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// Claim atomically revokes the session and reports whether THIS caller
	// performed the transition. Exactly one of any set of concurrent callers
	// receives true; everyone else loses the race and must treat the secret
	// as replayed.
	Claim(ctx context.Context, sessionID string) (bool, error)

	// RevokeAll revokes every live session belonging to one subject.
	RevokeAll(ctx context.Context, subject string) error
}
