// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/renkei/internal/platform/apperr"
)

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of [SessionRepository].
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

/*
Create persists a new session record into the sessions.refresh table.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO sessions.refresh (
			id, subject, username, avatar, tokenhash, useragent, ipaddress, expiresat, isrevoked, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.Subject,
		session.Username,
		session.Avatar,
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.IsRevoked,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindValidByTokenHash retrieves a live session by its refresh-secret digest.

Description: Filters out revoked and expired rows at the SQL level, so a
returned session is always usable.

Parameters:
  - context: context.Context
  - tokenHash: string (hex SHA-256 digest)

Returns:
  - *Session: Hydrated session metadata
  - error: apperr.InvalidRefresh when no live row matches, or driver errors
*/
func (repository *PostgresSessionRepository) FindValidByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	const query = `
		SELECT id, subject, username, avatar, tokenhash, useragent, ipaddress, expiresat, isrevoked, createdat
		FROM sessions.refresh
		WHERE tokenhash = $1 AND isrevoked = FALSE AND expiresat > NOW()`

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.Subject,
		&session.Username,
		&session.Avatar,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.IsRevoked,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.InvalidRefresh()
		}
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", err)
	}

	return session, nil
}

/*
Claim atomically revokes one session and reports whether this caller won.

Description: The conditional UPDATE is the concurrency arbiter for refresh
rotation. Two racing requests both find the same live row, but only one
UPDATE matches "isrevoked = FALSE"; the loser observes zero affected rows
and must treat the secret as replayed.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - bool: true when this caller performed the revocation
  - error: Storage failures
*/
func (repository *PostgresSessionRepository) Claim(context context.Context, sessionID string) (bool, error) {
	const query = `
		UPDATE sessions.refresh
		SET isrevoked = TRUE
		WHERE id = $1 AND isrevoked = FALSE`

	tag, err := repository.pool.Exec(context, query, sessionID)
	if err != nil {
		return false, fmt.Errorf("postgres_session_repo_claim_failed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

/*
RevokeAll revokes every live session belonging to one subject.

Description: Security nuking of all active sessions, used by logout.

Parameters:
  - context: context.Context
  - subject: string (external identity id)

Returns:
  - error: Batch revocation failures
*/
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, subject string) error {
	const query = "UPDATE sessions.refresh SET isrevoked = TRUE WHERE subject = $1 AND isrevoked = FALSE"

	_, err := repository.pool.Exec(context, query, subject)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err)
	}

	return nil
}
