// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the [Repository] interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Insert appends one event row to the system.auditlog table.

Parameters:
  - context: context.Context
  - event: *Event

Returns:
  - error: Storage failures
*/
func (repository *PostgresRepository) Insert(context context.Context, event *Event) error {
	const query = `
		INSERT INTO system.auditlog (
			id, action, userid, username, detail, ipaddress, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		event.ID,
		event.Action,
		event.UserID,
		event.Username,
		event.Detail,
		event.IPAddress,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_audit_repo_insert_failed: %w", err)
	}

	return nil
}

/*
List retrieves a page of audit events, newest first.

Description: Applies optional action and user filters, returning both the
page of rows and the total match count for pagination metadata.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - limit: int
  - offset: int

Returns:
  - []Event: One page of matching events
  - int: Total number of matching events
  - error: Storage failures
*/
func (repository *PostgresRepository) List(context context.Context, filter ListFilter, limit, offset int) ([]Event, int, error) {
	// Both queries share one WHERE clause built from the filter.
	where := "WHERE ($1::text[] IS NULL OR action = ANY($1)) AND ($2 = '' OR userid = $2)"

	var actions interface{}
	if len(filter.Actions) > 0 {
		actions = filter.Actions
	}

	countQuery := "SELECT COUNT(*) FROM system.auditlog " + where

	total := 0
	if err := repository.pool.QueryRow(context, countQuery, actions, filter.UserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_count_failed: %w", err)
	}

	listQuery := `
		SELECT id, action, userid, username, detail, ipaddress, createdat
		FROM system.auditlog ` + where + `
		ORDER BY createdat DESC
		LIMIT $3 OFFSET $4`

	rows, err := repository.pool.Query(context, listQuery, actions, filter.UserID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_list_failed: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var event Event
		if err := rows.Scan(
			&event.ID,
			&event.Action,
			&event.UserID,
			&event.Username,
			&event.Detail,
			&event.IPAddress,
			&event.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_audit_repo_scan_failed: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_rows_failed: %w", err)
	}

	return events, total, nil
}
