// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/renkei/internal/platform/apperr"
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
Get retrieves the role assignment for one external identity.

Parameters:
  - context: context.Context
  - userID: string (external snowflake id)

Returns:
  - *Assignment: Hydrated assignment row
  - error: apperr.NotFound when no row exists, or wrapped driver errors
*/
func (repository *PostgresRepository) Get(context context.Context, userID string) (*Assignment, error) {
	const query = `
		SELECT userid, role, assignedby, updatedat
		FROM acl.assignment
		WHERE userid = $1`

	assignment := &Assignment{}
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&assignment.UserID,
		&assignment.Role,
		&assignment.AssignedBy,
		&assignment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Role assignment")
		}
		return nil, fmt.Errorf("postgres_roles_repo_get_failed: %w", err)
	}

	return assignment, nil
}

/*
Set creates or replaces the role assignment for one external identity.

Description: Upserts the assignment row so repeated writes by operators are
idempotent and always win over the previous value.

Parameters:
  - context: context.Context
  - assignment: *Assignment

Returns:
  - error: Storage failures
*/
func (repository *PostgresRepository) Set(context context.Context, assignment *Assignment) error {
	const query = `
		INSERT INTO acl.assignment (userid, role, assignedby, updatedat)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (userid)
		DO UPDATE SET role = $2, assignedby = $3, updatedat = $4`

	assignment.UpdatedAt = time.Now()

	_, err := repository.pool.Exec(context, query,
		assignment.UserID,
		assignment.Role,
		assignment.AssignedBy,
		assignment.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_roles_repo_set_failed: %w", err)
	}

	return nil
}

/*
List retrieves every stored role assignment.

Returns:
  - []Assignment: All rows ordered by most recent write first
  - error: Storage failures
*/
func (repository *PostgresRepository) List(context context.Context) ([]Assignment, error) {
	const query = `
		SELECT userid, role, assignedby, updatedat
		FROM acl.assignment
		ORDER BY updatedat DESC`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_roles_repo_list_failed: %w", err)
	}
	defer rows.Close()

	assignments := []Assignment{}
	for rows.Next() {
		var assignment Assignment
		if err := rows.Scan(
			&assignment.UserID,
			&assignment.Role,
			&assignment.AssignedBy,
			&assignment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_roles_repo_scan_failed: %w", err)
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_roles_repo_rows_failed: %w", err)
	}

	return assignments, nil
}

/*
Remove deletes the role assignment, returning the identity to guest.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Storage failures
*/
func (repository *PostgresRepository) Remove(context context.Context, userID string) error {
	const query = "DELETE FROM acl.assignment WHERE userid = $1"

	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_roles_repo_remove_failed: %w", err)
	}

	return nil
}
