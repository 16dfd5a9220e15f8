// Copyright (c) 2026 Renkei. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package botconfig

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
Get retrieves the stored override for one key.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: The override value
  - error: apperr.NotFound when no override exists, or driver errors
*/
func (repository *PostgresRepository) Get(context context.Context, key string) (string, error) {
	const query = "SELECT value FROM system.setting WHERE key = $1"

	value := ""
	err := repository.pool.QueryRow(context, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("Configuration override")
		}
		return "", fmt.Errorf("postgres_botconfig_repo_get_failed: %w", err)
	}

	return value, nil
}

/*
Set creates or replaces the override for one key.

Parameters:
  - context: context.Context
  - key: string
  - value: string
  - updatedBy: string (operator's external id)

Returns:
  - error: Storage failures
*/
func (repository *PostgresRepository) Set(context context.Context, key, value, updatedBy string) error {
	const query = `
		INSERT INTO system.setting (key, value, updatedby, updatedat)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key)
		DO UPDATE SET value = $2, updatedby = $3, updatedat = $4`

	_, err := repository.pool.Exec(context, query, key, value, updatedBy, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_botconfig_repo_set_failed: %w", err)
	}

	return nil
}

/*
Delete removes the override for one key.

Description: Deleting a key that has no override is a no-op, making the
operation idempotent.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - error: Storage failures
*/
func (repository *PostgresRepository) Delete(context context.Context, key string) error {
	const query = "DELETE FROM system.setting WHERE key = $1"

	_, err := repository.pool.Exec(context, query, key)
	if err != nil {
		return fmt.Errorf("postgres_botconfig_repo_delete_failed: %w", err)
	}

	return nil
}

/*
All retrieves every stored override.

Returns:
  - map[string]string: key→value for every override row
  - error: Storage failures
*/
func (repository *PostgresRepository) All(context context.Context) (map[string]string, error) {
	const query = "SELECT key, value FROM system.setting"

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_botconfig_repo_all_failed: %w", err)
	}
	defer rows.Close()

	overrides := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("postgres_botconfig_repo_scan_failed: %w", err)
		}
		overrides[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_botconfig_repo_rows_failed: %w", err)
	}

	return overrides, nil
}
