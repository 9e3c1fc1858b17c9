// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdnguyen/vaultgate/internal/platform/database/schema"
)

// # Postgres Repository

// PostgresRepository persists the audit trail in the system.auditlog table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Insert appends one entry to the trail.

Parameters:
  - ctx: context.Context
  - entry: *Entry (fully populated, including ID and Timestamp)

Returns:
  - error: connectivity or constraint errors
*/
func (repository *PostgresRepository) Insert(ctx context.Context, entry *Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.SystemAuditLog.Table,
		schema.SystemAuditLog.ID,
		schema.SystemAuditLog.UserID,
		schema.SystemAuditLog.ResourceID,
		schema.SystemAuditLog.Action,
		schema.SystemAuditLog.Success,
		schema.SystemAuditLog.Timestamp,
		schema.SystemAuditLog.IPAddress,
		schema.SystemAuditLog.UserAgent,
		schema.SystemAuditLog.Error,
	)

	_, err := repository.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.ResourceID,
		string(entry.Action),
		entry.Success,
		entry.Timestamp,
		nullable(entry.IPAddress),
		nullable(entry.UserAgent),
		nullable(entry.Error),
	)
	if err != nil {
		return fmt.Errorf("postgres_audit_repo_insert_failed: %w", err)
	}

	return nil
}

/*
Find retrieves a page of the trail matching the filter.

Description: Builds the WHERE clause incrementally from the non-zero
filter fields and rides on the (ts) index for the range scan.

Parameters:
  - ctx: context.Context
  - filter: Filter (optional narrowing plus sort and pagination)

Returns:
  - []Entry: the matching page, ordered by timestamp
  - int: total matching rows before pagination
  - error: connectivity errors
*/
func (repository *PostgresRepository) Find(ctx context.Context, filter Filter) ([]Entry, int, error) {

	// Base query with window-function total
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s,
			COUNT(*) OVER() AS total_count
		FROM %s
		WHERE 1=1
	`,
		schema.SystemAuditLog.ID,
		schema.SystemAuditLog.UserID,
		schema.SystemAuditLog.ResourceID,
		schema.SystemAuditLog.Action,
		schema.SystemAuditLog.Success,
		schema.SystemAuditLog.Timestamp,
		schema.SystemAuditLog.IPAddress,
		schema.SystemAuditLog.UserAgent,
		schema.SystemAuditLog.Error,
		schema.SystemAuditLog.Table,
	))

	// Filter injection
	if filter.UserID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.SystemAuditLog.UserID, argID))
		args = append(args, filter.UserID)
		argID++
	}
	if filter.ResourceID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.SystemAuditLog.ResourceID, argID))
		args = append(args, filter.ResourceID)
		argID++
	}
	if !filter.From.IsZero() {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s >= $%d", schema.SystemAuditLog.Timestamp, argID))
		args = append(args, filter.From)
		argID++
	}
	if !filter.To.IsZero() {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s < $%d", schema.SystemAuditLog.Timestamp, argID))
		args = append(args, filter.To)
		argID++
	}

	// Ordering and pagination limits
	sortDir := "DESC"
	if filter.Sort == SortAsc {
		sortDir = "ASC"
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s", schema.SystemAuditLog.Timestamp, sortDir))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, filter.Pagination.Limit, filter.Pagination.Offset())

	// Query execution
	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_find_failed: %w", err)
	}
	defer rows.Close()

	// Row iteration and entity hydration
	var entries []Entry
	var totalCount int

	for rows.Next() {
		var entry Entry
		var ipAddress, userAgent, errMessage *string

		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ResourceID,
			&entry.Action,
			&entry.Success,
			&entry.Timestamp,
			&ipAddress,
			&userAgent,
			&errMessage,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_audit_repo_scan_failed: %w", err)
		}

		entry.IPAddress = deref(ipAddress)
		entry.UserAgent = deref(userAgent)
		entry.Error = deref(errMessage)
		entries = append(entries, entry)
	}

	return entries, totalCount, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// deref maps SQL NULL back to an empty string.
func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
