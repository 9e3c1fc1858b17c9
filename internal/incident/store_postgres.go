// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package incident

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdnguyen/vaultgate/internal/platform/database/schema"
	"github.com/tdnguyen/vaultgate/internal/platform/dberr"
)

// # Postgres Repository

// PostgresRepository persists incidents in the system.incident table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert persists a freshly reported incident.
func (repository *PostgresRepository) Insert(ctx context.Context, record *Incident) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		schema.SystemIncident.Table,
		strings.Join(schema.SystemIncident.Columns(), ", "),
	)

	_, err := repository.pool.Exec(ctx, query,
		record.ID,
		record.IncidentType,
		string(record.Severity),
		record.Description,
		record.ReportedBy,
		nullable(record.AffectedUserID),
		nullable(record.IPAddress),
		nullable(record.UserAgent),
		rawOrNil(record.AdditionalData),
		string(record.Status),
		record.CreatedAt,
		record.UpdatedAt,
		nullable(record.ResolvedBy),
		record.ResolvedAt,
		nullable(record.Notes),
	)
	if err != nil {
		return fmt.Errorf("postgres_incident_repo_insert_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves one incident by its identifier.

Parameters:
  - ctx: context.Context
  - id: string (incident UUID)

Returns:
  - *Incident: the hydrated record
  - error: ErrNotFound when absent, otherwise storage errors
*/
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Incident, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		strings.Join(schema.SystemIncident.Columns(), ", "),
		schema.SystemIncident.Table,
		schema.SystemIncident.ID,
	)

	row := repository.pool.QueryRow(ctx, query, id)
	record, err := scanIncident(row)
	if err != nil {
		return nil, dberr.Wrap(err, "incident_find_by_id")
	}

	return record, nil
}

// Update persists the mutable lifecycle fields of an incident.
func (repository *PostgresRepository) Update(ctx context.Context, record *Incident) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6
		WHERE %s = $1`,
		schema.SystemIncident.Table,
		schema.SystemIncident.Status,
		schema.SystemIncident.UpdatedAt,
		schema.SystemIncident.ResolvedBy,
		schema.SystemIncident.ResolvedAt,
		schema.SystemIncident.Notes,
		schema.SystemIncident.ID,
	)

	_, err := repository.pool.Exec(ctx, query,
		record.ID,
		string(record.Status),
		record.UpdatedAt,
		nullable(record.ResolvedBy),
		record.ResolvedAt,
		nullable(record.Notes),
	)
	if err != nil {
		return fmt.Errorf("postgres_incident_repo_update_failed: %w", err)
	}

	return nil
}

/*
Find retrieves a page of incidents matching the filter, newest first.

Parameters:
  - ctx: context.Context
  - filter: Filter (severity, status, affected user, pagination)

Returns:
  - []Incident: the matching page
  - int: total matching rows before pagination
  - error: storage errors
*/
func (repository *PostgresRepository) Find(ctx context.Context, filter Filter) ([]Incident, int, error) {

	// Base query with window-function total
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count
		FROM %s
		WHERE 1=1
	`,
		strings.Join(schema.SystemIncident.Columns(), ", "),
		schema.SystemIncident.Table,
	))

	// Filter injection
	if filter.Severity != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.SystemIncident.Severity, argID))
		args = append(args, string(filter.Severity))
		argID++
	}
	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.SystemIncident.Status, argID))
		args = append(args, string(filter.Status))
		argID++
	}
	if filter.AffectedUserID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.SystemIncident.AffectedUserID, argID))
		args = append(args, filter.AffectedUserID)
		argID++
	}

	// Ordering and pagination limits
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC", schema.SystemIncident.CreatedAt))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, filter.Pagination.Limit, filter.Pagination.Offset())

	// Query execution
	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_incident_repo_find_failed: %w", err)
	}
	defer rows.Close()

	// Row iteration and entity hydration
	var incidents []Incident
	var totalCount int

	for rows.Next() {
		var record Incident
		var affectedUserID, ipAddress, userAgent, resolvedBy, notes *string
		var additionalData []byte

		err := rows.Scan(
			&record.ID,
			&record.IncidentType,
			&record.Severity,
			&record.Description,
			&record.ReportedBy,
			&affectedUserID,
			&ipAddress,
			&userAgent,
			&additionalData,
			&record.Status,
			&record.CreatedAt,
			&record.UpdatedAt,
			&resolvedBy,
			&record.ResolvedAt,
			&notes,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_incident_repo_scan_failed: %w", err)
		}

		record.AffectedUserID = deref(affectedUserID)
		record.IPAddress = deref(ipAddress)
		record.UserAgent = deref(userAgent)
		record.ResolvedBy = deref(resolvedBy)
		record.Notes = deref(notes)
		record.AdditionalData = additionalData
		incidents = append(incidents, record)
	}

	return incidents, totalCount, nil
}

// rowScanner abstracts pgx.Row for single-record hydration.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanIncident hydrates one incident from a full-column row.
func scanIncident(row rowScanner) (*Incident, error) {
	var record Incident
	var affectedUserID, ipAddress, userAgent, resolvedBy, notes *string
	var additionalData []byte

	err := row.Scan(
		&record.ID,
		&record.IncidentType,
		&record.Severity,
		&record.Description,
		&record.ReportedBy,
		&affectedUserID,
		&ipAddress,
		&userAgent,
		&additionalData,
		&record.Status,
		&record.CreatedAt,
		&record.UpdatedAt,
		&resolvedBy,
		&record.ResolvedAt,
		&notes,
	)
	if err != nil {
		return nil, err
	}

	record.AffectedUserID = deref(affectedUserID)
	record.IPAddress = deref(ipAddress)
	record.UserAgent = deref(userAgent)
	record.ResolvedBy = deref(resolvedBy)
	record.Notes = deref(notes)
	record.AdditionalData = additionalData
	return &record, nil
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

// rawOrNil maps an empty JSON payload to SQL NULL.
func rawOrNil(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
