// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdnguyen/vaultgate/internal/platform/apperr"
)

// PostgresRepository implements [Repository] using pgx against users.session.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Insert persists a new session record into the users.session table.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *PostgresRepository) Insert(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (
			id, userid, tokenhash, isactive, expiresat, revokedat, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.IsActive,
		session.ExpiresAt,
		session.RevokedAt,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_insert_failed: %w", err)
	}

	return nil
}

/*
FindByTokenHash retrieves a session by its unique token hash.

Description: Returns the row regardless of activity or expiry. The
service layer owns the validity judgement so the failure shape stays
uniform.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated session
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	const query = `
		SELECT id, userid, tokenhash, isactive, expiresat, revokedat, createdat
		FROM users.session
		WHERE tokenhash = $1`

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.IsActive,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", err)
	}

	return session, nil
}

/*
Revoke marks the session with the given token hash as inactive.

Description: Idempotent. Zero rows affected is success, matching the
revoke contract; the affected count tells the caller whether a live
session was actually flipped.

Parameters:
  - context: context.Context
  - tokenHash: string
  - at: time.Time

Returns:
  - bool: Whether a live session was flipped to inactive
  - error: Revocation failures
*/
func (repository *PostgresRepository) Revoke(context context.Context, tokenHash string, at time.Time) (bool, error) {
	const query = `
		UPDATE users.session
		SET isactive = FALSE, revokedat = $2
		WHERE tokenhash = $1 AND isactive = TRUE`

	tag, err := repository.pool.Exec(context, query, tokenHash, at)
	if err != nil {
		return false, fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

/*
RevokeAllForUser marks all active sessions for a user as inactive.

Description: Bulk invalidation used on password change or account lock.

Parameters:
  - context: context.Context
  - userID: string
  - at: time.Time

Returns:
  - error: Batch revocation failures
*/
func (repository *PostgresRepository) RevokeAllForUser(context context.Context, userID string, at time.Time) error {
	const query = `
		UPDATE users.session
		SET isactive = FALSE, revokedat = $2
		WHERE userid = $1 AND isactive = TRUE`

	_, err := repository.pool.Exec(context, query, userID, at)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_all_failed: %w", err)
	}
	return nil
}
