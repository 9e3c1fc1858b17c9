// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package identity is the boundary to the external identity provider.

Vaultgate does not own accounts. It consumes a yes/no credential verdict
plus the principal's role and active flag; everything else about the user
(profile, registration, verification flows) belongs to the upstream
platform.

Architecture:

  - Principal: The opaque {userID, role, isActive} triple the core consumes.
  - Provider: The contract for credential verification and ID resolution.
  - PostgresProvider: The shipped implementation, reading users.account.

Password hashing remains a pluggable capability: [Provider] only promises a
verdict, and the bcrypt check is an implementation detail of the Postgres
provider.
*/
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdnguyen/vaultgate/internal/platform/apperr"
	"github.com/tdnguyen/vaultgate/internal/platform/sec"
)

// # Contracts & Types

// Principal is the resolved identity the core treats as opaque.
type Principal struct {
	UserID   string       `json:"user_id"`
	Role     sec.UserRole `json:"role"`
	IsActive bool         `json:"is_active"`
}

// Provider defines the external identity contract.
type Provider interface {

	/*
		Verify checks credentials and returns the matching principal.

		Parameters:
		  - context: context.Context
		  - email: string
		  - password: string

		Returns:
		  - *Principal: Resolved identity
		  - error: apperr.Unauthorized for any credential failure
	*/
	Verify(context context.Context, email, password string) (*Principal, error)

	/*
		ResolveByID returns the principal with the given user ID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Principal: Resolved identity
		  - error: apperr.NotFound or database retrieval failures
	*/
	ResolveByID(context context.Context, userID string) (*Principal, error)
}

// # Postgres Provider

// PostgresProvider implements [Provider] against the users.account table.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider creates a new PostgreSQL-backed identity provider.
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

/*
Verify checks an email/password pair against the stored bcrypt hash.

Description: Performs constant-time password comparison and returns a
generic Unauthorized for every failure mode to prevent enumeration.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Principal: Resolved identity
  - error: apperr.Unauthorized or database errors
*/
func (provider *PostgresProvider) Verify(context context.Context, email, password string) (*Principal, error) {
	const query = `
		SELECT id, passwordhash, role, isactive
		FROM users.account
		WHERE email = $1`

	var (
		principal    Principal
		passwordHash string
	)
	err := provider.pool.QueryRow(context, query, email).Scan(
		&principal.UserID,
		&passwordHash,
		&principal.Role,
		&principal.IsActive,
	)

	// Unknown email. Generic message to prevent enumeration.
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, fmt.Errorf("postgres_identity_verify_failed: %w", err)
	}

	// Constant-time comparison in bcrypt prevents timing attacks.
	if !sec.CheckPasswordHash(password, passwordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return &principal, nil
}

/*
ResolveByID retrieves the principal for a user ID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Principal: Resolved identity
  - error: apperr.NotFound or execution errors
*/
func (provider *PostgresProvider) ResolveByID(context context.Context, userID string) (*Principal, error) {
	const query = `
		SELECT id, role, isactive
		FROM users.account
		WHERE id = $1`

	principal := &Principal{}
	err := provider.pool.QueryRow(context, query, userID).Scan(
		&principal.UserID,
		&principal.Role,
		&principal.IsActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_identity_resolve_failed: %w", err)
	}

	return principal, nil
}

// # In-Memory Provider (tests and local development)

// MemoryProvider implements [Provider] over a fixed principal set.
type MemoryProvider struct {
	principals map[string]*memoryAccount
}

type memoryAccount struct {
	principal Principal
	password  string
}

// NewMemoryProvider creates an empty in-memory identity provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{principals: make(map[string]*memoryAccount)}
}

// Add registers a principal with a plain-text password under the given email.
func (provider *MemoryProvider) Add(email, password string, principal Principal) {
	provider.principals[email] = &memoryAccount{principal: principal, password: password}
}

// Verify implements [Provider].
func (provider *MemoryProvider) Verify(_ context.Context, email, password string) (*Principal, error) {
	account, ok := provider.principals[email]
	if !ok || account.password != password {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	resolved := account.principal
	return &resolved, nil
}

// ResolveByID implements [Provider].
func (provider *MemoryProvider) ResolveByID(_ context.Context, userID string) (*Principal, error) {
	for _, account := range provider.principals {
		if account.principal.UserID == userID {
			resolved := account.principal
			return &resolved, nil
		}
	}
	return nil, apperr.NotFound("User")
}
