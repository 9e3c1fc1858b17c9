// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/tdnguyen/vaultgate/internal/identity"
	"github.com/tdnguyen/vaultgate/internal/platform/apperr"
	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/internal/platform/constants"
	"github.com/tdnguyen/vaultgate/internal/platform/sec"
	"github.com/tdnguyen/vaultgate/pkg/uuid"
)

// # Contracts & Types

// PrincipalResolver is the slice of the identity provider the session
// service needs: turning a user ID into an active-or-not principal.
type PrincipalResolver interface {
	ResolveByID(context context.Context, userID string) (*identity.Principal, error)
}

// Service implements the session lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to token generation,
// validation, or revocation logic must be reviewed by the security team.
type Service struct {
	repository Repository
	principals PrincipalResolver
	clk        clock.Clock
	ttl        time.Duration
}

// NewService constructs a session [*Service] with necessary dependencies.
func NewService(repository Repository, principals PrincipalResolver, clk clock.Clock, ttl time.Duration) *Service {
	return &Service{
		repository: repository,
		principals: principals,
		clk:        clk,
		ttl:        ttl,
	}
}

// # Lifecycle

/*
Create mints a new opaque session for an active principal.

Description: Resolves the principal, rejects inactive or unknown users,
generates a 256-bit random token, and persists only its SHA-256 digest.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Created: The session plus the one-time plain token
  - error: apperr.PrincipalInvalid or storage failures
*/
func (service *Service) Create(context context.Context, userID string) (*Created, error) {

	// The calling identity must resolve to an active user.
	principal, err := service.principals.ResolveByID(context, userID)
	if err != nil || !principal.IsActive {
		return nil, apperr.PrincipalInvalid()
	}

	token, err := sec.GenerateSecureToken(constants.SessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("session_service_token_generation_failed: %w", err)
	}

	now := service.clk.Now()
	created := Session{
		ID:        uuid.New(),
		UserID:    principal.UserID,
		TokenHash: sec.HashToken(token),
		IsActive:  true,
		ExpiresAt: now.Add(service.ttl),
		CreatedAt: now,
	}

	if err := service.repository.Insert(context, &created); err != nil {
		return nil, fmt.Errorf("session_service_create_failed: %w", err)
	}

	return &Created{Session: created, Token: token}, nil
}

/*
Validate resolves an opaque token to its principal.

Description: A session is valid iff isActive && now < expiresAt. Every
failure mode (unknown token, expired, revoked, inactive principal)
collapses into the same uniform Unauthenticated result so callers can
never enumerate session state.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *identity.Principal: The session's principal and role
  - error: apperr.Unauthenticated (uniform) or internal failures
*/
func (service *Service) Validate(context context.Context, token string) (*identity.Principal, error) {
	stored, err := service.repository.FindByTokenHash(context, sec.HashToken(token))
	if err != nil {
		return nil, apperr.Unauthenticated()
	}

	now := service.clk.Now()
	if !stored.IsActive || !now.Before(stored.ExpiresAt) {
		return nil, apperr.Unauthenticated()
	}

	principal, err := service.principals.ResolveByID(context, stored.UserID)
	if err != nil || !principal.IsActive {
		// The user vanished or was locked after the session was minted.
		return nil, apperr.Unauthenticated()
	}

	return principal, nil
}

/*
Revoke invalidates an opaque token.

Description: Idempotent by contract. Revoking an unknown or already
inactive token is a successful no-op, reported as such so the caller's
audit trail can tell the two apart.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - bool: Whether a live session was actually revoked
  - error: Persistence failures only
*/
func (service *Service) Revoke(context context.Context, token string) (bool, error) {
	revoked, err := service.repository.Revoke(context, sec.HashToken(token), service.clk.Now())
	if err != nil {
		return false, fmt.Errorf("session_service_revoke_failed: %w", err)
	}
	return revoked, nil
}

/*
RevokeAllForUser invalidates every active session of a user.

Description: Security cleanup on password change or account lock.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch persistence failures
*/
func (service *Service) RevokeAllForUser(context context.Context, userID string) error {
	if err := service.repository.RevokeAllForUser(context, userID, service.clk.Now()); err != nil {
		return fmt.Errorf("session_service_revoke_all_failed: %w", err)
	}
	return nil
}
