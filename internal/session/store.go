// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package session

import (
	"context"
	"time"
)

// # Session Data Access

// Repository defines the data access contract for opaque-token sessions.
//
// Implementations must be safe for concurrent use: a concurrent
// FindByTokenHash/Revoke pair on the same token must observe a consistent
// before/after state, never a half-updated row.
type Repository interface {

	/*
		Insert persists a new session for an authenticated principal.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the session matching the given token hash,
		regardless of validity. Validity is the service's judgement; the
		row is needed even when expired, for uniform failure handling.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Revoke flips the session with the given token hash to inactive.
		Revoking an unknown or already-inactive token is a no-op, never an
		error. The operation is idempotent by contract.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - at: time.Time (revocation instant recorded on the row)

		Returns:
		  - bool: Whether a live session was actually flipped
		  - error: Persistence failures only
	*/
	Revoke(context context.Context, tokenHash string, at time.Time) (bool, error)

	/*
		RevokeAllForUser flips every active session of the user to inactive.
		Used on password change or account lock.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - at: time.Time

		Returns:
		  - error: Batch persistence failures
	*/
	RevokeAllForUser(context context.Context, userID string, at time.Time) error
}
