// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package session

import (
	"context"
	"sync"
	"time"

	"github.com/tdnguyen/vaultgate/internal/platform/apperr"
)

// MemoryRepository implements [Repository] over an in-process map.
//
// It backs the deterministic tests and is honest about the concurrency
// contract: a single mutex guards the token index, so concurrent
// validate/revoke on the same token always observe a whole row.
type MemoryRepository struct {
	mu       sync.RWMutex
	byHash   map[string]*Session
	byUserID map[string][]*Session
}

// NewMemoryRepository creates an empty in-memory [Repository].
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byHash:   make(map[string]*Session),
		byUserID: make(map[string][]*Session),
	}
}

// Insert implements [Repository].
func (repository *MemoryRepository) Insert(_ context.Context, session *Session) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored := *session
	repository.byHash[session.TokenHash] = &stored
	repository.byUserID[session.UserID] = append(repository.byUserID[session.UserID], &stored)
	return nil
}

// FindByTokenHash implements [Repository]. A copy is returned so callers
// can never mutate the stored row.
func (repository *MemoryRepository) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	stored, ok := repository.byHash[tokenHash]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	found := *stored
	return &found, nil
}

// Revoke implements [Repository]. Unknown tokens are a silent no-op.
func (repository *MemoryRepository) Revoke(_ context.Context, tokenHash string, at time.Time) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if stored, ok := repository.byHash[tokenHash]; ok && stored.IsActive {
		stored.IsActive = false
		revokedAt := at
		stored.RevokedAt = &revokedAt
		return true, nil
	}
	return false, nil
}

// RevokeAllForUser implements [Repository].
func (repository *MemoryRepository) RevokeAllForUser(_ context.Context, userID string, at time.Time) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, stored := range repository.byUserID[userID] {
		if stored.IsActive {
			stored.IsActive = false
			revokedAt := at
			stored.RevokedAt = &revokedAt
		}
	}
	return nil
}

// Len reports how many sessions are stored. Sessions are never deleted, so
// this only grows, matching the append-only retention the audit trail relies on.
func (repository *MemoryRepository) Len() int {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	return len(repository.byHash)
}
