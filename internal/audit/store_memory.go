// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package audit

import (
	"context"
	"sync"
)

// # In-Memory Repository

// MemoryRepository keeps the trail in an append-ordered slice. Used in
// tests and as a hermetic stand-in for PostgreSQL.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryRepository creates an empty in-memory [Repository].
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Insert appends one entry. Entries are stored by value so later caller
// mutations cannot reach the trail.
func (repository *MemoryRepository) Insert(_ context.Context, entry *Entry) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.entries = append(repository.entries, *entry)
	return nil
}

// Find filters the trail in insertion order, then applies sort direction
// and pagination the same way the SQL implementation does.
func (repository *MemoryRepository) Find(_ context.Context, filter Filter) ([]Entry, int, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	var matched []Entry
	for _, entry := range repository.entries {
		if filter.UserID != "" && entry.UserID != filter.UserID {
			continue
		}
		if filter.ResourceID != "" && entry.ResourceID != filter.ResourceID {
			continue
		}
		if !filter.From.IsZero() && entry.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !entry.Timestamp.Before(filter.To) {
			continue
		}
		matched = append(matched, entry)
	}

	// Insertion order is timestamp order; desc just reverses it.
	if filter.Sort != SortAsc {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	total := len(matched)

	offset := filter.Pagination.Offset()
	if offset > total {
		offset = total
	}
	end := total
	if filter.Pagination.Limit > 0 && offset+filter.Pagination.Limit < end {
		end = offset + filter.Pagination.Limit
	}

	return matched[offset:end], total, nil
}

// Len returns the number of recorded entries. Test helper.
func (repository *MemoryRepository) Len() int {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	return len(repository.entries)
}
