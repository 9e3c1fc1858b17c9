// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package incident

import (
	"context"
	"sort"
	"sync"

	"github.com/tdnguyen/vaultgate/internal/platform/dberr"
)

// # In-Memory Repository

// MemoryRepository keeps incidents in a map. Used in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Incident
}

// NewMemoryRepository creates an empty in-memory [Repository].
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Incident)}
}

// Insert persists a freshly reported incident.
func (repository *MemoryRepository) Insert(_ context.Context, record *Incident) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.records[record.ID] = *record
	return nil
}

// FindByID retrieves one incident, ErrNotFound when absent.
func (repository *MemoryRepository) FindByID(_ context.Context, id string) (*Incident, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	record, ok := repository.records[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return &record, nil
}

// Update replaces the stored record.
func (repository *MemoryRepository) Update(_ context.Context, record *Incident) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.records[record.ID]; !ok {
		return dberr.ErrNotFound
	}
	repository.records[record.ID] = *record
	return nil
}

// Find filters incidents, newest first, then paginates.
func (repository *MemoryRepository) Find(_ context.Context, filter Filter) ([]Incident, int, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	var matched []Incident
	for _, record := range repository.records {
		if filter.Severity != "" && record.Severity != filter.Severity {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.AffectedUserID != "" && record.AffectedUserID != filter.AffectedUserID {
			continue
		}
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

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
