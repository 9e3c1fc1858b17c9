// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package incident

import (
	"context"

	"github.com/tdnguyen/vaultgate/pkg/pagination"
)

// # Filter

// Filter narrows an incident query. Zero-valued fields are ignored.
type Filter struct {
	Severity       Severity
	Status         Status
	AffectedUserID string
	Pagination     pagination.Params
}

// # Storage Contract

// Repository is the storage contract for incidents.
type Repository interface {

	// Insert persists a freshly reported incident.
	Insert(ctx context.Context, record *Incident) error

	// FindByID retrieves one incident, apperr.ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (*Incident, error)

	// Update persists lifecycle fields (status, timestamps, resolution,
	// notes) of an existing incident.
	Update(ctx context.Context, record *Incident) error

	// Find retrieves a page of incidents matching the filter plus the
	// total match count.
	Find(ctx context.Context, filter Filter) ([]Incident, int, error)
}
