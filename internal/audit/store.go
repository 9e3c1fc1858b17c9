// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package audit

import (
	"context"
	"time"

	"github.com/tdnguyen/vaultgate/pkg/pagination"
)

// # Sort Order

// SortOrder controls the timestamp direction of query results.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// # Filter

// Filter narrows an audit query. Zero-valued fields are ignored.
type Filter struct {

	// UserID restricts to entries recorded for one principal.
	UserID string

	// ResourceID restricts to entries touching one file.
	ResourceID string

	// From and To bound the timestamp range (inclusive from, exclusive to).
	From time.Time
	To   time.Time

	// Sort orders results by timestamp. Defaults to [SortDesc].
	Sort SortOrder

	// Pagination bounds the result page.
	Pagination pagination.Params
}

// # Storage Contracts

// Recorder appends entries to the trail. Appending is the only write
// the trail supports.
type Recorder interface {
	Insert(ctx context.Context, entry *Entry) error
}

// Query reads the trail back for forensics and the operator dashboard.
type Query interface {
	Find(ctx context.Context, filter Filter) ([]Entry, int, error)
}

// Repository is the full storage contract: an append side and a read side.
type Repository interface {
	Recorder
	Query
}
