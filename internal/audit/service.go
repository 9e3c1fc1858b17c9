// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package audit

import (
	"context"

	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/internal/platform/ops"
	"github.com/tdnguyen/vaultgate/pkg/uuid"
)

// # Service

/*
Service coordinates audit recording and retrieval.

Recording is best-effort: a storage failure is handed to the ops reporter
and never surfaces to the operation being audited. Losing one trail line
is preferable to failing a user-facing request over a telemetry write.
*/
type Service struct {
	repository Repository
	reporter   *ops.Reporter
	clk        clock.Clock
}

// NewService constructs an audit [Service].
func NewService(repository Repository, reporter *ops.Reporter, clk clock.Clock) *Service {
	return &Service{
		repository: repository,
		reporter:   reporter,
		clk:        clk,
	}
}

/*
Record appends one entry to the trail.

Description: Assigns the entry ID and timestamp, enforces the
error-iff-failure shape, and swallows storage errors after reporting
them out-of-band.

Parameters:
  - ctx: context.Context
  - entry: Entry (caller fills UserID, ResourceID, Action, Success and
    the optional request metadata)
*/
func (service *Service) Record(ctx context.Context, entry Entry) {
	entry.ID = uuid.Must()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = service.clk.Now()
	}

	// A successful entry carries no error message.
	if entry.Success {
		entry.Error = ""
	}

	if err := service.repository.Insert(ctx, &entry); err != nil {
		service.reporter.Report(ops.Event{
			Component: "audit",
			Op:        "record",
			Err:       err,
			At:        service.clk.Now(),
		})
	}
}

/*
Query returns a page of the trail matching the filter.

Parameters:
  - ctx: context.Context
  - filter: Filter (narrowing, sort, pagination)

Returns:
  - []Entry: the matching page
  - int: total matching rows before pagination
  - error: storage errors
*/
func (service *Service) Query(ctx context.Context, filter Filter) ([]Entry, int, error) {
	if filter.Sort == "" {
		filter.Sort = SortDesc
	}
	return service.repository.Find(ctx, filter)
}
