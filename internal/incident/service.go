// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package incident

import (
	"context"
	"encoding/json"

	"github.com/tdnguyen/vaultgate/internal/platform/apperr"
	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/pkg/uuid"
)

// # Policy

// Policy tunes the lifecycle rules without changing the state machine.
type Policy struct {

	// AllowDirectResolve permits open -> resolved without passing
	// through investigating. Off by default.
	AllowDirectResolve bool
}

// # Service

/*
Service owns the incident lifecycle.

All transition rules live here; the storage layer persists whatever state
the service hands it and never interprets the workflow.
*/
type Service struct {
	repository Repository
	clk        clock.Clock
	policy     Policy
}

// NewService constructs an incident [Service].
func NewService(repository Repository, clk clock.Clock, policy Policy) *Service {
	return &Service{
		repository: repository,
		clk:        clk,
		policy:     policy,
	}
}

// # Reporting

// ReportInput carries the facts of a new incident.
type ReportInput struct {
	IncidentType   string
	Severity       Severity
	Description    string
	ReportedBy     string
	AffectedUserID string
	IPAddress      string
	UserAgent      string
	AdditionalData json.RawMessage
}

/*
Report files a new incident in the open state.

Parameters:
  - ctx: context.Context
  - input: ReportInput (type, severity, description, reporter are required)

Returns:
  - *Incident: the persisted record with identity and timestamps
  - error: ErrValidation on a bad severity, storage errors
*/
func (service *Service) Report(ctx context.Context, input ReportInput) (*Incident, error) {
	if !input.Severity.Valid() {
		return nil, apperr.ValidationError("Unknown incident severity")
	}

	now := service.clk.Now()
	record := &Incident{
		ID:             uuid.Must(),
		IncidentType:   input.IncidentType,
		Severity:       input.Severity,
		Description:    input.Description,
		ReportedBy:     input.ReportedBy,
		AffectedUserID: input.AffectedUserID,
		IPAddress:      input.IPAddress,
		UserAgent:      input.UserAgent,
		AdditionalData: input.AdditionalData,
		Status:         StatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := service.repository.Insert(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// # Lifecycle

// TransitionInput describes one requested status change.
type TransitionInput struct {

	// ID identifies the incident.
	ID string

	// To is the requested target status.
	To Status

	// ActorID is who performs the change. Required when entering
	// resolved, where it becomes ResolvedBy.
	ActorID string

	// Notes optionally annotates the change.
	Notes string
}

/*
Transition moves an incident to a new lifecycle state.

Description: Loads the record, checks the requested edge against the
workflow, and persists the result. A rejected transition leaves the
stored record byte-for-byte unchanged.

Rules:
  - closed incidents reject every transition (ErrIncidentClosed)
  - open -> investigating
  - open -> resolved, only under [Policy].AllowDirectResolve
  - investigating -> resolved, requires ActorID
  - investigating -> open (de-escalation)
  - resolved -> closed (terminal)
  - resolved -> investigating (reopen, clears the resolution fields)
  - everything else fails ErrInvalidTransition

Parameters:
  - ctx: context.Context
  - input: TransitionInput

Returns:
  - *Incident: the updated record
  - error: workflow violations or storage errors
*/
func (service *Service) Transition(ctx context.Context, input TransitionInput) (*Incident, error) {
	if !input.To.Valid() {
		return nil, apperr.ValidationError("Unknown incident status")
	}

	record, err := service.repository.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	// 1. A closed incident is immutable forever.
	if record.Status == StatusClosed {
		return nil, apperr.IncidentClosed()
	}

	// 2. Reject any edge outside the workflow before touching the record.
	if !service.allowed(record.Status, input.To) {
		return nil, apperr.InvalidTransition(string(record.Status), string(input.To))
	}

	// 3. Entering resolved needs a resolver identity.
	now := service.clk.Now()
	if input.To == StatusResolved {
		if input.ActorID == "" {
			return nil, apperr.ValidationError("Resolving an incident requires a resolver")
		}
		record.ResolvedBy = input.ActorID
		record.ResolvedAt = &now
	}

	// 4. Reopening discards the stale resolution.
	if record.Status == StatusResolved && input.To == StatusInvestigating {
		record.ResolvedBy = ""
		record.ResolvedAt = nil
	}

	record.Status = input.To
	record.UpdatedAt = now
	if input.Notes != "" {
		record.Notes = input.Notes
	}

	if err := service.repository.Update(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// allowed reports whether the workflow contains the (from, to) edge.
func (service *Service) allowed(from, to Status) bool {
	switch from {
	case StatusOpen:
		if to == StatusInvestigating {
			return true
		}
		return to == StatusResolved && service.policy.AllowDirectResolve
	case StatusInvestigating:
		return to == StatusResolved || to == StatusOpen
	case StatusResolved:
		return to == StatusClosed || to == StatusInvestigating
	}
	return false
}

// # Queries

// Get retrieves one incident by ID.
func (service *Service) Get(ctx context.Context, id string) (*Incident, error) {
	return service.repository.FindByID(ctx, id)
}

/*
Query returns a page of incidents matching the filter, newest first.

Parameters:
  - ctx: context.Context
  - filter: Filter (severity, status, affected user, pagination)

Returns:
  - []Incident: the matching page
  - int: total matching rows before pagination
  - error: storage errors
*/
func (service *Service) Query(ctx context.Context, filter Filter) ([]Incident, int, error) {
	return service.repository.Find(ctx, filter)
}
