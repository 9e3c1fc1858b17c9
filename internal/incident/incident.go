// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package incident tracks security incidents through an explicit lifecycle.

An incident is reported open, moves through investigation, and ends
closed. The state machine is strict: every transition not listed in the
workflow is rejected with the record untouched, and a closed incident is
immutable forever.

# Lifecycle

	open ──> investigating ──> resolved ──> closed
	  ^            ^  |            |
	  └────────────┘  └────────────┘ (reopen paths)

Resolution requires a resolver identity; severity and the original
reporter can never change after the report.
*/
package incident

import (
	"encoding/json"
	"time"
)

// # Severity

// Severity ranks the impact of an incident.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether the severity is one of the known ranks.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidSeverities lists every recognized severity, for validation messages.
func ValidSeverities() []string {
	return []string{
		string(SeverityLow), string(SeverityMedium),
		string(SeverityHigh), string(SeverityCritical),
	}
}

// # Status

// Status is one state of the incident lifecycle.
type Status string

const (
	StatusOpen          Status = "open"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
)

// Valid reports whether the status is one of the lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInvestigating, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ValidStatuses lists every lifecycle state, for validation messages.
func ValidStatuses() []string {
	return []string{
		string(StatusOpen), string(StatusInvestigating),
		string(StatusResolved), string(StatusClosed),
	}
}

// # Entity

// Incident is one tracked security event.
//
// Severity and ReportedBy are fixed at report time. ResolvedBy and
// ResolvedAt are set when the incident reaches resolved.
type Incident struct {
	ID             string          `json:"id"`
	IncidentType   string          `json:"incident_type"`
	Severity       Severity        `json:"severity"`
	Description    string          `json:"description"`
	ReportedBy     string          `json:"reported_by"`
	AffectedUserID string          `json:"affected_user_id,omitempty"`
	IPAddress      string          `json:"ip_address,omitempty"`
	UserAgent      string          `json:"user_agent,omitempty"`
	AdditionalData json.RawMessage `json:"additional_data,omitempty"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	ResolvedBy     string          `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}
