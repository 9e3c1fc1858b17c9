// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package incident_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/vaultgate/internal/incident"
	"github.com/tdnguyen/vaultgate/internal/platform/apperr"
	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/pkg/pagination"
)

func newService(t *testing.T, policy incident.Policy) (*incident.Service, *clock.Mock) {
	t.Helper()
	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	return incident.NewService(incident.NewMemoryRepository(), mockClock, policy), mockClock
}

func report(t *testing.T, service *incident.Service) *incident.Incident {
	t.Helper()
	record, err := service.Report(context.Background(), incident.ReportInput{
		IncidentType: "unauthorized_access",
		Severity:     incident.SeverityHigh,
		Description:  "Token replay against shared folder",
		ReportedBy:   "admin-1",
	})
	require.NoError(t, err)
	return record
}

// advance walks an incident through the given statuses, failing on any
// rejected step.
func advance(t *testing.T, service *incident.Service, id string, path ...incident.Status) *incident.Incident {
	t.Helper()
	var record *incident.Incident
	var err error
	for _, status := range path {
		record, err = service.Transition(context.Background(), incident.TransitionInput{
			ID: id, To: status, ActorID: "admin-2",
		})
		require.NoError(t, err)
	}
	return record
}

/*
TestService_Report verifies that a new incident opens with identity,
timestamps, and the reporter pinned.
*/
func TestService_Report(t *testing.T) {
	service, mockClock := newService(t, incident.Policy{})

	record := report(t, service)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, incident.StatusOpen, record.Status)
	assert.Equal(t, incident.SeverityHigh, record.Severity)
	assert.Equal(t, "admin-1", record.ReportedBy)
	assert.Equal(t, mockClock.Now(), record.CreatedAt)
	assert.Equal(t, mockClock.Now(), record.UpdatedAt)
	assert.Nil(t, record.ResolvedAt)
}

func TestService_Report_UnknownSeverity(t *testing.T) {
	service, _ := newService(t, incident.Policy{})

	_, err := service.Report(context.Background(), incident.ReportInput{
		IncidentType: "unauthorized_access",
		Severity:     "catastrophic",
		Description:  "x",
		ReportedBy:   "admin-1",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_Transition_Matrix exercises every (from, to) pair of the
lifecycle and checks the exact acceptance set.
*/
func TestService_Transition_Matrix(t *testing.T) {
	statuses := []incident.Status{
		incident.StatusOpen, incident.StatusInvestigating,
		incident.StatusResolved, incident.StatusClosed,
	}

	// Paths that put a fresh incident into each starting state.
	paths := map[incident.Status][]incident.Status{
		incident.StatusOpen:          {},
		incident.StatusInvestigating: {incident.StatusInvestigating},
		incident.StatusResolved:      {incident.StatusInvestigating, incident.StatusResolved},
		incident.StatusClosed:        {incident.StatusInvestigating, incident.StatusResolved, incident.StatusClosed},
	}

	allowed := map[incident.Status]map[incident.Status]bool{
		incident.StatusOpen:          {incident.StatusInvestigating: true},
		incident.StatusInvestigating: {incident.StatusOpen: true, incident.StatusResolved: true},
		incident.StatusResolved:      {incident.StatusInvestigating: true, incident.StatusClosed: true},
		incident.StatusClosed:        {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				service, _ := newService(t, incident.Policy{})
				record := report(t, service)
				if len(paths[from]) > 0 {
					advance(t, service, record.ID, paths[from]...)
				}

				updated, err := service.Transition(context.Background(), incident.TransitionInput{
					ID: record.ID, To: to, ActorID: "admin-2",
				})

				if allowed[from][to] {
					require.NoError(t, err)
					assert.Equal(t, to, updated.Status)
					return
				}

				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				if from == incident.StatusClosed {
					assert.Equal(t, "INCIDENT_CLOSED", ae.Code)
				} else {
					assert.Equal(t, "INVALID_TRANSITION", ae.Code)
				}

				// The stored record must be untouched by the rejection.
				stored, err := service.Get(context.Background(), record.ID)
				require.NoError(t, err)
				assert.Equal(t, from, stored.Status)
			})
		}
	}
}

/*
TestService_Transition_FullLifecycle walks a record end to end through
open, investigating, resolved, closed, and checks immutability afterwards.
*/
func TestService_Transition_FullLifecycle(t *testing.T) {
	service, mockClock := newService(t, incident.Policy{})
	record := report(t, service)

	mockClock.Advance(10 * time.Minute)
	investigating := advance(t, service, record.ID, incident.StatusInvestigating)
	assert.Equal(t, mockClock.Now(), investigating.UpdatedAt)

	mockClock.Advance(time.Hour)
	resolved, err := service.Transition(context.Background(), incident.TransitionInput{
		ID: record.ID, To: incident.StatusResolved, ActorID: "admin-2", Notes: "token rotated",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin-2", resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, mockClock.Now(), *resolved.ResolvedAt)
	assert.Equal(t, "token rotated", resolved.Notes)

	closed := advance(t, service, record.ID, incident.StatusClosed)
	assert.Equal(t, incident.StatusClosed, closed.Status)

	// Closed is terminal for every target.
	for _, to := range []incident.Status{
		incident.StatusOpen, incident.StatusInvestigating,
		incident.StatusResolved, incident.StatusClosed,
	} {
		_, err := service.Transition(context.Background(), incident.TransitionInput{
			ID: record.ID, To: to, ActorID: "admin-2",
		})
		require.Error(t, err)
		assert.Equal(t, "INCIDENT_CLOSED", apperr.As(err).Code)
	}

	// Severity and reporter survived the whole lifecycle.
	final, err := service.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, incident.SeverityHigh, final.Severity)
	assert.Equal(t, "admin-1", final.ReportedBy)
}

/*
TestService_Transition_ResolveRequiresResolver verifies that entering
resolved without an actor is rejected.
*/
func TestService_Transition_ResolveRequiresResolver(t *testing.T) {
	service, _ := newService(t, incident.Policy{})
	record := report(t, service)
	advance(t, service, record.ID, incident.StatusInvestigating)

	_, err := service.Transition(context.Background(), incident.TransitionInput{
		ID: record.ID, To: incident.StatusResolved,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	stored, err := service.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, incident.StatusInvestigating, stored.Status)
}

/*
TestService_Transition_DirectResolvePolicy verifies the open -> resolved
shortcut is policy-gated.
*/
func TestService_Transition_DirectResolvePolicy(t *testing.T) {
	t.Run("denied_by_default", func(t *testing.T) {
		service, _ := newService(t, incident.Policy{})
		record := report(t, service)

		_, err := service.Transition(context.Background(), incident.TransitionInput{
			ID: record.ID, To: incident.StatusResolved, ActorID: "admin-2",
		})
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", apperr.As(err).Code)
	})

	t.Run("allowed_when_enabled", func(t *testing.T) {
		service, _ := newService(t, incident.Policy{AllowDirectResolve: true})
		record := report(t, service)

		updated, err := service.Transition(context.Background(), incident.TransitionInput{
			ID: record.ID, To: incident.StatusResolved, ActorID: "admin-2",
		})
		require.NoError(t, err)
		assert.Equal(t, incident.StatusResolved, updated.Status)
		assert.Equal(t, "admin-2", updated.ResolvedBy)
	})
}

/*
TestService_Transition_ReopenClearsResolution verifies that resolved ->
investigating discards the stale resolver and timestamp.
*/
func TestService_Transition_ReopenClearsResolution(t *testing.T) {
	service, _ := newService(t, incident.Policy{})
	record := report(t, service)
	advance(t, service, record.ID, incident.StatusInvestigating, incident.StatusResolved)

	reopened := advance(t, service, record.ID, incident.StatusInvestigating)
	assert.Empty(t, reopened.ResolvedBy)
	assert.Nil(t, reopened.ResolvedAt)
}

/*
TestService_Query_Filters verifies dashboard narrowing by severity,
status, and affected user.
*/
func TestService_Query_Filters(t *testing.T) {
	service, mockClock := newService(t, incident.Policy{})

	first, err := service.Report(context.Background(), incident.ReportInput{
		IncidentType: "repeated_auth_failure", Severity: incident.SeverityMedium,
		Description: "brute force", ReportedBy: "system", AffectedUserID: "user-alice",
	})
	require.NoError(t, err)
	mockClock.Advance(time.Minute)

	_, err = service.Report(context.Background(), incident.ReportInput{
		IncidentType: "data_exfiltration", Severity: incident.SeverityCritical,
		Description: "bulk download", ReportedBy: "admin-1", AffectedUserID: "user-bob",
	})
	require.NoError(t, err)

	advance(t, service, first.ID, incident.StatusInvestigating)

	page := pagination.Params{Page: 1, Limit: 10}

	bySeverity, total, err := service.Query(context.Background(), incident.Filter{
		Severity: incident.SeverityCritical, Pagination: page,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "data_exfiltration", bySeverity[0].IncidentType)

	byStatus, total, err := service.Query(context.Background(), incident.Filter{
		Status: incident.StatusInvestigating, Pagination: page,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, first.ID, byStatus[0].ID)

	byUser, total, err := service.Query(context.Background(), incident.Filter{
		AffectedUserID: "user-alice", Pagination: page,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, first.ID, byUser[0].ID)

	// Newest first.
	all, total, err := service.Query(context.Background(), incident.Filter{Pagination: page})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "data_exfiltration", all[0].IncidentType)
}
