// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/vaultgate/internal/audit"
	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/internal/platform/ops"
	"github.com/tdnguyen/vaultgate/pkg/pagination"
)

// failingRecorder always rejects inserts, to exercise the ops path.
type failingRecorder struct{}

func (failingRecorder) Insert(context.Context, *audit.Entry) error {
	return errors.New("disk on fire")
}

func (failingRecorder) Find(context.Context, audit.Filter) ([]audit.Entry, int, error) {
	return nil, 0, nil
}

func newService(t *testing.T) (*audit.Service, *audit.MemoryRepository, *clock.Mock) {
	t.Helper()
	repository := audit.NewMemoryRepository()
	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	reporter := ops.NewReporter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return audit.NewService(repository, reporter, mockClock), repository, mockClock
}

/*
TestService_Record_AssignsIdentityAndTimestamp verifies that recording
stamps each entry with an ID and the clock's current time.
*/
func TestService_Record_AssignsIdentityAndTimestamp(t *testing.T) {
	service, _, mockClock := newService(t)

	service.Record(context.Background(), audit.Entry{
		UserID:     "user-alice",
		ResourceID: "file-1",
		Action:     audit.ActionDownload,
		Success:    true,
	})

	entries, total, err := service.Query(context.Background(), audit.Filter{
		Pagination: pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, mockClock.Now(), entries[0].Timestamp)
}

/*
TestService_Record_ErrorShape verifies the error-iff-failure invariant:
a success entry sheds any error text, a failure entry keeps it.
*/
func TestService_Record_ErrorShape(t *testing.T) {
	service, _, _ := newService(t)

	service.Record(context.Background(), audit.Entry{
		UserID: "user-alice", ResourceID: "file-1",
		Action: audit.ActionUpload, Success: true, Error: "stale text",
	})
	service.Record(context.Background(), audit.Entry{
		UserID: "user-alice", ResourceID: "file-1",
		Action: audit.ActionDelete, Success: false, Error: "forbidden",
	})

	entries, _, err := service.Query(context.Background(), audit.Filter{
		Sort:       audit.SortAsc,
		Pagination: pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].Error)
	assert.Equal(t, "forbidden", entries[1].Error)
}

/*
TestService_Record_StorageFailureIsSwallowed verifies that a broken
store never fails the audited operation and lands on the ops channel.
*/
func TestService_Record_StorageFailureIsSwallowed(t *testing.T) {
	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	reporter := ops.NewReporter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	service := audit.NewService(failingRecorder{}, reporter, mockClock)

	// Must not panic or propagate anything.
	service.Record(context.Background(), audit.Entry{
		UserID: "user-alice", ResourceID: "file-1",
		Action: audit.ActionView, Success: true,
	})

	select {
	case event := <-reporter.Events():
		assert.Equal(t, "audit", event.Component)
		assert.Equal(t, "record", event.Op)
		assert.Error(t, event.Err)
	default:
		t.Fatal("expected an ops event for the failed write")
	}
}

/*
TestService_Query_Filters verifies narrowing by user, resource, and time
range.
*/
func TestService_Query_Filters(t *testing.T) {
	service, _, mockClock := newService(t)

	service.Record(context.Background(), audit.Entry{
		UserID: "user-alice", ResourceID: "file-1", Action: audit.ActionView, Success: true,
	})
	mockClock.Advance(time.Minute)
	boundary := mockClock.Now()
	service.Record(context.Background(), audit.Entry{
		UserID: "user-bob", ResourceID: "file-1", Action: audit.ActionDownload, Success: true,
	})
	mockClock.Advance(time.Minute)
	service.Record(context.Background(), audit.Entry{
		UserID: "user-alice", ResourceID: "file-2", Action: audit.ActionDelete, Success: false, Error: "denied",
	})

	page := pagination.Params{Page: 1, Limit: 10}

	byUser, total, err := service.Query(context.Background(), audit.Filter{UserID: "user-alice", Pagination: page})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, byUser, 2)

	byResource, total, err := service.Query(context.Background(), audit.Filter{ResourceID: "file-1", Pagination: page})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, byResource, 2)

	// From is inclusive, To is exclusive.
	inRange, total, err := service.Query(context.Background(), audit.Filter{
		From: boundary, To: boundary.Add(time.Minute), Pagination: page,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "user-bob", inRange[0].UserID)
}

/*
TestService_Query_OrderingAndPagination verifies the default descending
order, explicit ascending order, and page slicing.
*/
func TestService_Query_OrderingAndPagination(t *testing.T) {
	service, _, mockClock := newService(t)

	resources := []string{"file-1", "file-2", "file-3"}
	for _, resource := range resources {
		service.Record(context.Background(), audit.Entry{
			UserID: "user-alice", ResourceID: resource, Action: audit.ActionView, Success: true,
		})
		mockClock.Advance(time.Second)
	}

	// Default: newest first.
	defaultOrder, _, err := service.Query(context.Background(), audit.Filter{
		Pagination: pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, "file-3", defaultOrder[0].ResourceID)

	// Ascending, second page of one.
	secondPage, total, err := service.Query(context.Background(), audit.Filter{
		Sort:       audit.SortAsc,
		Pagination: pagination.Params{Page: 2, Limit: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, secondPage, 1)
	assert.Equal(t, "file-2", secondPage[0].ResourceID)
}

/*
TestMemoryRepository_AppendOnly verifies the package exposes no way to
change history: re-recording leaves prior entries intact.
*/
func TestMemoryRepository_AppendOnly(t *testing.T) {
	service, repository, _ := newService(t)

	entry := audit.Entry{
		UserID: "user-alice", ResourceID: "file-1", Action: audit.ActionUpload, Success: true,
	}
	service.Record(context.Background(), entry)
	service.Record(context.Background(), entry)

	assert.Equal(t, 2, repository.Len())

	entries, _, err := service.Query(context.Background(), audit.Filter{
		Pagination: pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}
