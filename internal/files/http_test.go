// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package files_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/vaultgate/internal/audit"
	"github.com/tdnguyen/vaultgate/internal/files"
	"github.com/tdnguyen/vaultgate/internal/gateway"
	"github.com/tdnguyen/vaultgate/internal/identity"
	"github.com/tdnguyen/vaultgate/internal/incident"
	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/internal/platform/ops"
	"github.com/tdnguyen/vaultgate/internal/platform/sec"
	"github.com/tdnguyen/vaultgate/internal/ratelimit"
	"github.com/tdnguyen/vaultgate/internal/session"
	"github.com/tdnguyen/vaultgate/pkg/pagination"
	"github.com/tdnguyen/vaultgate/pkg/uuid"
)

type webFixture struct {
	server    *httptest.Server
	token     string
	blobs     *files.MemoryBlobStore
	auditRepo *audit.MemoryRepository
	clock     *clock.Mock
}

func newWebFixture(t *testing.T, rules ratelimit.Config) *webFixture {
	t.Helper()

	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	reporter := ops.NewReporter(slog.New(slog.NewTextHandler(io.Discard, nil)))

	provider := identity.NewMemoryProvider()
	provider.Add("alice@example.com", "hunter2-hunter2", identity.Principal{
		UserID: "user-alice", Role: sec.RoleUser, IsActive: true,
	})

	sessions := session.NewService(session.NewMemoryRepository(), provider, mockClock, time.Hour)
	auditRepo := audit.NewMemoryRepository()
	auditor := audit.NewService(auditRepo, reporter, mockClock)
	incidents := incident.NewService(incident.NewMemoryRepository(), mockClock, incident.Policy{})

	tokens, err := sec.NewTokenService("test-secret-test-secret-32bytes!", "vaultgate.test")
	require.NoError(t, err)

	if rules == nil {
		rules = ratelimit.Config{
			ratelimit.DefaultEndpoint: {Window: time.Minute, MaxRequests: 100},
		}
	}

	gatewayService := gateway.NewService(gateway.Deps{
		Sessions:   sessions,
		Identities: provider,
		Tokens:     tokens,
		Limiter:    ratelimit.New(rules, mockClock),
		Auditor:    auditor,
		Incidents:  incidents,
		Failures:   gateway.NewMemoryFailureCounter(mockClock),
		Reporter:   reporter,
		Clock:      mockClock,
	}, gateway.EscalationPolicy{Threshold: 5, Window: 15 * time.Minute})

	blobs := files.NewMemoryBlobStore()
	handler := files.NewHandler(gatewayService, blobs, mockClock)

	created, err := sessions.Create(context.Background(), "user-alice")
	require.NoError(t, err)

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)

	return &webFixture{
		server:    server,
		token:     created.Token,
		blobs:     blobs,
		auditRepo: auditRepo,
		clock:     mockClock,
	}
}

func (f *webFixture) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()

	request, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	t.Cleanup(func() { response.Body.Close() })
	return response
}

func (f *webFixture) lastAudit(t *testing.T) audit.Entry {
	t.Helper()
	entries, _, err := f.auditRepo.Find(context.Background(), audit.Filter{
		Pagination: pagination.Params{Page: 1, Limit: 1},
	})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	return entries[0]
}

/*
TestHandler_DownloadLifecycle seeds a blob and walks view, download, and
delete, checking the audit action written for each.
*/
func TestHandler_DownloadLifecycle(t *testing.T) {
	f := newWebFixture(t, nil)

	id := uuid.Must()
	require.NoError(t, f.blobs.Put(context.Background(), id, strings.NewReader("payload")))

	view := f.do(t, http.MethodGet, "/"+id, f.token, "")
	assert.Equal(t, http.StatusOK, view.StatusCode)
	assert.Equal(t, audit.ActionView, f.lastAudit(t).Action)

	download := f.do(t, http.MethodGet, "/"+id+"/download", f.token, "")
	assert.Equal(t, http.StatusOK, download.StatusCode)
	entry := f.lastAudit(t)
	assert.Equal(t, audit.ActionDownload, entry.Action)
	assert.Equal(t, "user-alice", entry.UserID)
	assert.Equal(t, id, entry.ResourceID)
	assert.True(t, entry.Success)

	remove := f.do(t, http.MethodDelete, "/"+id, f.token, "")
	assert.Equal(t, http.StatusNoContent, remove.StatusCode)
	assert.Equal(t, audit.ActionDelete, f.lastAudit(t).Action)

	// Gone now.
	missing := f.do(t, http.MethodGet, "/"+id, f.token, "")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

/*
TestHandler_UploadThenUpdate verifies upload creates, update replaces,
and updating a missing file is a 404 that is still audited.
*/
func TestHandler_UploadThenUpdate(t *testing.T) {
	f := newWebFixture(t, nil)

	upload := f.do(t, http.MethodPost, "/", f.token, "v1")
	assert.Equal(t, http.StatusCreated, upload.StatusCode)
	assert.Equal(t, audit.ActionUpload, f.lastAudit(t).Action)

	ghost := uuid.Must()
	update := f.do(t, http.MethodPut, "/"+ghost, f.token, "v2")
	assert.Equal(t, http.StatusNotFound, update.StatusCode)
	assert.Equal(t, audit.ActionUpdate, f.lastAudit(t).Action)
}

/*
TestHandler_AnonymousIsRejected verifies that no file route works
without a valid session, and the failure is audited.
*/
func TestHandler_AnonymousIsRejected(t *testing.T) {
	f := newWebFixture(t, nil)
	id := uuid.Must()

	response := f.do(t, http.MethodGet, "/"+id+"/download", "", "")
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	entry := f.lastAudit(t)
	assert.False(t, entry.Success)
	assert.Equal(t, "invalid_token", entry.Error)
}

/*
TestHandler_RateLimitedDownload verifies the 429 surface once the
per-endpoint quota is spent.
*/
func TestHandler_RateLimitedDownload(t *testing.T) {
	rules := ratelimit.Config{
		ratelimit.DefaultEndpoint: {Window: time.Minute, MaxRequests: 100},
		"file_download":           {Window: time.Minute, MaxRequests: 2},
	}
	f := newWebFixture(t, rules)

	id := uuid.Must()
	require.NoError(t, f.blobs.Put(context.Background(), id, strings.NewReader("payload")))

	for i := 0; i < 2; i++ {
		response := f.do(t, http.MethodGet, "/"+id+"/download", f.token, "")
		require.Equal(t, http.StatusOK, response.StatusCode)
	}

	denied := f.do(t, http.MethodGet, "/"+id+"/download", f.token, "")
	assert.Equal(t, http.StatusTooManyRequests, denied.StatusCode)
	assert.Equal(t, "rate_limited", f.lastAudit(t).Error)

	// The denial carries the numeric back-off, not just prose.
	assert.Equal(t, "60", denied.Header.Get("Retry-After"))

	var envelope struct {
		Code      string `json:"code"`
		RateLimit struct {
			Remaining         int       `json:"remaining"`
			ResetAt           time.Time `json:"reset_at"`
			RetryAfterSeconds int       `json:"retry_after_seconds"`
		} `json:"rate_limit"`
	}
	require.NoError(t, json.NewDecoder(denied.Body).Decode(&envelope))
	assert.Equal(t, "RATE_LIMITED", envelope.Code)
	assert.Equal(t, 0, envelope.RateLimit.Remaining)
	assert.Equal(t, 60, envelope.RateLimit.RetryAfterSeconds)
	assert.True(t, envelope.RateLimit.ResetAt.Equal(f.clock.Now().Add(time.Minute)))

	// The quota is per endpoint: viewing still works.
	view := f.do(t, http.MethodGet, "/"+id, f.token, "")
	assert.Equal(t, http.StatusOK, view.StatusCode)
}
