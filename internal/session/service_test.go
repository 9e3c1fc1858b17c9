// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/vaultgate/internal/identity"
	"github.com/tdnguyen/vaultgate/internal/platform/apperr"
	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/internal/platform/sec"
	"github.com/tdnguyen/vaultgate/internal/session"
)

// newFixture wires a session service over in-memory storage with a frozen clock.
func newFixture(t *testing.T, ttl time.Duration) (*session.Service, *clock.Mock, *identity.MemoryProvider) {
	t.Helper()

	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	provider := identity.NewMemoryProvider()
	provider.Add("alice@example.com", "hunter2-hunter2", identity.Principal{
		UserID:   "user-alice",
		Role:     sec.RoleUser,
		IsActive: true,
	})
	provider.Add("mallory@example.com", "locked-out-pass", identity.Principal{
		UserID:   "user-mallory",
		Role:     sec.RoleUser,
		IsActive: false,
	})

	service := session.NewService(session.NewMemoryRepository(), provider, mockClock, ttl)
	return service, mockClock, provider
}

/*
TestService_Create_ActivePrincipal verifies happy-path session creation.
*/
func TestService_Create_ActivePrincipal(t *testing.T) {
	service, mockClock, _ := newFixture(t, time.Hour)

	created, err := service.Create(context.Background(), "user-alice")
	require.NoError(t, err)

	assert.NotEmpty(t, created.Token)
	assert.True(t, created.Session.IsActive)
	assert.Equal(t, "user-alice", created.Session.UserID)
	assert.Equal(t, mockClock.Now(), created.Session.CreatedAt)
	assert.Equal(t, mockClock.Now().Add(time.Hour), created.Session.ExpiresAt)

	// The plain token must never equal what is stored.
	assert.NotEqual(t, created.Token, created.Session.TokenHash)
}

/*
TestService_Create_InactivePrincipal verifies that locked or unknown users
cannot receive sessions.
*/
func TestService_Create_InactivePrincipal(t *testing.T) {
	service, _, _ := newFixture(t, time.Hour)

	tests := []struct {
		name   string
		userID string
	}{
		{"inactive_user", "user-mallory"},
		{"unknown_user", "user-nobody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := service.Create(context.Background(), tt.userID)
			require.Error(t, err)
			assert.Nil(t, created)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "PRINCIPAL_INVALID", ae.Code)
		})
	}
}

/*
TestService_Validate_ExpiryBoundaries checks a 1h session at the edges:
valid at t+30m and uniformly invalid at t+61m.
*/
func TestService_Validate_ExpiryBoundaries(t *testing.T) {
	service, mockClock, _ := newFixture(t, time.Hour)

	created, err := service.Create(context.Background(), "user-alice")
	require.NoError(t, err)

	// t+30m: valid
	mockClock.Advance(30 * time.Minute)
	principal, err := service.Validate(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-alice", principal.UserID)
	assert.Equal(t, sec.RoleUser, principal.Role)

	// t+60m exactly: expired (validity requires now < expiresAt)
	mockClock.Advance(30 * time.Minute)
	_, err = service.Validate(context.Background(), created.Token)
	require.Error(t, err)

	// t+61m: still uniformly invalid
	mockClock.Advance(time.Minute)
	_, err = service.Validate(context.Background(), created.Token)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHENTICATED", apperr.As(err).Code)
}

/*
TestService_Validate_UniformFailure verifies that unknown, expired, and
revoked tokens are indistinguishable to the caller.
*/
func TestService_Validate_UniformFailure(t *testing.T) {
	service, mockClock, _ := newFixture(t, time.Hour)

	expired, err := service.Create(context.Background(), "user-alice")
	require.NoError(t, err)
	revoked, err := service.Create(context.Background(), "user-alice")
	require.NoError(t, err)

	_, err = service.Revoke(context.Background(), revoked.Token)
	require.NoError(t, err)
	mockClock.Advance(2 * time.Hour)

	for name, token := range map[string]string{
		"unknown_token": "deadbeef",
		"expired_token": expired.Token,
		"revoked_token": revoked.Token,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := service.Validate(context.Background(), token)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "UNAUTHENTICATED", ae.Code)
			assert.Equal(t, "Authentication required", ae.Message)
		})
	}
}

/*
TestService_Revoke_Immediate verifies that validate fails for any now once
a token is revoked, without waiting for expiry.
*/
func TestService_Revoke_Immediate(t *testing.T) {
	service, _, _ := newFixture(t, time.Hour)

	created, err := service.Create(context.Background(), "user-alice")
	require.NoError(t, err)

	revoked, err := service.Revoke(context.Background(), created.Token)
	require.NoError(t, err)
	assert.True(t, revoked)

	// No time has passed at all, still invalid.
	_, err = service.Validate(context.Background(), created.Token)
	require.Error(t, err)
}

/*
TestService_Revoke_Idempotent verifies that re-revoking and revoking
unknown tokens are silent no-ops.
*/
func TestService_Revoke_Idempotent(t *testing.T) {
	service, _, _ := newFixture(t, time.Hour)

	created, err := service.Create(context.Background(), "user-alice")
	require.NoError(t, err)

	revoked, err := service.Revoke(context.Background(), created.Token)
	assert.NoError(t, err)
	assert.True(t, revoked)

	// The second revoke and the unknown token succeed but report no-op.
	revoked, err = service.Revoke(context.Background(), created.Token)
	assert.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = service.Revoke(context.Background(), "never-issued")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

/*
TestService_RevokeAllForUser verifies bulk invalidation across devices.
*/
func TestService_RevokeAllForUser(t *testing.T) {
	service, _, _ := newFixture(t, time.Hour)

	first, err := service.Create(context.Background(), "user-alice")
	require.NoError(t, err)
	second, err := service.Create(context.Background(), "user-alice")
	require.NoError(t, err)

	require.NoError(t, service.RevokeAllForUser(context.Background(), "user-alice"))

	_, err = service.Validate(context.Background(), first.Token)
	assert.Error(t, err)
	_, err = service.Validate(context.Background(), second.Token)
	assert.Error(t, err)
}

/*
TestService_SessionsAreRetained verifies that revocation and expiry never
physically delete rows. They stay for audit correlation.
*/
func TestService_SessionsAreRetained(t *testing.T) {
	repository := session.NewMemoryRepository()
	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	provider := identity.NewMemoryProvider()
	provider.Add("alice@example.com", "hunter2-hunter2", identity.Principal{
		UserID: "user-alice", Role: sec.RoleUser, IsActive: true,
	})
	service := session.NewService(repository, provider, mockClock, time.Hour)

	created, err := service.Create(context.Background(), "user-alice")
	require.NoError(t, err)
	_, err = service.Revoke(context.Background(), created.Token)
	require.NoError(t, err)
	mockClock.Advance(48 * time.Hour)

	assert.Equal(t, 1, repository.Len())
}
