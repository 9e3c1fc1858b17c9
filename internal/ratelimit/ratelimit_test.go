// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/vaultgate/internal/platform/clock"
)

func testRules() Config {
	return Config{
		DefaultEndpoint: {Window: time.Minute, MaxRequests: 60},
		"file_download": {Window: time.Minute, MaxRequests: 5},
	}
}

/*
TestLimiter_WindowLifecycle walks a 5-per-minute endpoint through a full
window: five admissions counting down, a denial at the limit, and a fresh
window after the reset.
*/
func TestLimiter_WindowLifecycle(t *testing.T) {
	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	limiter := New(testRules(), mockClock)

	// Five requests pass, remaining counts down 4..0.
	for want := 4; want >= 0; want-- {
		decision := limiter.Check("user-alice", "file_download")
		require.True(t, decision.Allowed)
		assert.Equal(t, want, decision.Remaining)
	}

	// Sixth is denied within the same window.
	denied := limiter.Check("user-alice", "file_download")
	assert.False(t, denied.Allowed)
	assert.Equal(t, 0, denied.Remaining)
	assert.Equal(t, mockClock.Now().Add(time.Minute), denied.ResetAt)

	// 61 seconds later a new window opens with a full quota.
	mockClock.Advance(61 * time.Second)
	fresh := limiter.Check("user-alice", "file_download")
	assert.True(t, fresh.Allowed)
	assert.Equal(t, 4, fresh.Remaining)
}

/*
TestLimiter_DenialNeverExtendsWindow verifies that a storm of denied
requests cannot push resetAt forward or inflate the counter.
*/
func TestLimiter_DenialNeverExtendsWindow(t *testing.T) {
	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	limiter := New(testRules(), mockClock)
	windowStart := mockClock.Now()

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Check("user-alice", "file_download").Allowed)
	}

	// Hammer the closed window.
	for i := 0; i < 50; i++ {
		mockClock.Advance(time.Second)
		decision := limiter.Check("user-alice", "file_download")
		require.False(t, decision.Allowed)
		assert.Equal(t, windowStart.Add(time.Minute), decision.ResetAt)
	}

	// The original reset time still applies: one second after it, allow.
	mockClock.Set(windowStart.Add(61 * time.Second))
	assert.True(t, limiter.Check("user-alice", "file_download").Allowed)
}

/*
TestLimiter_KeysAreIndependent verifies that identifiers and endpoints
never share counters.
*/
func TestLimiter_KeysAreIndependent(t *testing.T) {
	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	limiter := New(testRules(), mockClock)

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Check("user-alice", "file_download").Allowed)
	}
	require.False(t, limiter.Check("user-alice", "file_download").Allowed)

	// Another user on the same endpoint is untouched.
	assert.True(t, limiter.Check("user-bob", "file_download").Allowed)

	// The same user on another endpoint falls back to the default rule.
	other := limiter.Check("user-alice", "file_upload")
	assert.True(t, other.Allowed)
	assert.Equal(t, 59, other.Remaining)
}

/*
TestLimiter_ConcurrentChecks verifies that no admission is lost under
contention: exactly MaxRequests of the concurrent calls succeed.
*/
func TestLimiter_ConcurrentChecks(t *testing.T) {
	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	limiter := New(Config{
		DefaultEndpoint: {Window: time.Minute, MaxRequests: 100},
	}, mockClock)

	const attempts = 300
	var wg sync.WaitGroup
	var allowed int64
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Check("user-alice", "api").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowed)
}

/*
TestLimiter_Reclaim verifies that long-idle windows are purged while
live ones survive.
*/
func TestLimiter_Reclaim(t *testing.T) {
	mockClock := clock.NewMock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	limiter := New(testRules(), mockClock)

	for i := 0; i < 10; i++ {
		limiter.Check(fmt.Sprintf("user-%d", i), "file_download")
	}
	require.Equal(t, 10, limiter.tracked())

	// Still within the grace period: nothing is removed.
	mockClock.Advance(2 * time.Minute)
	limiter.Check("user-fresh", "file_download")
	limiter.reclaimOnce()
	assert.Equal(t, 11, limiter.tracked())

	// Past window + grace (1m + 3m): the stale ten disappear.
	mockClock.Advance(3 * time.Minute)
	limiter.reclaimOnce()
	assert.Equal(t, 1, limiter.tracked())
}
