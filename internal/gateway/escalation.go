// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/internal/platform/constants"
)

// # Escalation Policy

// EscalationPolicy decides when repeated authentication failures from one
// identifier become a security incident.
type EscalationPolicy struct {

	// Threshold is the failure count that triggers escalation.
	Threshold int

	// Window is the rolling interval the failures must fall into.
	Window time.Duration
}

// # Failure Counter Contract

// FailureCounter tracks authentication failures per identifier across
// process instances.
type FailureCounter interface {

	// Increment records one failure and returns the running count for the
	// current window.
	Increment(ctx context.Context, identifier string, window time.Duration) (int64, error)

	// Escalate claims the single escalation slot for the identifier's
	// current window. It returns true for exactly one caller per window.
	Escalate(ctx context.Context, identifier string, window time.Duration) (bool, error)
}

// # Redis Implementation

// RedisFailureCounter counts failures in Redis so every API instance
// sees the same totals and exactly one of them raises the incident.
type RedisFailureCounter struct {
	client *redis.Client
}

// NewRedisFailureCounter creates the Redis-backed [FailureCounter].
func NewRedisFailureCounter(client *redis.Client) *RedisFailureCounter {
	return &RedisFailureCounter{client: client}
}

// Increment bumps the per-identifier counter, starting the window TTL on
// the first failure.
func (counter *RedisFailureCounter) Increment(ctx context.Context, identifier string, window time.Duration) (int64, error) {
	key := constants.RedisPrefixAuthFailures + identifier

	count, err := counter.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_failure_counter_incr_failed: %w", err)
	}

	// First failure opens the window; later failures ride the existing TTL.
	if count == 1 {
		if err := counter.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("redis_failure_counter_expire_failed: %w", err)
		}
	}

	return count, nil
}

// Escalate claims the window's escalation slot with SET NX. The claim
// expires with the window so the next window can escalate again.
func (counter *RedisFailureCounter) Escalate(ctx context.Context, identifier string, window time.Duration) (bool, error) {
	key := constants.RedisPrefixEscalationMux + identifier

	claimed, err := counter.client.SetNX(ctx, key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("redis_failure_counter_setnx_failed: %w", err)
	}

	return claimed, nil
}

// # In-Memory Implementation

type failureWindow struct {
	count     int64
	expiresAt time.Time
}

// MemoryFailureCounter is the hermetic [FailureCounter] used in tests.
type MemoryFailureCounter struct {
	mu        sync.Mutex
	clk       clock.Clock
	counts    map[string]*failureWindow
	escalated map[string]time.Time
}

// NewMemoryFailureCounter creates an empty in-memory counter.
func NewMemoryFailureCounter(clk clock.Clock) *MemoryFailureCounter {
	return &MemoryFailureCounter{
		clk:       clk,
		counts:    make(map[string]*failureWindow),
		escalated: make(map[string]time.Time),
	}
}

// Increment mirrors the Redis INCR+EXPIRE semantics against the mock clock.
func (counter *MemoryFailureCounter) Increment(_ context.Context, identifier string, window time.Duration) (int64, error) {
	counter.mu.Lock()
	defer counter.mu.Unlock()

	now := counter.clk.Now()
	current, ok := counter.counts[identifier]
	if !ok || !now.Before(current.expiresAt) {
		counter.counts[identifier] = &failureWindow{count: 1, expiresAt: now.Add(window)}
		return 1, nil
	}

	current.count++
	return current.count, nil
}

// Escalate mirrors the Redis SET NX semantics against the mock clock.
func (counter *MemoryFailureCounter) Escalate(_ context.Context, identifier string, window time.Duration) (bool, error) {
	counter.mu.Lock()
	defer counter.mu.Unlock()

	now := counter.clk.Now()
	until, ok := counter.escalated[identifier]
	if ok && now.Before(until) {
		return false, nil
	}

	counter.escalated[identifier] = now.Add(window)
	return true, nil
}
