// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package ratelimit implements fixed-window request quotas keyed by caller
identifier and logical endpoint.

Unlike the outer flood guard middleware (a per-IP token bucket protecting the
process), this limiter enforces the per-endpoint business quotas: every
(identifier, endpoint) pair owns an independent counter that resets when its
window elapses.

Semantics:

  - A fresh or elapsed window admits the request and starts count at 1.
  - Below the maximum, the counter increments and the request is admitted.
  - At the maximum, the request is denied WITHOUT incrementing, so denied
    traffic can never extend a window or inflate a counter.

State is in-memory and sharded. A restart forgets all counters, which fails
open for at most one window.
*/
package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/tdnguyen/vaultgate/internal/platform/clock"
	"github.com/tdnguyen/vaultgate/internal/platform/constants"
)

// DefaultEndpoint is the rule key consulted when an endpoint has no
// dedicated rule.
const DefaultEndpoint = "default"

// shardCount sizes the lock-striped counter table. Power of two.
const shardCount = 16

// # Rules

// Rule bounds one endpoint: at most MaxRequests admissions per Window.
type Rule struct {
	Window      time.Duration
	MaxRequests int
}

// Config maps endpoint names to their rules. The entry named
// [DefaultEndpoint] applies to every endpoint without its own rule.
type Config map[string]Rule

// resolve returns the rule governing the given endpoint.
func (c Config) resolve(endpoint string) Rule {
	if rule, ok := c[endpoint]; ok {
		return rule
	}
	return c[DefaultEndpoint]
}

// # Decision

// Decision is the outcome of a single quota check.
type Decision struct {

	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is how many further requests the current window admits.
	Remaining int

	// ResetAt is when the current window elapses and the counter restarts.
	ResetAt time.Time
}

// # Limiter

// window is one live fixed-window counter.
type window struct {
	count      int
	start      time.Time
	ruleWindow time.Duration
}

// shard is one stripe of the counter table with its own lock.
type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

/*
Limiter tracks fixed-window counters for (identifier, endpoint) pairs.

The counter table is striped across shards so concurrent checks for
unrelated callers never contend on one lock. Construct with [New] and
start [Reclaim] in a goroutine to purge long-idle windows.
*/
type Limiter struct {
	rules  Config
	clk    clock.Clock
	shards [shardCount]*shard
}

/*
New creates a Limiter governed by the given rules.

Parameters:
  - rules: per-endpoint quotas; must contain a [DefaultEndpoint] entry.
  - clk: time source for window arithmetic.

Returns:
  - *Limiter: ready for concurrent use.
*/
func New(rules Config, clk clock.Clock) *Limiter {
	limiter := &Limiter{
		rules: rules,
		clk:   clk,
	}
	for i := range limiter.shards {
		limiter.shards[i] = &shard{windows: make(map[string]*window)}
	}
	return limiter
}

// shardFor picks the stripe owning the given composite key.
func (l *Limiter) shardFor(key string) *shard {
	hasher := fnv.New32a()
	hasher.Write([]byte(key))
	return l.shards[hasher.Sum32()%shardCount]
}

/*
Check records one request attempt against the (identifier, endpoint)
counter and decides whether it may proceed.

The read-modify-write on the counter happens under the shard lock, so
concurrent callers observe a consistent count and no admission is lost.

Parameters:
  - identifier: stable caller identity (principal ID or network origin).
  - endpoint: logical endpoint name, resolved against the rule table.

Returns:
  - Decision: admission verdict with remaining quota and window reset time.
*/
func (l *Limiter) Check(identifier, endpoint string) Decision {
	rule := l.rules.resolve(endpoint)
	now := l.clk.Now()

	key := identifier + "\x00" + endpoint
	stripe := l.shardFor(key)

	stripe.mu.Lock()
	defer stripe.mu.Unlock()

	current, exists := stripe.windows[key]

	// 1. Fresh key or elapsed window: start a new window at count 1.
	if !exists || !now.Before(current.start.Add(rule.Window)) {
		stripe.windows[key] = &window{count: 1, start: now, ruleWindow: rule.Window}
		return Decision{
			Allowed:   true,
			Remaining: rule.MaxRequests - 1,
			ResetAt:   now.Add(rule.Window),
		}
	}

	resetAt := current.start.Add(rule.Window)

	// 2. At the limit: deny without touching the counter.
	if current.count >= rule.MaxRequests {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	// 3. Under the limit: admit and count.
	current.count++
	return Decision{
		Allowed:   true,
		Remaining: rule.MaxRequests - current.count,
		ResetAt:   resetAt,
	}
}

/*
Reclaim purges counters whose window elapsed more than a grace multiple
ago. It blocks until ctx is cancelled and should run in its own goroutine.

Each shard is swept under its own lock, one at a time, so the reclaimer
never stalls the whole table.
*/
func (l *Limiter) Reclaim(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitReclaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.reclaimOnce()
		}
	}
}

// reclaimOnce removes every window idle past its grace period.
func (l *Limiter) reclaimOnce() {
	now := l.clk.Now()

	for _, stripe := range l.shards {
		stripe.mu.Lock()
		for key, current := range stripe.windows {
			grace := current.ruleWindow * constants.RateLimitReclaimGrace
			if now.Sub(current.start) > current.ruleWindow+grace {
				delete(stripe.windows, key)
			}
		}
		stripe.mu.Unlock()
	}
}

// tracked returns the number of live counters. Test helper.
func (l *Limiter) tracked() int {
	total := 0
	for _, stripe := range l.shards {
		stripe.mu.Lock()
		total += len(stripe.windows)
		stripe.mu.Unlock()
	}
	return total
}
