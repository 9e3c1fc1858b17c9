// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package clock provides the injectable time source used by every component
that performs expiry or window arithmetic.

Sessions, rate-limit windows, and escalation windows are all functions of
"now". Injecting a [Clock] instead of calling time.Now directly lets tests
advance time deterministically instead of sleeping.

Rules:

  - Production code receives [System]().
  - Tests receive a [*Mock] and drive it with Set/Advance.
  - No component in the hot path may call time.Now directly.
*/
package clock

import (
	"sync"
	"time"
)

// Clock is the minimal time capability consumed by domain services.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time
}

// # Production Clock

type systemClock struct{}

// Now returns the wall-clock time.
func (systemClock) Now() time.Time { return time.Now() }

// System returns the real wall-clock [Clock].
func System() Clock { return systemClock{} }

// # Test Clock

// Mock is a manually driven [Clock] for deterministic tests.
//
// # Concurrency
//
// Mock is safe for concurrent use so tests can exercise the limiter and
// session store from multiple goroutines.
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMock creates a [*Mock] frozen at the given instant.
func NewMock(at time.Time) *Mock {
	return &Mock{now: at}
}

// Now returns the instant the mock is currently frozen at.
func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set freezes the mock at an absolute instant.
func (m *Mock) Set(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = at
}

// Advance moves the mock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
