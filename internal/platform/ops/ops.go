// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package ops implements the operational error channel.

Durable-store failures on audit and incident writes must never surface as
user-visible authentication failures. The authorization decision is made
from in-memory and session-store state and stands on its own. Those
failures instead flow here: a structured log line plus a bounded buffered
channel an external drain (alerting, dead-letter replay) may consume.

Degradation contract: if the buffer is full the event is dropped and
counted. Availability wins over audit completeness.
*/
package ops

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Event is one structured operational failure.
type Event struct {
	// Component names the emitting subsystem ("audit", "incident").
	Component string
	// Op is the operation that failed ("record", "report", "transition").
	Op string
	// Err is the underlying failure.
	Err error
	// At is when the failure occurred.
	At time.Time
}

// Reporter fans operational failures out to the log and the drain channel.
//
// # Concurrency
//
// Report may be called from any goroutine. The channel send never blocks.
type Reporter struct {
	logger  *slog.Logger
	events  chan Event
	dropped atomic.Int64
}

// DefaultBuffer is the drain channel capacity used by [NewReporter].
const DefaultBuffer = 256

// NewReporter constructs a [*Reporter] with the default buffer size.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{
		logger: logger,
		events: make(chan Event, DefaultBuffer),
	}
}

// Report logs the event and offers it to the drain channel without blocking.
func (reporter *Reporter) Report(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	reporter.logger.Error("operational_failure",
		slog.String("component", event.Component),
		slog.String("op", event.Op),
		slog.Any("error", event.Err),
	)

	select {
	case reporter.events <- event:
	default:
		// Drain is not keeping up. Drop rather than stall a request path.
		reporter.dropped.Add(1)
	}
}

// Events returns the receive side of the drain channel.
func (reporter *Reporter) Events() <-chan Event {
	return reporter.events
}

// Dropped returns how many events were discarded because the buffer was full.
func (reporter *Reporter) Dropped() int64 {
	return reporter.dropped.Load()
}
