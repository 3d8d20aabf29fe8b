// Package stats provides lightweight, lock-minimal performance counters for
// a running dedupqueue instance. Counters use sync/atomic so the hot paths
// (TryWrite, Read) incur no mutex contention; they exist purely for
// observability (cmd/queuebench, the introspect HTTP server, and the
// package's own concurrent "no lost updates" tests) and are never
// consulted by any Queue variant's own correctness logic.
package stats

import (
	"sync/atomic"
	"time"
)

// Counters holds atomic write/read/dedup counters for one queue instance.
// The zero value is ready to use.
type Counters struct {
	WritesAccepted atomic.Int64 // TryWrite returned true, including dedups
	WritesRejected atomic.Int64 // TryWrite returned false (full, new key)
	Dedups         atomic.Int64 // TryWrite returned true for an already-present key
	Reads          atomic.Int64 // successful Read calls

	startTime time.Time
}

// New returns a Counters with the start time recorded.
func New() *Counters {
	return &Counters{startTime: time.Now()}
}

// RecordWrite updates the write-side counters for one TryWrite outcome.
// accepted is TryWrite's return value; dedup is true iff the write updated
// an already-present key rather than inserting a new one.
func (c *Counters) RecordWrite(accepted, dedup bool) {
	if !accepted {
		c.WritesRejected.Add(1)
		return
	}
	c.WritesAccepted.Add(1)
	if dedup {
		c.Dedups.Add(1)
	}
}

// RecordRead updates the read-side counter for one successful Read.
func (c *Counters) RecordRead() {
	c.Reads.Add(1)
}

// Snapshot returns a point-in-time copy of all counters, safe for JSON
// encoding (used by the introspect package's /metrics endpoint).
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		WritesAccepted: c.WritesAccepted.Load(),
		WritesRejected: c.WritesRejected.Load(),
		Dedups:         c.Dedups.Load(),
		Reads:          c.Reads.Load(),
		UptimeSecs:     time.Since(c.startTime).Seconds(),
	}
}

// Snapshot is a JSON-serializable point-in-time view of Counters.
type Snapshot struct {
	WritesAccepted int64   `json:"writesAccepted"`
	WritesRejected int64   `json:"writesRejected"`
	Dedups         int64   `json:"dedups"`
	Reads          int64   `json:"reads"`
	UptimeSecs     float64 `json:"uptimeSecs"`
}

// FreshInserts returns the number of writes that landed a brand-new key
// (as opposed to a dedup update): WritesAccepted - Dedups. Combined with a
// final Size() sample, this lets a caller verify that no update was lost:
// FreshInserts == Reads + Size at any point after all writers have
// finished and all in-flight reads have completed.
func (s Snapshot) FreshInserts() int64 {
	return s.WritesAccepted - s.Dedups
}
