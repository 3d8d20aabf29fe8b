package dedupqueue

import (
	"sync/atomic"
	"time"

	"github.com/laplaque/dedupqueue/internal/queuelog"
)

// pollInterval is the fixed wait between empty-read poll attempts. It is a
// deliberate design choice: cooperative polling keeps every variant
// directly comparable, so the interval is a compile-time constant rather
// than a constructor option.
const pollInterval = time.Millisecond

// base holds the state shared by every queue variant: capacity, the stop
// flag, and the variant's logger. It holds no size: single-instance
// variants derive size from their own structures, and sharded variants
// embed base alongside their own atomic size counter.
type base struct {
	capacity uint32
	stopped  atomic.Bool
	log      *queuelog.Logger
}

func newBase(capacity uint32, variant string) base {
	if capacity == 0 {
		panic("dedupqueue: capacity must be > 0")
	}
	log := queuelog.New(variant, "")
	log.Infof("construct", "capacity=%s", queuelog.Grouped(capacity))
	return base{capacity: capacity, log: log}
}

// Capacity returns the configured upper bound on distinct pending keys.
func (b *base) Capacity() uint32 { return b.capacity }

// Stopped reports whether Stop has been called.
func (b *base) Stopped() bool { return b.stopped.Load() }

// Stop idempotently latches the stop flag. It does not discard pending
// items; it only causes subsequently-empty reads to surface
// ErrQueueStopped instead of blocking.
func (b *base) Stop() {
	if b.stopped.CompareAndSwap(false, true) {
		b.log.Info("stop", "stopping queue")
	}
}
