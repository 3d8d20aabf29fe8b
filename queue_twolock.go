package dedupqueue

import (
	"cmp"
	"sync"
	"time"
)

// TwoLock uses two independent mutexes instead of SingleLock's one,
// exploiting a strict acquisition order to keep the FIFO and the dedup
// index consistent without ever holding both at once:
//
//	write:  lock(index) → [unlock(index), lock(order)] → unlock(order)
//	read:   lock(order) → unlock(order) → lock(index) → unlock(index)
//
// An item can only be dequeued after it was enqueued (read pops order
// first), and the value can only be removed from the index after the item
// was dequeued from order (read locks index second). The only transient
// state this permits is a key indexed but not yet enqueued — invisible to
// readers, since there is nothing yet to pop — and a second write for the
// same key during that window is serialized by the index lock and simply
// behaves as a dedup (the in-flight enqueue still happens exactly once).
type TwoLock[K comparable, V any] struct {
	base

	indexMu sync.Mutex
	index   dedupIndex[K, V]

	orderMu sync.Mutex
	order   fifo[K]
}

// NewTwoLock constructs a TwoLock queue. Pre: capacity > 0.
func NewTwoLock[K comparable, V any](capacity uint32) *TwoLock[K, V] {
	return &TwoLock[K, V]{
		base:  newBase(capacity, "2lock"),
		index: newHashIndex[K, V](),
	}
}

// NewTwoLockOrdered constructs a TwoLock queue backed by the
// deterministic-iteration-order dedup index.
func NewTwoLockOrdered[K cmp.Ordered, V any](capacity uint32) *TwoLock[K, V] {
	return &TwoLock[K, V]{
		base:  newBase(capacity, "2lock-ordered"),
		index: newOrderedIndex[K, V](),
	}
}

// Size returns the current pending item count. Uses the index size — the
// limiting quantity for the capacity check — not the order length, since a
// write that has indexed but not yet enqueued a key has already consumed
// its slot.
func (q *TwoLock[K, V]) Size() uint32 {
	q.indexMu.Lock()
	defer q.indexMu.Unlock()
	return uint32(q.index.len())
}

// TryWrite returns true iff the write was accepted.
func (q *TwoLock[K, V]) TryWrite(key K, value V) bool {
	q.indexMu.Lock()

	if q.index.len() >= int(q.capacity) {
		// Full: only a dedup update can still be accepted.
		_, present := q.index.find(key)
		if !present {
			q.indexMu.Unlock()
			return false
		}
		q.index.upsert(key, value)
		q.indexMu.Unlock()
		return true
	}

	inserted := q.index.upsert(key, value)
	q.indexMu.Unlock()

	if inserted {
		q.orderMu.Lock()
		q.order.pushBack(key)
		q.orderMu.Unlock()
	}
	return true
}

// Read blocks (by cooperative polling) until an item is available or the
// queue is stopped, in which case it returns ErrQueueStopped.
func (q *TwoLock[K, V]) Read() (K, V, error) {
	for {
		if key, ok := q.popOrder(); ok {
			q.indexMu.Lock()
			value, ok := q.index.erase(key)
			q.indexMu.Unlock()
			if !ok {
				panicf("dedupqueue: key %v present in order but missing from index", key)
			}
			return key, value, nil
		}

		if q.Stopped() {
			var zeroK K
			var zeroV V
			return zeroK, zeroV, ErrQueueStopped
		}
		time.Sleep(pollInterval)
	}
}

func (q *TwoLock[K, V]) popOrder() (K, bool) {
	q.orderMu.Lock()
	defer q.orderMu.Unlock()
	return q.order.popFront()
}
