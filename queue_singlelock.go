package dedupqueue

import (
	"cmp"
	"sync"
	"time"
)

// SingleLock is the simplest variant: a single mutex guards both the FIFO
// ordering structure and the dedup index, so the insert+enqueue pair (and
// the erase+dequeue pair) are trivially atomic.
type SingleLock[K comparable, V any] struct {
	base

	mu    sync.Mutex
	index dedupIndex[K, V]
	order fifo[K]
}

// NewSingleLock constructs a SingleLock queue. Pre: capacity > 0.
func NewSingleLock[K comparable, V any](capacity uint32) *SingleLock[K, V] {
	return &SingleLock[K, V]{
		base:  newBase(capacity, "1lock"),
		index: newHashIndex[K, V](),
	}
}

// NewSingleLockOrdered constructs a SingleLock queue backed by the
// deterministic-iteration-order dedup index (orderedIndex), trading its
// O(log n) find/erase for a predictable key ordering. Key type must
// additionally satisfy cmp.Ordered.
func NewSingleLockOrdered[K cmp.Ordered, V any](capacity uint32) *SingleLock[K, V] {
	return &SingleLock[K, V]{
		base:  newBase(capacity, "1lock-ordered"),
		index: newOrderedIndex[K, V](),
	}
}

// Size returns the current pending item count.
func (q *SingleLock[K, V]) Size() uint32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return uint32(q.order.len())
}

// TryWrite returns true iff the write was accepted: either newly inserted,
// or deduplicated into an existing entry. Returns false iff the queue is
// at capacity and key is not already present.
func (q *SingleLock[K, V]) TryWrite(key K, value V) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, present := q.index.find(key); present {
		q.index.upsert(key, value) // dedup: update in place, position unchanged
		return true
	}

	if q.order.len() >= int(q.capacity) {
		return false
	}

	q.index.upsert(key, value)
	q.order.pushBack(key)
	return true
}

// Read blocks (by cooperative polling) until an item is available or the
// queue is stopped, in which case it returns ErrQueueStopped.
func (q *SingleLock[K, V]) Read() (K, V, error) {
	for {
		q.mu.Lock()
		if key, ok := q.order.popFront(); ok {
			value, ok := q.index.erase(key)
			q.mu.Unlock()
			if !ok {
				panicf("dedupqueue: key %v present in order but missing from index", key)
			}
			return key, value, nil
		}
		q.mu.Unlock()

		if q.Stopped() {
			var zeroK K
			var zeroV V
			return zeroK, zeroV, ErrQueueStopped
		}
		time.Sleep(pollInterval)
	}
}
