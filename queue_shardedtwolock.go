package dedupqueue

import (
	"sync"
	"sync/atomic"
	"time"
)

// shardTL is one independent two-lock shard used by ShardedTwoLock: the
// same index-then-order lock discipline as TwoLock, applied per-shard.
type shardTL[K comparable, V any] struct {
	indexMu sync.Mutex
	index   dedupIndex[K, V]

	orderMu sync.Mutex
	order   fifo[K]
}

// write performs one shard-local write, observing the TwoLock discipline:
// the index lock is held first and released before the order lock is
// taken. dedupOnly mirrors shardSL.write's meaning.
func (s *shardTL[K, V]) write(key K, value V, dedupOnly bool) (accepted, freshInsert bool) {
	s.indexMu.Lock()
	if dedupOnly {
		_, present := s.index.find(key)
		if !present {
			s.indexMu.Unlock()
			return false, false
		}
		s.index.upsert(key, value)
		s.indexMu.Unlock()
		return true, false
	}
	inserted := s.index.upsert(key, value)
	s.indexMu.Unlock()

	if inserted {
		s.orderMu.Lock()
		s.order.pushBack(key)
		s.orderMu.Unlock()
	}
	return true, inserted
}

// tryRead pops this shard's order queue first, then resolves the value
// from the index — the TwoLock read discipline, per shard.
func (s *shardTL[K, V]) tryRead() (K, V, bool) {
	s.orderMu.Lock()
	key, ok := s.order.popFront()
	s.orderMu.Unlock()
	if !ok {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}

	s.indexMu.Lock()
	value, ok := s.index.erase(key)
	s.indexMu.Unlock()
	if !ok {
		panicf("dedupqueue: key %v present in order but missing from index", key)
	}
	return key, value, true
}

// ShardedTwoLock is identical in global structure to ShardedSingleLock —
// N independent shards plus one atomic size counter — but each shard
// internally uses the two-lock protocol (shardTL) instead of a single
// mutex. The capacity test uses the same atomic global counter (not a
// per-shard index size) since shard contents are balanced only in
// expectation, not guaranteed.
type ShardedTwoLock[K comparable, V any] struct {
	base

	shards []shardTL[K, V]
	hasher shardHasher[K]
	size   atomic.Int64
}

// NewShardedTwoLock constructs a ShardedTwoLock queue with nShards
// independent shards (0 defaults as in NewShardedSingleLock). Pre:
// capacity > 0.
func NewShardedTwoLock[K comparable, V any](capacity uint32, nShards uint32) *ShardedTwoLock[K, V] {
	nShards = resolveShardCount(nShards)
	q := &ShardedTwoLock[K, V]{
		base:   newBase(capacity, "2lock-sharded"),
		shards: make([]shardTL[K, V], nShards),
		hasher: newShardHasher[K](),
	}
	for i := range q.shards {
		q.shards[i].index = newHashIndex[K, V]()
	}
	return q
}

// Size returns the current pending item count, sampled from the atomic
// counter (see ShardedSingleLock.Size doc for the transient-overshoot
// caveat, which applies identically here).
func (q *ShardedTwoLock[K, V]) Size() uint32 {
	n := q.size.Load()
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// TryWrite returns true iff the write was accepted.
func (q *ShardedTwoLock[K, V]) TryWrite(key K, value V) bool {
	newSize := q.size.Add(1)
	overshoot := newSize > int64(q.capacity)

	shard := &q.shards[q.hasher.shardOf(key, uint32(len(q.shards)))]
	accepted, freshInsert := shard.write(key, value, overshoot)

	if overshoot || !freshInsert {
		q.size.Add(-1)
	}
	return accepted
}

// Read blocks (by cooperative polling) until an item is available from any
// shard or the queue is stopped, in which case it returns ErrQueueStopped.
func (q *ShardedTwoLock[K, V]) Read() (K, V, error) {
	for {
		for i := range q.shards {
			if key, value, ok := q.shards[i].tryRead(); ok {
				q.size.Add(-1)
				return key, value, nil
			}
		}

		if q.Stopped() {
			var zeroK K
			var zeroV V
			return zeroK, zeroV, ErrQueueStopped
		}
		time.Sleep(pollInterval)
	}
}
