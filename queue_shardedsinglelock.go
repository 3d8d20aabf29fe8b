package dedupqueue

import (
	"sync"
	"sync/atomic"
	"time"
)

// shardSL is one independent single-lock shard used by ShardedSingleLock:
// a self-contained (index, order, mutex) triple, identical in structure to
// SingleLock but operated on directly by its owning ShardedSingleLock rather than
// exposing its own Queue surface.
type shardSL[K comparable, V any] struct {
	mu    sync.Mutex
	index dedupIndex[K, V]
	order fifo[K]
}

// write performs one shard-local write. If dedupOnly is true (the owning
// array observed a capacity overshoot), only an in-place value update on
// an already-present key is attempted — no new slot is consumed.
// Returns (accepted, wasFreshInsert).
func (s *shardSL[K, V]) write(key K, value V, dedupOnly bool) (accepted, freshInsert bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dedupOnly {
		if _, present := s.index.find(key); !present {
			return false, false
		}
		s.index.upsert(key, value)
		return true, false
	}

	inserted := s.index.upsert(key, value)
	if inserted {
		s.order.pushBack(key)
	}
	return true, inserted
}

// tryRead pops and resolves one item from this shard, if any is queued.
func (s *shardSL[K, V]) tryRead() (K, V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.order.popFront()
	if !ok {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	value, ok := s.index.erase(key)
	if !ok {
		panicf("dedupqueue: key %v present in order but missing from index", key)
	}
	return key, value, true
}

// ShardedSingleLock is an array of NShards independent single-lock shards
// (see shardSL) that never contend with each other, plus a single atomic
// size counter bounding the total pending count across all of them.
//
// A given key always maps to the same shard (hash(key) mod NShards),
// preserving per-key dedup. There is no cross-shard FIFO ordering: Read
// scans shards in a fixed index order and services the first non-empty
// one, so late shards can starve under an asymmetric workload — an
// accepted tradeoff of trading strict global ordering for lower
// contention.
//
// Capacity is enforced with a pre-increment/decrement pattern on the
// atomic size counter: a writer optimistically reserves a slot before it
// knows whether its key will dedup or land in a full shard, and gives the
// slot back if the reservation turns out to be unnecessary or impossible.
// This makes size() transiently overshoot capacity by up to the number of
// concurrent writers — intentional, and bounded by the number of
// in-flight writers at any instant.
type ShardedSingleLock[K comparable, V any] struct {
	base

	shards []shardSL[K, V]
	hasher shardHasher[K]
	size   atomic.Int64
}

// NewShardedSingleLock constructs a ShardedSingleLock queue with nShards
// independent shards. Pre: capacity > 0. If nShards == 0, it defaults to
// runtime.GOMAXPROCS(0) rounded up to the next power of two — the original
// C++ implementation fixes N_SHARDS as a compile-time template parameter;
// Go generics cannot take a shard count as a type parameter, so it is a
// runtime constructor argument instead.
func NewShardedSingleLock[K comparable, V any](capacity uint32, nShards uint32) *ShardedSingleLock[K, V] {
	nShards = resolveShardCount(nShards)
	q := &ShardedSingleLock[K, V]{
		base:   newBase(capacity, "1lock-sharded"),
		shards: make([]shardSL[K, V], nShards),
		hasher: newShardHasher[K](),
	}
	for i := range q.shards {
		q.shards[i].index = newHashIndex[K, V]()
	}
	return q
}

// Size returns the current pending item count, sampled from the atomic
// counter — not a globally-consistent snapshot of shard contents, and may
// transiently exceed Capacity() (see type doc).
func (q *ShardedSingleLock[K, V]) Size() uint32 {
	n := q.size.Load()
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// TryWrite returns true iff the write was accepted: either newly inserted
// (within capacity) or deduplicated into an existing entry (with or
// without capacity headroom).
func (q *ShardedSingleLock[K, V]) TryWrite(key K, value V) bool {
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
func (q *ShardedSingleLock[K, V]) Read() (K, V, error) {
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

// resolveShardCount applies the nShards==0 default described in
// NewShardedSingleLock's doc comment.
func resolveShardCount(nShards uint32) uint32 {
	if nShards != 0 {
		return nShards
	}
	return nextPowerOfTwo(uint32(gomaxprocsHint()))
}
