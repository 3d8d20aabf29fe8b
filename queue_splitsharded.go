package dedupqueue

import (
	"sync"
	"sync/atomic"
	"time"
)

// orderRef is what a SplitSharded ordering shard actually queues: the key,
// plus the index of the dedup shard it lives in. Unlike ShardedTwoLock
// (where order and index are paired 1:1 per shard), SplitSharded's
// ordering shard count K can differ from its dedup shard count N, so a
// popped entry must carry enough information to find its value.
type orderRef[K comparable] struct {
	key        K
	dedupShard uint32
}

// dedupShard is one of SplitSharded's N independent dedup-index shards.
type dedupShard[K comparable, V any] struct {
	mu    sync.Mutex
	index dedupIndex[K, V]
}

// orderShard is one of SplitSharded's K independent ordering shards.
type orderShard[K comparable] struct {
	mu    sync.Mutex
	order fifo[orderRef[K]]
}

// SplitSharded generalizes sharding further than ShardedTwoLock by
// decoupling dedup cardinality from ordering cardinality: nDedupShards
// dedup-index shards (typically many, since the dedup working set is
// large) and a smaller number of ordering shards, orderShards (this
// package defaults the latter to 4; contention on the ordering side is
// lower-value to shard widely since its working set — pending keys, not
// all known keys — is small).
//
// Write selects a dedup shard by hash(key) mod nDedupShards and an
// ordering shard by that dedup shard index mod orderShards, so a given key's ordering
// placement is deterministic (not required for correctness, but keeps a
// key's read-order shard stable for the life of the queue). Read iterates
// ordering shards in a fixed index order, pops the first available
// (key, dedupShard) reference, then resolves the value from the dedup
// shard it names — preserving the TwoLock-style discipline (order lock
// released before the identified dedup-shard lock is taken) per key, even
// though the two shard arrays are independently sized.
type SplitSharded[K comparable, V any] struct {
	base

	dedupShards []dedupShard[K, V]
	orderShards []orderShard[K]
	hasher      shardHasher[K]
	size        atomic.Int64
}

// NewSplitSharded constructs a SplitSharded queue with nDedupShards dedup
// shards and orderShards ordering shards. Pre: capacity > 0. nDedupShards
// == 0 defaults as in NewShardedSingleLock. orderShards == 0 defaults to 4,
// matching the original implementation's fixed K=4.
func NewSplitSharded[K comparable, V any](capacity, nDedupShards, orderShards uint32) *SplitSharded[K, V] {
	nDedupShards = resolveShardCount(nDedupShards)
	if orderShards == 0 {
		orderShards = 4
	}
	q := &SplitSharded[K, V]{
		base:        newBase(capacity, "split-sharded"),
		dedupShards: make([]dedupShard[K, V], nDedupShards),
		orderShards: make([]orderShard[K], orderShards),
		hasher:      newShardHasher[K](),
	}
	for i := range q.dedupShards {
		q.dedupShards[i].index = newHashIndex[K, V]()
	}
	return q
}

// Size returns the current pending item count, sampled from the atomic
// counter (subject to the same transient-overshoot caveat as the other
// sharded variants).
func (q *SplitSharded[K, V]) Size() uint32 {
	n := q.size.Load()
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// TryWrite returns true iff the write was accepted.
func (q *SplitSharded[K, V]) TryWrite(key K, value V) bool {
	dedupIdx := q.hasher.shardOf(key, uint32(len(q.dedupShards)))
	orderIdx := dedupIdx % uint32(len(q.orderShards))

	newSize := q.size.Add(1)
	if newSize > int64(q.capacity) {
		q.size.Add(-1)

		shard := &q.dedupShards[dedupIdx]
		shard.mu.Lock()
		_, present := shard.index.find(key)
		if !present {
			shard.mu.Unlock()
			return false
		}
		shard.index.upsert(key, value)
		shard.mu.Unlock()
		return true
	}

	shard := &q.dedupShards[dedupIdx]
	shard.mu.Lock()
	inserted := shard.index.upsert(key, value)
	shard.mu.Unlock()

	if inserted {
		oshard := &q.orderShards[orderIdx]
		oshard.mu.Lock()
		oshard.order.pushBack(orderRef[K]{key: key, dedupShard: dedupIdx})
		oshard.mu.Unlock()
	} else {
		q.size.Add(-1)
	}
	return true
}

// Read blocks (by cooperative polling) until an item is available from any
// ordering shard or the queue is stopped, in which case it returns
// ErrQueueStopped.
func (q *SplitSharded[K, V]) Read() (K, V, error) {
	for {
		for i := range q.orderShards {
			oshard := &q.orderShards[i]
			oshard.mu.Lock()
			ref, ok := oshard.order.popFront()
			oshard.mu.Unlock()
			if !ok {
				continue
			}

			q.size.Add(-1)
			shard := &q.dedupShards[ref.dedupShard]
			shard.mu.Lock()
			value, ok := shard.index.erase(ref.key)
			shard.mu.Unlock()
			if !ok {
				panicf("dedupqueue: key %v present in order but missing from dedup shard %d", ref.key, ref.dedupShard)
			}
			return ref.key, value, nil
		}

		if q.Stopped() {
			var zeroK K
			var zeroV V
			return zeroK, zeroV, ErrQueueStopped
		}
		time.Sleep(pollInterval)
	}
}
