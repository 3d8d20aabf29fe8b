package dedupqueue

import (
	"hash/maphash"
)

// shardHasher assigns keys to shards. Each sharded queue instance owns one,
// seeded independently (maphash.MakeSeed), so the shard assignment of a
// given key is stable for the lifetime of one queue instance but varies
// across instances/process runs — stability across restarts is not a
// requirement here, and varying the seed per instance avoids hash-flooding
// of the shard distribution by an adversary who knows one instance's
// layout.
//
// maphash.Comparable hashes an arbitrary comparable key (the generic Key
// type parameter) directly, without requiring callers to implement a
// byte-serialization method the way an fnv-based hasher over []byte would,
// while still giving the same per-instance avalanche properties.
type shardHasher[K comparable] struct {
	seed maphash.Seed
}

func newShardHasher[K comparable]() shardHasher[K] {
	return shardHasher[K]{seed: maphash.MakeSeed()}
}

// shardOf returns the shard index for key, in [0, n).
func (h shardHasher[K]) shardOf(key K, n uint32) uint32 {
	return uint32(maphash.Comparable(h.seed, key)%uint64(n)) //nolint:gosec // n > 0 is a constructor invariant
}
