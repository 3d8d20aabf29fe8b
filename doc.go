// Package dedupqueue implements a family of bounded, concurrent,
// deduplicating key-value queues.
//
// Each variant accepts (key, value) writes from many producer goroutines
// and delivers (key, value) pairs to many consumer goroutines, collapsing
// multiple writes sharing the same key into a single queued entry carrying
// the most recent value. All five variants realize the same external
// contract (the Queue interface) while exploring progressively
// finer-grained locking:
//
//	NewSingleLock          — one mutex guards both the FIFO and the index.
//	NewTwoLock             — separate mutexes, ordered write(index)→write(order).
//	NewShardedSingleLock   — N independent single-lock shards + atomic size.
//	NewShardedTwoLock      — N independent two-lock shards + atomic size.
//	NewSplitSharded        — N dedup shards, K<N ordering shards, cross-referenced.
//
// The hard engineering problem every variant solves the same way is dual
// structure coordination: a FIFO ordering structure and a keyed
// deduplication index must always agree on membership, even while
// concurrent writers and readers mutate both. See the per-variant doc
// comments for how each locking discipline establishes that agreement.
//
// Writes after Stop continue to succeed, subject to the ordinary capacity
// and dedup rules — Stop only causes a subsequently-empty Read to return
// ErrQueueStopped instead of blocking. This is deliberate, matching the
// C++ original's stop() semantics, not an oversight: a producer that keeps
// writing after calling Stop is not a programming error this package
// tries to prevent.
//
// Read polls cooperatively, sleeping a fixed 1ms between empty attempts,
// rather than using a condition variable. This keeps all five variants
// directly comparable under benchmark and accepts up to ~1ms of wake-up
// latency in exchange for the absence of wake-up races.
package dedupqueue
