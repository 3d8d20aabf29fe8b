package dedupqueue

import (
	"errors"
	"testing"
)

// TestDedupFIFOAndStopSequence walks a single linear sequence of writes,
// reads, and a Stop() midway through, covering dedup-in-place, FIFO order,
// overflow rejection, and post-stop-drain ErrQueueStopped in one pass. It
// runs against every single-instance variant, since the final internal
// state depends on global FIFO order, which only the single-instance
// variants guarantee.
func TestDedupFIFOAndStopSequence(t *testing.T) {
	for name, factory := range singleInstanceFactories {
		t.Run(name, func(t *testing.T) {
			q := factory(2)

			// --- dedup, FIFO order, and overflow rejection ---
			if got := q.Size(); got != 0 {
				t.Fatalf("initial Size() = %d, want 0", got)
			}
			if ok := q.TryWrite("1", 968137); !ok {
				t.Fatal(`TryWrite("1", 968137) = false, want true`)
			}
			if ok := q.TryWrite("1", -41123); !ok {
				t.Fatal(`TryWrite("1", -41123) = false, want true (dedup)`)
			}
			if got := q.Size(); got != 1 {
				t.Fatalf("Size() after dedup = %d, want 1", got)
			}
			if ok := q.TryWrite("2", 34905); !ok {
				t.Fatal(`TryWrite("2", 34905) = false, want true`)
			}
			if got := q.Size(); got != 2 {
				t.Fatalf("Size() after second key = %d, want 2", got)
			}
			if ok := q.TryWrite("3", -34905); ok {
				t.Fatal(`TryWrite("3", -34905) = true, want false (queue full)`)
			}

			key, value, err := q.Read()
			if err != nil || key != "1" || value != -41123 {
				t.Fatalf("first Read() = (%q, %d, %v), want (\"1\", -41123, nil)", key, value, err)
			}
			if got := q.Size(); got != 1 {
				t.Fatalf("Size() after first Read = %d, want 1", got)
			}

			key, value, err = q.Read()
			if err != nil || key != "2" || value != 34905 {
				t.Fatalf("second Read() = (%q, %d, %v), want (\"2\", 34905, nil)", key, value, err)
			}
			if got := q.Size(); got != 0 {
				t.Fatalf("Size() after second Read = %d, want 0", got)
			}

			// --- stop on an empty, drained queue ---
			q.Stop()
			_, _, err = q.Read()
			if !errors.Is(err, ErrQueueStopped) {
				t.Fatalf("Read() on empty stopped queue = %v, want ErrQueueStopped", err)
			}

			// --- refill after stop, dedup without reordering, then drain to stopped ---
			if ok := q.TryWrite("859", 69821); !ok {
				t.Fatal(`TryWrite("859", 69821) = false, want true`)
			}
			if ok := q.TryWrite("312", 9752); !ok {
				t.Fatal(`TryWrite("312", 9752) = false, want true`)
			}
			if ok := q.TryWrite("592", 5823); ok {
				t.Fatal(`TryWrite("592", 5823) = true, want false (queue full)`)
			}
			if ok := q.TryWrite("4124", 978736); ok {
				t.Fatal(`TryWrite("4124", 978736) = true, want false (queue full)`)
			}
			if ok := q.TryWrite("312", 21); !ok {
				t.Fatal(`TryWrite("312", 21) = false, want true (dedup)`)
			}

			// Two pending entries remain: "859"->69821 then "312"->21, in that
			// order — dedup does not reorder "312"'s queued position.
			key, value, err = q.Read()
			if err != nil || key != "859" || value != 69821 {
				t.Fatalf("Read() after refill = (%q, %d, %v), want (\"859\", 69821, nil)", key, value, err)
			}
			key, value, err = q.Read()
			if err != nil || key != "312" || value != 21 {
				t.Fatalf("Read() after refill = (%q, %d, %v), want (\"312\", 21, nil)", key, value, err)
			}

			_, _, err = q.Read()
			if !errors.Is(err, ErrQueueStopped) {
				t.Fatalf("final Read() = %v, want ErrQueueStopped", err)
			}
		})
	}
}

// TestShardedDedupIsShardAgnostic verifies that, with capacity 1 and two
// shards, writing the same key twice must dedup and yield size 1
// regardless of which shard the key hashes to.
func TestShardedDedupIsShardAgnostic(t *testing.T) {
	shardedFactories := map[string]func(capacity uint32) Queue[string, int]{
		"ShardedSingleLock": func(cap uint32) Queue[string, int] { return NewShardedSingleLock[string, int](cap, 2) },
		"ShardedTwoLock":    func(cap uint32) Queue[string, int] { return NewShardedTwoLock[string, int](cap, 2) },
		"SplitSharded":      func(cap uint32) Queue[string, int] { return NewSplitSharded[string, int](cap, 2, 2) },
	}

	for name, factory := range shardedFactories {
		t.Run(name, func(t *testing.T) {
			q := factory(1)

			if ok := q.TryWrite("dup-key", 1); !ok {
				t.Fatal("first TryWrite = false, want true")
			}
			if ok := q.TryWrite("dup-key", 2); !ok {
				t.Fatal("second TryWrite (dedup) = false, want true")
			}
			if got := q.Size(); got != 1 {
				t.Fatalf("Size() = %d, want 1", got)
			}

			key, value, err := q.Read()
			if err != nil || key != "dup-key" || value != 2 {
				t.Fatalf("Read() = (%q, %d, %v), want (\"dup-key\", 2, nil)", key, value, err)
			}
		})
	}
}
