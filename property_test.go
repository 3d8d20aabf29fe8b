package dedupqueue

import (
	"errors"
	"testing"
)

// TestDedupKeepsDistinctKeyCount verifies that for any single-threaded
// sequence of writes, the number of distinct keys present equals Size(),
// and Size() <= Capacity() always.
func TestDedupKeepsDistinctKeyCount(t *testing.T) {
	for name, factory := range variantFactories {
		t.Run(name, func(t *testing.T) {
			q := factory(5)
			writes := []struct {
				key   string
				value int
			}{
				{"a", 1}, {"b", 2}, {"a", 3}, {"c", 4}, {"a", 5}, {"b", 6},
			}
			distinct := map[string]bool{}
			for _, w := range writes {
				q.TryWrite(w.key, w.value)
				distinct[w.key] = true
				if got := q.Size(); got > q.Capacity() {
					t.Fatalf("Size() = %d exceeds Capacity() = %d", got, q.Capacity())
				}
			}
			if got, want := q.Size(), uint32(len(distinct)); got != want {
				t.Errorf("Size() = %d, want %d distinct keys", got, want)
			}
		})
	}
}

// TestLastValueWins verifies that after writes (k,v1)...(k,vn) with no
// intervening read removing k, the pair eventually read for k has value vn.
func TestLastValueWins(t *testing.T) {
	for name, factory := range variantFactories {
		t.Run(name, func(t *testing.T) {
			q := factory(3)
			q.TryWrite("k", 1)
			q.TryWrite("k", 2)
			q.TryWrite("k", 3)
			q.TryWrite("k", 42)

			key, value, err := q.Read()
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if key != "k" || value != 42 {
				t.Errorf("Read() = (%q, %d), want (\"k\", 42)", key, value)
			}
		})
	}
}

// TestFIFOPerInstance verifies that in a single-instance variant, for two
// keys k1 != k2 first inserted in that order, reading yields k1 before k2.
func TestFIFOPerInstance(t *testing.T) {
	for name, factory := range singleInstanceFactories {
		t.Run(name, func(t *testing.T) {
			q := factory(10)
			order := []string{"first", "second", "third", "fourth"}
			for i, k := range order {
				q.TryWrite(k, i)
			}
			for _, want := range order {
				key, _, err := q.Read()
				if err != nil {
					t.Fatalf("Read() error = %v", err)
				}
				if key != want {
					t.Errorf("Read() key = %q, want %q", key, want)
				}
			}
		})
	}
}

// TestOverflowRejectsNewKeyAtFull verifies that when size == capacity and a
// write arrives for a key not present, TryWrite returns false and size is
// unchanged.
func TestOverflowRejectsNewKeyAtFull(t *testing.T) {
	for name, factory := range variantFactories {
		t.Run(name, func(t *testing.T) {
			q := factory(2)
			q.TryWrite("a", 1)
			q.TryWrite("b", 2)
			before := q.Size()

			if ok := q.TryWrite("c", 3); ok {
				t.Error("TryWrite for new key on full queue = true, want false")
			}
			if got := q.Size(); got != before {
				t.Errorf("Size() after rejected write = %d, want %d", got, before)
			}
		})
	}
}

// TestOverflowStillDedupsAtFull verifies that when size == capacity and a
// write arrives for a key already present, TryWrite returns true and the
// stored value is updated.
func TestOverflowStillDedupsAtFull(t *testing.T) {
	for name, factory := range variantFactories {
		t.Run(name, func(t *testing.T) {
			q := factory(2)
			q.TryWrite("a", 1)
			q.TryWrite("b", 2)

			if ok := q.TryWrite("a", 100); !ok {
				t.Fatal("TryWrite dedup on full queue = false, want true")
			}
			if got := q.Size(); got != 2 {
				t.Errorf("Size() after dedup on full queue = %d, want 2", got)
			}

			// Drain and confirm "a" carries the updated value somewhere in the stream.
			seen := map[string]int{}
			for i := 0; i < 2; i++ {
				k, v, err := q.Read()
				if err != nil {
					t.Fatalf("Read() error = %v", err)
				}
				seen[k] = v
			}
			if seen["a"] != 100 {
				t.Errorf(`seen["a"] = %d, want 100`, seen["a"])
			}
		})
	}
}

// TestStopVisibility verifies that after Stop(), a Read on an empty queue
// raises ErrQueueStopped; a Read on a non-empty queue returns normally.
func TestStopVisibility(t *testing.T) {
	for name, factory := range variantFactories {
		t.Run(name, func(t *testing.T) {
			q := factory(2)
			q.TryWrite("a", 1)
			q.Stop()

			key, value, err := q.Read()
			if err != nil {
				t.Fatalf("Read() on non-empty stopped queue returned error %v", err)
			}
			if key != "a" || value != 1 {
				t.Errorf("Read() = (%q, %d), want (\"a\", 1)", key, value)
			}

			_, _, err = q.Read()
			if !errors.Is(err, ErrQueueStopped) {
				t.Fatalf("Read() on empty stopped queue = %v, want ErrQueueStopped", err)
			}
		})
	}
}

// TestPostStopWritesStillObeyCapacityAndDedup verifies that after Stop(),
// TryWrite continues to obey the ordinary capacity and dedup rules — Stop
// only changes what an empty Read does, as documented in the package doc
// comment.
func TestPostStopWritesStillObeyCapacityAndDedup(t *testing.T) {
	for name, factory := range variantFactories {
		t.Run(name, func(t *testing.T) {
			q := factory(1)
			q.Stop()

			if ok := q.TryWrite("a", 1); !ok {
				t.Fatal("TryWrite after Stop() on empty queue = false, want true")
			}
			if ok := q.TryWrite("b", 2); ok {
				t.Error("TryWrite after Stop() on full queue for new key = true, want false")
			}
			if ok := q.TryWrite("a", 2); !ok {
				t.Error("dedup TryWrite after Stop() on full queue = false, want true")
			}

			key, value, err := q.Read()
			if err != nil || key != "a" || value != 2 {
				t.Fatalf("Read() = (%q, %d, %v), want (\"a\", 2, nil)", key, value, err)
			}
		})
	}
}
