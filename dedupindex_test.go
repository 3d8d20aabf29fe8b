package dedupqueue

import "testing"

// indexFactories lets the shared test table below run identically against
// both dedupIndex backends.
var indexFactories = map[string]func() dedupIndex[string, int]{
	"hashIndex":    func() dedupIndex[string, int] { return newHashIndex[string, int]() },
	"orderedIndex": func() dedupIndex[string, int] { return newOrderedIndex[string, int]() },
}

func TestDedupIndexUpsertFindErase(t *testing.T) {
	for name, factory := range indexFactories {
		t.Run(name, func(t *testing.T) {
			idx := factory()

			if inserted := idx.upsert("a", 1); !inserted {
				t.Fatal("first upsert reported inserted=false")
			}
			if inserted := idx.upsert("a", 2); inserted {
				t.Fatal("second upsert of same key reported inserted=true")
			}

			v, ok := idx.find("a")
			if !ok || v != 2 {
				t.Fatalf("find(a) = (%d, %v), want (2, true)", v, ok)
			}
			if got := idx.len(); got != 1 {
				t.Fatalf("len() = %d, want 1", got)
			}

			if _, ok := idx.find("missing"); ok {
				t.Error("find(missing) reported ok=true")
			}

			v, ok = idx.erase("a")
			if !ok || v != 2 {
				t.Fatalf("erase(a) = (%d, %v), want (2, true)", v, ok)
			}
			if got := idx.len(); got != 0 {
				t.Fatalf("len() after erase = %d, want 0", got)
			}
			if _, ok := idx.erase("a"); ok {
				t.Error("erase(a) twice reported ok=true")
			}
		})
	}
}

func TestOrderedIndexKeepsKeysSorted(t *testing.T) {
	idx := newOrderedIndex[string, int]()
	idx.upsert("c", 3)
	idx.upsert("a", 1)
	idx.upsert("b", 2)

	if got := idx.keys; len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("keys = %v, want [a b c]", got)
	}

	idx.erase("b")
	if got := idx.keys; len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("keys after erase(b) = %v, want [a c]", got)
	}
}
