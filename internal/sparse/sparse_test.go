package sparse

import "testing"

func TestSparseSetBasic(t *testing.T) {
	s := NewSparseSet(100)

	if !s.IsEmpty() {
		t.Error("new set should be empty")
	}
	if s.Contains(0) {
		t.Error("empty set should not contain 0")
	}

	s.Insert(5)
	if !s.Contains(5) {
		t.Error("set should contain 5 after insert")
	}
	s.Insert(5)
	if s.Size() != 1 {
		t.Errorf("size should be 1 after duplicate insert, got %d", s.Size())
	}

	s.Insert(10)
	s.Insert(3)
	s.Insert(7)
	if s.Size() != 4 {
		t.Errorf("size should be 4, got %d", s.Size())
	}

	s.Clear()
	if !s.IsEmpty() {
		t.Error("set should be empty after clear")
	}
	if s.Contains(5) {
		t.Error("cleared set should not contain 5")
	}
}

func TestSparseSetRemove(t *testing.T) {
	s := NewSparseSet(100)
	s.Insert(1)
	s.Insert(2)
	s.Insert(3)

	s.Remove(2)
	if s.Contains(2) {
		t.Error("set should not contain 2 after remove")
	}
	if s.Size() != 2 {
		t.Errorf("size should be 2 after remove, got %d", s.Size())
	}
	if !s.Contains(1) || !s.Contains(3) {
		t.Error("set should still contain 1 and 3")
	}

	// Removing the last element should be a no-op for everything else
	// (exercises the swap-and-pop path with size-1 == idx).
	s.Remove(3)
	if !s.Contains(1) {
		t.Error("removing the last element should not disturb the others")
	}
}

func TestSparseSetContainsOutOfRange(t *testing.T) {
	s := NewSparseSet(4)
	if s.Contains(100) {
		t.Error("out-of-range value should never be contained")
	}
}

func TestSparseSetValuesAndIter(t *testing.T) {
	s := NewSparseSet(10)
	want := map[uint32]bool{2: true, 4: true, 6: true}
	for v := range want {
		s.Insert(v)
	}

	got := map[uint32]bool{}
	for _, v := range s.Values() {
		got[v] = true
	}
	if len(got) != len(want) {
		t.Fatalf("Values() returned %d elements, want %d", len(got), len(want))
	}
	for v := range want {
		if !got[v] {
			t.Errorf("Values() missing %d", v)
		}
	}

	seen := map[uint32]bool{}
	s.Iter(func(v uint32) { seen[v] = true })
	for v := range want {
		if !seen[v] {
			t.Errorf("Iter() missed %d", v)
		}
	}
}

func TestSparseSetCrossValidation(t *testing.T) {
	// Stale sparse[] entries from before a Clear must not cause a false
	// Contains after new values happen to reuse the same dense slot.
	s := NewSparseSet(100)
	s.Insert(5)
	s.Insert(10)
	s.Clear()

	if s.Contains(5) || s.Contains(10) {
		t.Error("cleared set should not contain old values")
	}

	s.Insert(3)
	if !s.Contains(3) {
		t.Error("should contain 3")
	}
	if s.Contains(5) || s.Contains(10) {
		t.Error("should not contain stale values after reinsertion")
	}
}
