package scorer

import "testing"

func TestRankerCapacityBoundaryExcludesHighestIndexOnTie(t *testing.T) {
	r := NewRanker(3)
	r.Offer(0, 10, 100)
	r.Offer(1, 10, 101)
	r.Offer(2, 10, 102)
	// A fourth candidate with an equal score never displaces anything —
	// spec.md's literal "score_new > heap.min" rule — so the highest index
	// among equal scores is the one left out.
	r.Offer(3, 10, 103)

	snap := r.Snapshot()
	if len(snap.Indices) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snap.Indices))
	}
	for _, idx := range snap.Indices {
		if idx == 3 {
			t.Fatal("index 3 should have been excluded on the tie boundary")
		}
	}
}

func TestRankerReplacesOnlyOnStrictlyHigherScore(t *testing.T) {
	r := NewRanker(2)
	r.Offer(0, 5, 1)
	r.Offer(1, 5, 2)
	r.ClearDirty()

	r.Offer(2, 5, 3) // equal score: must not replace
	if r.Dirty() {
		t.Fatal("equal score should not mark the ranker dirty")
	}

	r.Offer(3, 6, 4) // strictly higher: must replace the current minimum
	if !r.Dirty() {
		t.Fatal("strictly higher score should mark the ranker dirty")
	}
	snap := r.Snapshot()
	found := false
	for _, idx := range snap.Indices {
		if idx == 3 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected index 3 to be present after displacing the minimum")
	}
}

func TestRankerRejectsZeroScore(t *testing.T) {
	r := NewRanker(2)
	r.Offer(0, 0, 1)
	if r.Len() != 0 {
		t.Fatalf("expected zero-score offer to be rejected, heap len = %d", r.Len())
	}
}
