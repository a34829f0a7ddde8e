package scorer

import (
	"testing"

	"github.com/screenager/frz/internal/fsrow"
)

func rowsFromNames(names []string) []fsrow.Row {
	rows := make([]fsrow.Row, len(names))
	for i, n := range names {
		rows[i] = fsrow.NewRow(n)
	}
	return rows
}

func collectBatches(t *testing.T, query string, rows []fsrow.Row, stale func() bool) (partials []fsrow.MatchBatch, final fsrow.MatchBatch, gotFinal bool) {
	t.Helper()
	RunQuery(query, rows, stale,
		func(b fsrow.MatchBatch) { partials = append(partials, b) },
		func(b fsrow.MatchBatch) { final = b; gotFinal = true },
	)
	return
}

func neverStale() bool { return false }

func checkBatchShape(t *testing.T, b fsrow.MatchBatch) {
	t.Helper()
	if len(b.Indices) != len(b.Scores) {
		t.Fatalf("Indices/Scores length mismatch: %d vs %d", len(b.Indices), len(b.Scores))
	}
	if len(b.IDs) != len(b.Indices) {
		t.Fatalf("IDs/Indices length mismatch: %d vs %d", len(b.IDs), len(b.Indices))
	}
	if len(b.Indices) > MaxRenderedResults {
		t.Fatalf("batch exceeds MaxRenderedResults: %d", len(b.Indices))
	}
}

func TestEmptyDatasetEmptyQueryYieldsOneEmptyFinalBatch(t *testing.T) {
	_, final, gotFinal := collectBatches(t, "", nil, neverStale)
	if !gotFinal {
		t.Fatal("expected a final batch")
	}
	checkBatchShape(t, final)
	if len(final.Indices) != 0 {
		t.Fatalf("expected empty final batch, got %d entries", len(final.Indices))
	}
}

func TestFuzzyQueryRankingOrderInvariant(t *testing.T) {
	names := []string{"foobar.go", "foo/bar.go", "zzz.go", "fo_obar_test.go", "barfoo.go"}
	_, final, gotFinal := collectBatches(t, "foobar", rowsFromNames(names), neverStale)
	if !gotFinal {
		t.Fatal("expected a final batch")
	}
	checkBatchShape(t, final)
	for i := 1; i < len(final.Scores); i++ {
		if final.Scores[i-1] < final.Scores[i] {
			t.Fatalf("scores not descending at %d: %v", i, final.Scores)
		}
		if final.Scores[i-1] == final.Scores[i] && final.Indices[i-1] > final.Indices[i] {
			t.Fatalf("tie not broken by ascending index at %d: %v", i, final.Indices)
		}
	}
}

func TestZeroScoreRowsAreExcluded(t *testing.T) {
	names := []string{"abc.go", "xyz.go"}
	_, final, gotFinal := collectBatches(t, "abc", rowsFromNames(names), neverStale)
	if !gotFinal {
		t.Fatal("expected a final batch")
	}
	if len(final.Indices) != 1 || final.Indices[0] != 0 {
		t.Fatalf("expected only index 0 to match, got %v", final.Indices)
	}
}

func TestCancellationSuppressesFinalBatch(t *testing.T) {
	names := make([]string, 2000)
	for i := range names {
		names[i] = "file_match_me.go"
	}
	calls := 0
	stale := func() bool {
		calls++
		return calls > 1
	}
	_, final, gotFinal := collectBatches(t, "match", rowsFromNames(names), stale)
	if gotFinal {
		t.Fatalf("expected no final batch once stale, got %v", final)
	}
}

func TestEmptyQueryAlphabeticalOrdering(t *testing.T) {
	names := []string{"charlie.go", "alpha.go", "bravo.go"}
	_, final, gotFinal := collectBatches(t, "", rowsFromNames(names), neverStale)
	if !gotFinal {
		t.Fatal("expected a final batch")
	}
	checkBatchShape(t, final)
	want := []int{1, 2, 0} // alpha, bravo, charlie
	if len(final.Indices) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(final.Indices))
	}
	for i, idx := range want {
		if final.Indices[i] != idx {
			t.Fatalf("index %d: want %d, got %d (%v)", i, idx, final.Indices[i], final.Indices)
		}
	}
}

func TestEmptyQueryFallbackCapsAtMaxRenderedResults(t *testing.T) {
	names := make([]string, MaxRenderedResults+5)
	for i := range names {
		// descending names so every row is a candidate for inclusion
		names[i] = string(rune('z'-(i%26))) + "_file.go"
	}
	_, final, gotFinal := collectBatches(t, "", rowsFromNames(names), neverStale)
	if !gotFinal {
		t.Fatal("expected a final batch")
	}
	if len(final.Indices) != MaxRenderedResults {
		t.Fatalf("expected exactly MaxRenderedResults entries, got %d", len(final.Indices))
	}
}

func TestAllowedTyposTableBoundary(t *testing.T) {
	// spec.md's worked example: query length 13 on a large dataset allows 4 typos.
	if got := allowedTyposFor(13); got != 4 {
		t.Fatalf("allowedTyposFor(13) = %d, want 4", got)
	}
	// clamp: a 1-rune query can tolerate at most 0 typos (len-1 == 0).
	if got := allowedTyposFor(1); got != 0 {
		t.Fatalf("allowedTyposFor(1) = %d, want 0", got)
	}
}

func TestPrefilterDisabledBelowThreshold(t *testing.T) {
	cfg := configFor(1, 10)
	if cfg.usePrefilter {
		t.Fatal("expected prefilter disabled below PrefilterEnableThreshold")
	}
}

func TestPrefilterEnabledAtThreshold(t *testing.T) {
	cfg := configFor(13, PrefilterEnableThreshold)
	if !cfg.usePrefilter {
		t.Fatal("expected prefilter enabled at PrefilterEnableThreshold")
	}
	if cfg.allowedTypos != 4 {
		t.Fatalf("allowedTypos = %d, want 4", cfg.allowedTypos)
	}
}
