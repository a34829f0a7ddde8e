package scorer

import (
	"container/heap"
	"sort"
	"strings"

	"github.com/screenager/frz/internal/fsrow"
)

// RunQuery runs one query to completion (or until stale reports true),
// delivering partial snapshots through flushPartial and a final snapshot
// through finish. stale is polled at chunk boundaries; once it reports
// true, RunQuery returns without calling finish — no final batch is ever
// delivered for a superseded query (spec.md §4.1, §8 "Cancellation").
func RunQuery(query string, rows []fsrow.Row, stale func() bool, flushPartial, finish func(fsrow.MatchBatch)) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		runEmptyQuery(rows, stale, flushPartial, finish)
		return
	}
	runFuzzyQuery(trimmed, rows, stale, flushPartial, finish)
}

func runFuzzyQuery(query string, rows []fsrow.Row, stale func() bool, flushPartial, finish func(fsrow.MatchBatch)) {
	cfg := configFor(len([]rune(query)), len(rows))
	queryRunes := toLowerRunes(query)
	ranker := NewRanker(MaxRenderedResults)

	for start := 0; start < len(rows); start += MatchChunkSize {
		if stale() {
			return
		}
		end := start + MatchChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		for i := start; i < end; i++ {
			target := strings.ToLower(rows[i].Display)
			if cfg.usePrefilter && !prefilterPasses(queryRunes, runeSet(target), cfg) {
				continue
			}
			score, ok := matchScore(queryRunes, target, cfg)
			if !ok {
				continue
			}
			ranker.Offer(i, score, rows[i].ID)
		}
		if stale() {
			return
		}
		if ranker.Dirty() {
			flushPartial(ranker.Snapshot())
			ranker.ClearDirty()
		}
	}

	if stale() {
		return
	}
	finish(ranker.Snapshot())
}

// alphaItem is one candidate in the empty-query alphabetical fallback.
type alphaItem struct {
	key   string
	index int
	id    uint64
}

// alphaHeap is a max-heap by key — the root is the lexicographically
// largest retained key, so it's the first to be evicted when a smaller one
// arrives and the heap is at capacity.
type alphaHeap []alphaItem

func (h alphaHeap) Len() int            { return len(h) }
func (h alphaHeap) Less(i, j int) bool  { return h[i].key > h[j].key }
func (h alphaHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *alphaHeap) Push(x any)         { *h = append(*h, x.(alphaItem)) }
func (h *alphaHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func runEmptyQuery(rows []fsrow.Row, stale func() bool, flushPartial, finish func(fsrow.MatchBatch)) {
	h := &alphaHeap{}
	processed := 0

	for i, row := range rows {
		if stale() {
			return
		}
		offerAlpha(h, row.Display, i, row.ID)
		processed++
		if processed%EmptyQueryBatch == 0 {
			flushPartial(alphaSnapshot(*h))
		}
	}

	if stale() {
		return
	}
	finish(alphaSnapshot(*h))
}

func offerAlpha(h *alphaHeap, key string, index int, id uint64) {
	item := alphaItem{key: key, index: index, id: id}
	if h.Len() < MaxRenderedResults {
		heap.Push(h, item)
		return
	}
	if h.Len() > 0 && key < (*h)[0].key {
		(*h)[0] = item
		heap.Fix(h, 0)
	}
}

// alphaSnapshot extracts h sorted ascending by key — the lexicographically
// smallest min(N, MaxRenderedResults) rows, stably ordered by dataset index
// on ties (spec.md §8 "Empty-query equivalence").
func alphaSnapshot(h alphaHeap) fsrow.MatchBatch {
	items := make([]alphaItem, len(h))
	copy(items, h)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].key != items[j].key {
			return items[i].key < items[j].key
		}
		return items[i].index < items[j].index
	})

	indices := make([]int, len(items))
	ids := make([]uint64, len(items))
	scores := make([]uint16, len(items))
	for i, it := range items {
		indices[i] = it.index
		ids[i] = it.id
		// Alphabetical fallback carries no fuzzy score; 0 signals
		// "unscored" rather than "non-match" in this batch kind.
		scores[i] = 0
	}
	return fsrow.MatchBatch{Indices: indices, IDs: ids, Scores: scores}
}
