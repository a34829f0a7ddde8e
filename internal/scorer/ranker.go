package scorer

import (
	"container/heap"
	"sort"

	"github.com/screenager/frz/internal/fsrow"
)

// rankItem is one candidate held by the Ranker's heap.
type rankItem struct {
	score uint16
	index int
	id    uint64
}

// rankHeap is a min-heap ordered by (score asc, index desc) — popping the
// root always surfaces the worst element: the lowest score, and among ties
// the highest index (spec.md §4.3).
type rankHeap []rankItem

func (h rankHeap) Len() int { return len(h) }
func (h rankHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].index > h[j].index
}
func (h rankHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankHeap) Push(x any) { *h = append(*h, x.(rankItem)) }

func (h *rankHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Ranker is the top-K min-heap over (score, index) pairs described in
// spec.md §4.3: it keeps at most `capacity` candidates, evicting the worst
// one whenever a better candidate arrives once full.
type Ranker struct {
	capacity int
	h        rankHeap
	dirty    bool
}

// NewRanker creates a Ranker that keeps at most capacity candidates.
func NewRanker(capacity int) *Ranker {
	return &Ranker{capacity: capacity}
}

// Offer proposes (index, score, id) for inclusion. A zero score is never
// accepted (spec.md §8 "Zero-score filtering"). Once the heap is at
// capacity, a new candidate only displaces the current minimum when its
// score strictly exceeds the minimum's score (spec.md §4.3: "any
// score_new > heap.min replaces it") — equal scores keep whichever
// candidate arrived first, which combined with in-order row iteration
// means ties resolve toward the lower index (spec.md §8's capacity
// boundary case).
func (r *Ranker) Offer(index int, score uint16, id uint64) {
	if score == 0 {
		return
	}
	item := rankItem{score: score, index: index, id: id}
	if len(r.h) < r.capacity {
		heap.Push(&r.h, item)
		r.dirty = true
		return
	}
	if len(r.h) > 0 && score > r.h[0].score {
		r.h[0] = item
		heap.Fix(&r.h, 0)
		r.dirty = true
	}
}

// Dirty reports whether the heap has changed since the last ClearDirty.
func (r *Ranker) Dirty() bool { return r.dirty }

// ClearDirty resets the dirty flag, typically called right after a flush.
func (r *Ranker) ClearDirty() { r.dirty = false }

// Len reports how many candidates are currently held.
func (r *Ranker) Len() int { return len(r.h) }

// Snapshot extracts the current heap contents sorted by (score desc,
// index asc) and returns them as a MatchBatch (spec.md §4.3 "Ranker output
// ordering"). IDs are always populated — frz's UI consumer advertises
// identity support (DESIGN.md Open Question log).
func (r *Ranker) Snapshot() fsrow.MatchBatch {
	items := make([]rankItem, len(r.h))
	copy(items, r.h)
	sort.Slice(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].index < items[j].index
	})

	indices := make([]int, len(items))
	ids := make([]uint64, len(items))
	scores := make([]uint16, len(items))
	for i, it := range items {
		indices[i] = it.index
		ids[i] = it.id
		scores[i] = it.score
	}
	return fsrow.MatchBatch{Indices: indices, IDs: ids, Scores: scores}
}
