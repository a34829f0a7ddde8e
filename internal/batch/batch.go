// Package batch implements the Update Batcher (spec.md §4.2): it coalesces
// discovered rows into size- and time-bounded batches before they become
// IndexUpdates.
package batch

import (
	"time"

	"github.com/screenager/frz/internal/fsrow"
)

// Tuning constants (spec.md §6).
const (
	MinBatchSize     = 32
	MaxBatchSize     = 1024
	DispatchInterval = 120 * time.Millisecond
)

// Batcher accumulates rows and decides when they should be flushed into an
// IndexUpdate. It holds no goroutine of its own — the indexer's aggregator
// loop drives it by calling Push as rows arrive and Ready/Flush on its own
// select/ticker cadence.
type Batcher struct {
	pending      []fsrow.Row
	indexedTotal int
	resetPending bool
	lastEmit     time.Time
}

// New creates an empty Batcher.
func New() *Batcher {
	return &Batcher{lastEmit: time.Now()}
}

// MarkReset records that the next flush must carry reset=true — set once,
// by the indexer, when a cache preview preceded the live walk.
func (b *Batcher) MarkReset() { b.resetPending = true }

// Push accumulates one discovered row.
func (b *Batcher) Push(row fsrow.Row) { b.pending = append(b.pending, row) }

// Pending reports how many rows are currently buffered.
func (b *Batcher) Pending() int { return len(b.pending) }

// IndexedTotal is the cumulative row count already flushed.
func (b *Batcher) IndexedTotal() int { return b.indexedTotal }

// sizeThreshold is the pending-row count at which a flush is forced, scaled
// by how much has already been indexed (spec.md §4.2): 32 below 1024
// indexed, 256 below 16384, 1024 (MaxBatchSize) beyond that.
func sizeThreshold(indexedTotal int) int {
	switch {
	case indexedTotal < 1024:
		return MinBatchSize
	case indexedTotal < 16384:
		return 256
	default:
		return MaxBatchSize
	}
}

// Ready reports whether the batcher should flush now: either the
// indexed-scaled size threshold is met, or DispatchInterval has elapsed
// since the last emission and there is data or a pending reset flag to
// carry (spec.md §4.2).
func (b *Batcher) Ready(now time.Time) bool {
	if len(b.pending) >= sizeThreshold(b.indexedTotal) {
		return true
	}
	if now.Sub(b.lastEmit) >= DispatchInterval && (len(b.pending) > 0 || b.resetPending) {
		return true
	}
	return false
}

// Flush extracts the pending rows and the reset flag, resets internal
// state, and returns an IndexUpdate with Progress and CachedData left zero
// for the caller to fill in (the batcher itself doesn't know the dataset's
// total file count or whether a cache preview exists).
func (b *Batcher) Flush(now time.Time) fsrow.IndexUpdate {
	rows := b.pending
	reset := b.resetPending
	b.pending = nil
	b.resetPending = false
	b.indexedTotal += len(rows)
	b.lastEmit = now
	return fsrow.IndexUpdate{Files: rows, Reset: reset}
}
