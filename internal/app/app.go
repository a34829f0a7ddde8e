// Package app holds the UI-side App State spec.md §4.4 describes: the
// dataset, the filtered/score buffers, selection, the stable-id map, and
// the bookkeeping that decides when an index update should auto-refresh
// the visible results.
package app

import (
	"github.com/screenager/frz/internal/fsrow"
	"github.com/screenager/frz/internal/progress"
	"github.com/screenager/frz/internal/revision"
)

// State is the UI thread's copy of the dataset and derived view state. It
// satisfies both indexer.View and search.View without importing either
// package, avoiding an import cycle (both packages depend on it only
// through their own narrow View interfaces).
type State struct {
	Dataset fsrow.SearchData

	Filtered []int
	Scores   []uint16
	Cursor   int

	ids map[uint64]int // stable id -> dataset index

	Progress *progress.Tracker
	Revision *revision.State

	NextQueryID    uint64
	CurrentQueryID uint64
	InFlight       bool

	// LastIndexChanged is set by ApplyIndexUpdate and read by the caller
	// immediately afterward to decide whether to forward the update to the
	// Search Runtime and consult the revision rule (spec.md §4.4 "Apply
	// index update"). It is not meant to be read at any other time.
	LastIndexChanged bool
}

// New returns an empty State ready for a fresh session.
func New() *State {
	return &State{
		ids:      make(map[uint64]int),
		Progress: progress.New(),
		Revision: revision.New(),
	}
}

// ApplyIndexUpdate implements indexer.View (spec.md §4.4 "Apply index
// update"). It mutates Dataset, rebuilds or extends the stable-id map, and
// clears scratch/selection state on replacement or reset.
func (s *State) ApplyIndexUpdate(update fsrow.IndexUpdate) {
	switch {
	case update.CachedData != nil:
		s.Dataset = update.CachedData.Clone()
		s.clearSelection()
		s.rebuildIDMap()
		s.LastIndexChanged = true

	case update.Reset:
		s.clearScratch()
		start := len(s.Dataset.Rows)
		s.Dataset.Rows = append(s.Dataset.Rows, update.Files...)
		s.extendIDMap(start)
		s.LastIndexChanged = true

	case len(update.Files) > 0:
		start := len(s.Dataset.Rows)
		s.Dataset.Rows = append(s.Dataset.Rows, update.Files...)
		s.extendIDMap(start)
		s.LastIndexChanged = true

	default:
		s.LastIndexChanged = false
	}

	key := s.Dataset.ContextLabel
	if key == "" {
		key = s.Dataset.Root
	}
	s.Progress.RecordIndexed(key, update.Progress.IndexedFiles)
	s.Progress.SetTotal(key, update.Progress.TotalFiles)
	if update.Progress.Complete {
		s.Progress.MarkComplete()
	}
}

// clearScratch wipes the dataset along with the filtered/score/selection
// scratch — only valid when the rows themselves are being discarded (the
// Reset path). A cache preview replaces Dataset with real rows and must not
// go through this.
func (s *State) clearScratch() {
	s.Dataset.Rows = nil
	s.clearSelection()
}

// clearSelection resets the filtered/score/selection scratch without
// touching Dataset.Rows, for the CachedData replacement path where the new
// rows must survive.
func (s *State) clearSelection() {
	s.Filtered = nil
	s.Scores = nil
	s.Cursor = 0
	s.ids = make(map[uint64]int)
}

func (s *State) rebuildIDMap() {
	s.ids = make(map[uint64]int, len(s.Dataset.Rows))
	for i, r := range s.Dataset.Rows {
		s.ids[r.ID] = i
	}
}

func (s *State) extendIDMap(start int) {
	for i := start; i < len(s.Dataset.Rows); i++ {
		s.ids[s.Dataset.Rows[i].ID] = i
	}
}

// ReplaceMatches implements search.View. If batch carries IDs, each index
// is re-resolved through the stable-id map (spec.md §4.4 "Apply match
// batch"); misses are dropped. Selection is re-anchored if it falls out of
// range.
func (s *State) ReplaceMatches(batch fsrow.MatchBatch) {
	if batch.IDs != nil {
		filtered := make([]int, 0, len(batch.IDs))
		scores := make([]uint16, 0, len(batch.IDs))
		for i, id := range batch.IDs {
			if idx, ok := s.ids[id]; ok {
				filtered = append(filtered, idx)
				scores = append(scores, batch.Scores[i])
			}
		}
		s.Filtered = filtered
		s.Scores = scores
	} else {
		s.Filtered = batch.Indices
		s.Scores = batch.Scores
	}

	if s.Cursor >= len(s.Filtered) {
		s.Cursor = len(s.Filtered) - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// ClearMatches implements search.View.
func (s *State) ClearMatches() {
	s.Filtered = nil
	s.Scores = nil
	s.Cursor = 0
}

// RecordCompletion implements search.View (spec.md §4.4 "On complete=true,
// record completion in revisions").
func (s *State) RecordCompletion(complete bool) {
	if complete {
		s.InFlight = false
		s.Revision.OnQueryCompleted()
	}
}

// IssueQuery bumps NextQueryID, stores it as the new CurrentQueryID, marks
// InFlight, and records the issuance in the revision tracker. It returns
// the new query id so the caller can forward it to the Search Runtime and
// the shared CancellationRegister.
func (s *State) IssueQuery() uint64 {
	s.NextQueryID++
	s.CurrentQueryID = s.NextQueryID
	s.InFlight = true
	s.Revision.OnQueryIssued()
	return s.CurrentQueryID
}

// SelectedRow returns the row under the cursor and whether one exists.
func (s *State) SelectedRow() (fsrow.Row, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Filtered) {
		return fsrow.Row{}, false
	}
	idx := s.Filtered[s.Cursor]
	if idx < 0 || idx >= len(s.Dataset.Rows) {
		return fsrow.Row{}, false
	}
	return s.Dataset.Rows[idx], true
}

// MoveCursor shifts the selection by delta, clamped to the filtered range.
func (s *State) MoveCursor(delta int) {
	if len(s.Filtered) == 0 {
		s.Cursor = 0
		return
	}
	s.Cursor += delta
	if s.Cursor < 0 {
		s.Cursor = 0
	}
	if s.Cursor >= len(s.Filtered) {
		s.Cursor = len(s.Filtered) - 1
	}
}
