// Package progress tracks indexing progress per dataset key, for display in
// the TUI's header status.
package progress

import (
	"fmt"
	"sort"
	"sync"
)

// entry is the per-key indexed/total snapshot.
type entry struct {
	indexed int
	total   *int
}

// Tracker stores per-key (indexed, total?) pairs plus one global completion
// flag (spec.md §4.5).
type Tracker struct {
	mu       sync.Mutex
	byKey    map[string]*entry
	complete bool
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{byKey: make(map[string]*entry)}
}

// RecordIndexed sets the indexed count for key. It never decreases: a call
// with a smaller n than already recorded is a no-op, preserving
// spec.md §8's "indexed_files is monotonically non-decreasing" invariant
// even if a caller races two updates.
func (t *Tracker) RecordIndexed(key string, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entryFor(key)
	if n > e.indexed {
		e.indexed = n
	}
}

// SetTotal stores the known total for key, or clears it when total is nil.
func (t *Tracker) SetTotal(key string, total *int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entryFor(key)
	e.total = total
}

// MarkComplete flips the global completion flag. It is terminal: Complete
// reports true from then on.
func (t *Tracker) MarkComplete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.complete = true
}

// Complete reports the global completion flag.
func (t *Tracker) Complete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.complete
}

func (t *Tracker) entryFor(key string) *entry {
	e, ok := t.byKey[key]
	if !ok {
		e = &entry{}
		t.byKey[key] = e
	}
	return e
}

// Status returns a human-readable progress string covering every tracked key
// in sorted order, plus the global completion flag. labels maps a key to its
// display name; a key with no label is shown as itself.
func (t *Tracker) Status(labels map[string]string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]string, 0, len(t.byKey))
	for k := range t.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		e := t.byKey[k]
		label := labels[k]
		if label == "" {
			label = k
		}
		if e.total != nil {
			parts = append(parts, fmt.Sprintf("%s: %d/%d", label, e.indexed, *e.total))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %d", label, e.indexed))
		}
	}

	status := "indexing…"
	if t.complete {
		status = "indexed"
	}
	if len(parts) == 0 {
		return status, t.complete
	}
	joined := parts[0]
	for _, p := range parts[1:] {
		joined += ", " + p
	}
	return status + " (" + joined + ")", t.complete
}
