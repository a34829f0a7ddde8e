// Package search implements the long-lived worker that owns the mutable
// search dataset, runs the fuzzy scorer against it, and streams ranked
// match batches back to the UI (spec.md §4.3).
package search

import (
	"github.com/screenager/frz/internal/action"
	"github.com/screenager/frz/internal/fsrow"
	"github.com/screenager/frz/internal/scorer"
)

// View is what the Search Runtime's result stream mutates. It mirrors the
// SearchView half of the consumer API (spec.md §6).
type View interface {
	ReplaceMatches(batch fsrow.MatchBatch)
	ClearMatches()
	RecordCompletion(complete bool)
}

type queryCmd struct {
	id    uint64
	query string
}

type updateCmd struct {
	mutate func(*fsrow.SearchData)
}

type shutdownCmd struct{}

// Runtime is the single long-lived thread that owns SearchData and runs
// scorers sequentially against it (spec.md §4.3, §5).
type Runtime struct {
	cmds    chan any
	results *action.Chan[View]
	cancel  *action.CancellationRegister
	data    fsrow.SearchData
	done    chan struct{}
}

// NewRuntime creates a Runtime. results is the channel the UI drains for
// match-batch envelopes; cancel is the shared cancellation register the UI
// also writes to when issuing a new query.
func NewRuntime(results *action.Chan[View], cancel *action.CancellationRegister) *Runtime {
	return &Runtime{
		cmds:    make(chan any, 64),
		results: results,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Run drives the command loop until Shutdown is called. It is meant to run
// on its own goroutine for the lifetime of the process.
func (rt *Runtime) Run() {
	defer close(rt.done)
	for cmd := range rt.cmds {
		switch c := cmd.(type) {
		case queryCmd:
			rt.runQuery(c.id, c.query)
		case updateCmd:
			c.mutate(&rt.data)
		case shutdownCmd:
			return
		}
	}
}

// Done reports when Run has returned.
func (rt *Runtime) Done() <-chan struct{} { return rt.done }

// Query asks the runtime to score query under id. Results stream back
// asynchronously through the results channel passed to NewRuntime.
func (rt *Runtime) Query(id uint64, query string) {
	rt.cmds <- queryCmd{id: id, query: query}
}

// Update schedules a mutator to run against the runtime's copy of
// SearchData — this is how index updates are forwarded so scoring sees
// fresh rows (spec.md §4.2, §5).
func (rt *Runtime) Update(mutate func(*fsrow.SearchData)) {
	rt.cmds <- updateCmd{mutate: mutate}
}

// Shutdown stops the command loop after any commands already queued drain.
func (rt *Runtime) Shutdown() {
	rt.cmds <- shutdownCmd{}
}

func (rt *Runtime) runQuery(id uint64, query string) {
	stale := func() bool { return rt.cancel.Stale(id) }

	stream := rt.results.Stream(id, action.KindSearch)
	stop := make(chan struct{}) // never closed: runtime loop is the only sender

	flushPartial := func(batch fsrow.MatchBatch) {
		stream.Send(stop, func(v View) { v.ReplaceMatches(batch) }, false)
	}
	finish := func(batch fsrow.MatchBatch) {
		stream.Send(stop, func(v View) {
			v.ReplaceMatches(batch)
			v.RecordCompletion(true)
		}, true)
	}

	scorer.RunQuery(query, rt.data.Rows, stale, flushPartial, finish)
}
