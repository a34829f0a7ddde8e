// Package indexer orchestrates the cache preview, reindex delay, and live
// walk into the ordered index-action stream spec.md §4.2 describes.
package indexer

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/screenager/frz/internal/action"
	"github.com/screenager/frz/internal/batch"
	"github.com/screenager/frz/internal/cache"
	"github.com/screenager/frz/internal/fsrow"
	"github.com/screenager/frz/internal/walker"
)

// View is the index-half of the consumer API (spec.md §6 "IndexView").
type View interface {
	ApplyIndexUpdate(update fsrow.IndexUpdate)
}

// Indexer orchestrates one indexing pass: optional cache preview, an
// optional reindex delay, then a live parallel walk (spec.md §4.2).
type Indexer struct {
	root  string
	opts  walker.FilesystemOptions
	cache *cache.Cache // nil disables caching entirely

	// reindexDelay is the policy value persisted alongside the NEXT
	// complete cache entry — not what this run sleeps for. What this run
	// sleeps for is read back from whatever was stored last time (spec.md
	// §9 Open Question: "reindex_delay policy... should be made an
	// explicit option"; this implementation's decision: verbatim
	// read-back, 0 for a first-ever index since there's nothing to read).
	reindexDelay time.Duration
}

// New creates an Indexer. c may be nil to disable the cache entirely.
func New(root string, opts walker.FilesystemOptions, c *cache.Cache, reindexDelay time.Duration) *Indexer {
	return &Indexer{root: root, opts: opts, cache: c, reindexDelay: reindexDelay}
}

// Run drives one full indexing pass, delivering envelopes tagged passID on
// out until ctx is cancelled, the consumer disconnects via stop, or the
// pass completes normally (exactly one envelope with complete=true).
func (ix *Indexer) Run(ctx context.Context, passID uint64, out *action.Chan[View], stop <-chan struct{}) error {
	stream := out.Stream(passID, action.KindIndexUpdate)

	var key string
	var sleepFor time.Duration
	previewDelivered := false

	if ix.cache != nil {
		key = cache.Key(ix.root, ix.opts)
		entry, ok, err := ix.cache.Load(key)
		if err == nil && ok {
			previewDelivered = true
			sleepFor = entry.ReindexDelay
			data := entry.Data

			var total *int
			if entry.Complete {
				n := len(data.Rows)
				total = &n
			}
			update := fsrow.IndexUpdate{
				Files: data.Rows,
				Progress: fsrow.Progress{
					IndexedFiles: len(data.Rows),
					TotalFiles:   total,
					Complete:     entry.Complete,
				},
				Reset:      true,
				CachedData: &data,
			}
			if !stream.Send(stop, func(v View) { v.ApplyIndexUpdate(update) }, false) {
				return nil
			}
		}
		// Cache backfill (spec.md §4.2 step 2) has nothing to do here: this
		// store holds one entry per key, not graduated snapshots, so there
		// is no finer-grained cached data to stream before the live walk.
	}

	if sleepFor > 0 {
		select {
		case <-time.After(sleepFor):
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		}
	}

	return ix.runLiveWalk(ctx, key, previewDelivered, stream, stop)
}

func (ix *Indexer) runLiveWalk(ctx context.Context, key string, previewDelivered bool, stream action.Stream[View], stop <-chan struct{}) error {
	b := batch.New()
	if previewDelivered {
		b.MarkReset()
	}

	var mu sync.Mutex
	var allRows []fsrow.Row
	var aborted atomic.Bool

	flush := func(complete bool) bool {
		mu.Lock()
		update := b.Flush(time.Now())
		total := b.IndexedTotal()
		mu.Unlock()

		update.Progress = fsrow.Progress{IndexedFiles: total, Complete: complete}
		if complete {
			n := total
			update.Progress.TotalFiles = &n
		}
		if !stream.Send(stop, func(v View) { v.ApplyIndexUpdate(update) }, complete) {
			aborted.Store(true)
			return false
		}
		return true
	}

	tickerDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(batch.DispatchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				ready := b.Ready(time.Now())
				mu.Unlock()
				if ready {
					flush(false)
				}
			case <-tickerDone:
				return
			}
		}
	}()

	w := walker.New(ix.root, ix.opts)
	walkErr := w.Walk(ctx, func(relPath string) bool {
		row := fsrow.NewRow(relPath)

		mu.Lock()
		b.Push(row)
		allRows = append(allRows, row)
		ready := b.Ready(time.Now())
		mu.Unlock()

		if ready && !flush(false) {
			return false
		}
		return !aborted.Load()
	})
	close(tickerDone)

	if walkErr != nil {
		return fmt.Errorf("indexer: walk: %w", walkErr)
	}
	if aborted.Load() {
		return nil
	}

	flush(true)

	if ix.cache != nil && key != "" {
		entry := cache.Entry{
			Data: fsrow.SearchData{
				Rows:         allRows,
				Root:         ix.root,
				ContextLabel: ix.opts.ContextLabel,
			},
			ReindexDelay: ix.reindexDelay,
			Complete:     true,
		}
		if err := ix.cache.Store(key, entry); err != nil {
			fmt.Fprintf(os.Stderr, "[frz] cache store failed: %v\n", err)
		}
	}
	return nil
}
