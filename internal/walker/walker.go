// Package walker implements the Parallel Walker (spec.md §4.2): a
// filesystem traversal that honors ignore files and extension/hidden/depth
// filters, fanning work out across a worker pool sized by
// FilesystemOptions.Threads.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Walker traverses a single root directory.
type Walker struct {
	root string
	opts FilesystemOptions
}

// New creates a Walker rooted at root.
func New(root string, opts FilesystemOptions) *Walker {
	return &Walker{root: root, opts: opts}
}

// Walk traverses the tree, calling emit for every accepted file's
// root-relative, "/"-separated path. emit is called from multiple
// goroutines serialized against each other (never concurrently), so it may
// safely forward into a single-consumer channel send; if it returns false
// the walk stops cooperatively and Walk returns nil (spec.md §4.2: "channel
// send failure (UI disconnected) terminates the walk cooperatively").
func (w *Walker) Walk(ctx context.Context, emit func(relPath string) bool) error {
	info, err := os.Lstat(w.root)
	if err != nil {
		return fmt.Errorf("walker: stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("walker: root %q is not a directory", w.root)
	}

	threads := w.opts.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	baseStack := ignoreStack{}
	if gl, ok := globalLayer(w.opts); ok {
		baseStack = append(baseStack, gl)
	}
	baseStack = baseStack.push(w.root, w.opts)

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("walker: readdir root: %w", err)
	}

	var stopped atomic.Bool
	var emitMu sync.Mutex
	safeEmit := func(rel string) bool {
		emitMu.Lock()
		defer emitMu.Unlock()
		if stopped.Load() {
			return false
		}
		if !emit(rel) {
			stopped.Store(true)
			return false
		}
		return true
	}

	type job struct {
		absPath, relPath string
		isDir            bool
		stack            ignoreStack
	}
	jobs := make(chan job, len(entries))
	for _, e := range entries {
		name := e.Name()
		abs := filepath.Join(w.root, name)
		isDir, prune := w.classify(name, abs, e)
		if prune || baseStack.matches(abs, isDir) {
			continue
		}
		if isDir && w.opts.MaxDepth != nil && *w.opts.MaxDepth < 1 {
			continue
		}
		jobs <- job{absPath: abs, relPath: name, isDir: isDir, stack: baseStack}
	}
	close(jobs)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			for j := range jobs {
				if stopped.Load() {
					continue // drain the channel without doing more work
				}
				if err := w.visit(gctx, j.absPath, j.relPath, j.isDir, 1, j.stack, safeEmit, &stopped); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// visit processes one entry already known to have survived pruning at its
// own level. Directories recurse sequentially within the calling worker —
// the worker pool parallelizes across top-level entries, not within a
// single subtree, keeping the ignore-stack bookkeeping simple.
func (w *Walker) visit(ctx context.Context, absPath, relPath string, isDir bool, depth int, stack ignoreStack, emit func(string) bool, stopped *atomic.Bool) error {
	if stopped.Load() || ctx.Err() != nil {
		return nil
	}

	if !isDir {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(relPath), "."))
		if !w.opts.extensionAllowed(ext) {
			return nil
		}
		emit(filepath.ToSlash(relPath))
		return nil
	}

	entries, err := os.ReadDir(absPath)
	if err != nil {
		// Per-entry I/O errors are skipped silently; the walk continues.
		return nil
	}
	childStack := stack.push(absPath, w.opts)

	for _, e := range entries {
		if stopped.Load() || ctx.Err() != nil {
			return nil
		}
		name := e.Name()
		childAbs := filepath.Join(absPath, name)
		childRel := relPath + "/" + name

		childIsDir, prune := w.classify(name, childAbs, e)
		if prune || childStack.matches(childAbs, childIsDir) {
			continue
		}
		if childIsDir && w.opts.MaxDepth != nil && depth+1 > *w.opts.MaxDepth {
			continue
		}
		if err := w.visit(ctx, childAbs, childRel, childIsDir, depth+1, childStack, emit, stopped); err != nil {
			return err
		}
	}
	return nil
}

// classify resolves whether an entry is a directory (following a symlink if
// configured to) and whether it must be pruned outright (hidden, globally
// ignored, or an unfollowed symlink).
func (w *Walker) classify(name, abs string, e fs.DirEntry) (isDir, prune bool) {
	if !w.opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return false, true
	}
	if w.opts.globallyIgnored(name) {
		return false, true
	}
	isDir = e.IsDir()
	if e.Type()&fs.ModeSymlink != 0 {
		if !w.opts.FollowSymlinks {
			return false, true
		}
		info, err := os.Stat(abs)
		if err != nil {
			return false, true
		}
		isDir = info.IsDir()
	}
	return isDir, false
}
