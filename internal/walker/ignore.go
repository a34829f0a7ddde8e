package walker

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// ignoreLayer is one compiled ignore file rooted at dir; patterns in it are
// matched against paths relative to dir.
type ignoreLayer struct {
	dir string
	m   *gitignore.GitIgnore
}

// ignoreStack is the set of ignore layers accumulated while descending the
// tree. A path is considered ignored if ANY applicable layer matches it —
// a simplification of full git precedence (which lets a deeper file
// re-include a pattern excluded by a shallower one via `!pattern`); frz does
// not attempt to model re-inclusion across files, only within one file,
// which `go-gitignore` already handles.
type ignoreStack []ignoreLayer

// loadLayer compiles the ignore file at path, if present. A missing file is
// not an error — most directories have none.
func loadLayer(dir, filename string) (ignoreLayer, bool) {
	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err != nil {
		return ignoreLayer{}, false
	}
	m, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		// Malformed ignore files are a transient, non-fatal condition
		// (spec.md §4.2 "per-entry I/O errors are skipped silently").
		return ignoreLayer{}, false
	}
	return ignoreLayer{dir: dir, m: m}, true
}

// push returns a new stack with dir's local ignore files appended, according
// to opts. The caller is responsible for restoring the prior stack after
// the subtree rooted at dir has been fully visited (the stack is small and
// copied on append, so siblings never see each other's layers).
func (s ignoreStack) push(dir string, opts FilesystemOptions) ignoreStack {
	if !opts.RespectIgnoreFiles {
		return s
	}
	next := s[:len(s):len(s)]
	for _, name := range []string{".ignore", ".fdignore"} {
		if l, ok := loadLayer(dir, name); ok {
			next = append(next, l)
		}
	}
	if opts.GitIgnore {
		if l, ok := loadLayer(dir, ".gitignore"); ok {
			next = append(next, l)
		}
	}
	if opts.GitExclude {
		if l, ok := loadLayer(filepath.Join(dir, ".git", "info"), "exclude"); ok {
			next = append(next, l)
		}
	}
	return next
}

// matches reports whether absPath (a file or directory) is excluded by any
// layer on the stack.
func (s ignoreStack) matches(absPath string, isDir bool) bool {
	for _, layer := range s {
		rel, err := filepath.Rel(layer.dir, absPath)
		if err != nil {
			continue
		}
		if layer.m.MatchesPath(rel) {
			return true
		}
		if isDir {
			// go-gitignore expects a trailing slash to match directory-only
			// patterns such as "build/".
			if layer.m.MatchesPath(rel + "/") {
				return true
			}
		}
	}
	return false
}

// globalLayer compiles the user's global gitignore (GitGlobal), independent
// of directory nesting — it applies everywhere, so it is computed once per
// walk rather than per directory.
func globalLayer(opts FilesystemOptions) (ignoreLayer, bool) {
	if !opts.RespectIgnoreFiles || !opts.GitGlobal {
		return ignoreLayer{}, false
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ignoreLayer{}, false
	}
	return loadLayer(home, ".gitignore_global")
}
