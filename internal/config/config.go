// Package config loads the optional .frz.toml file that supplies defaults
// for the CLI flags listed in spec.md §6, the way sift's cmd/sift/main.go
// preloads .sift.toml before registering cobra flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// File is the shape of .frz.toml. Every field is optional; a zero value
// means "not set in the file" and the CLI's own flag default applies.
type File struct {
	Root               string   `toml:"root"`
	InitialQuery       string   `toml:"initial-query"`
	Theme              string   `toml:"theme"`
	Hidden             bool     `toml:"hidden"`
	FollowSymlinks     bool     `toml:"follow-symlinks"`
	RespectIgnoreFiles bool     `toml:"respect-ignore-files"`
	GitIgnore          bool     `toml:"git-ignore"`
	GitGlobal          bool     `toml:"git-global"`
	GitExclude         bool     `toml:"git-exclude"`
	Threads            int      `toml:"threads"`
	MaxDepth           int      `toml:"max-depth"` // 0 means unset
	Extensions         []string `toml:"extensions"`
	ContextLabel       string   `toml:"context-label"`
	GlobalIgnores      []string `toml:"global-ignores"`
	ReindexDelay       string   `toml:"reindex-delay"` // parsed with time.ParseDuration
}

// DefaultPath is where frz looks for its config file in the working
// directory, mirroring sift's ".sift.toml" convention.
const DefaultPath = ".frz.toml"

// Load reads and parses path. A missing file is not an error — it returns
// a zero File so every flag default is left untouched, matching sift's
// "if err == nil" silent-skip pattern.
func Load(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return f, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f, nil
}

// ReindexDelayDuration parses ReindexDelay, returning 0 if it's empty or
// malformed — a first index has no prior delay to read back anyway.
func (f File) ReindexDelayDuration() time.Duration {
	if f.ReindexDelay == "" {
		return 0
	}
	d, err := time.ParseDuration(f.ReindexDelay)
	if err != nil {
		return 0
	}
	return d
}
