package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/screenager/frz/internal/action"
	"github.com/screenager/frz/internal/app"
	"github.com/screenager/frz/internal/cache"
	"github.com/screenager/frz/internal/config"
	"github.com/screenager/frz/internal/fsrow"
	"github.com/screenager/frz/internal/indexer"
	"github.com/screenager/frz/internal/scorer"
	"github.com/screenager/frz/internal/search"
	"github.com/screenager/frz/internal/tui"
	"github.com/screenager/frz/internal/walker"
)

const defaultCacheDir = ".frz"

func main() {
	root := &cobra.Command{
		Use:   "frz",
		Short: "Interactive fuzzy file finder",
		Long:  "frz — a fast, gitignore-aware fuzzy file finder with an incremental index and a typo-tolerant scorer.",
	}

	fileCfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "frz: %v\n", err)
		os.Exit(1)
	}

	var (
		flagRoot               string
		flagInitialQuery       string
		flagTheme              string
		flagHidden             bool
		flagFollowSymlinks     bool
		flagRespectIgnoreFiles bool
		flagGitIgnore          bool
		flagGitGlobal          bool
		flagGitExclude         bool
		flagThreads            int
		flagMaxDepth           int
		flagExtensions         []string
		flagContextLabel       string
		flagGlobalIgnores      []string
		flagNoCache            bool
		flagReindexDelay       string
	)

	root.PersistentFlags().StringVar(&flagRoot, "root", firstNonEmpty(fileCfg.Root, "."), "root directory to search")
	root.PersistentFlags().StringVar(&flagInitialQuery, "initial-query", fileCfg.InitialQuery, "pre-fill the search box")
	root.PersistentFlags().StringVar(&flagTheme, "theme", firstNonEmpty(fileCfg.Theme, "default"), "color theme name")
	root.PersistentFlags().BoolVar(&flagHidden, "hidden", fileCfg.Hidden, "include hidden files and directories")
	root.PersistentFlags().BoolVar(&flagFollowSymlinks, "follow-symlinks", fileCfg.FollowSymlinks, "follow symbolic links while walking")
	root.PersistentFlags().BoolVar(&flagRespectIgnoreFiles, "respect-ignore-files", fileCfg.RespectIgnoreFiles, "honor .ignore/.fdignore files (also required for the --git-* flags)")
	root.PersistentFlags().BoolVar(&flagGitIgnore, "git-ignore", fileCfg.GitIgnore, "honor .gitignore files")
	root.PersistentFlags().BoolVar(&flagGitGlobal, "git-global", fileCfg.GitGlobal, "honor the global gitignore file")
	root.PersistentFlags().BoolVar(&flagGitExclude, "git-exclude", fileCfg.GitExclude, "honor .git/info/exclude")
	root.PersistentFlags().IntVar(&flagThreads, "threads", fileCfg.Threads, "walker worker count (0 = auto)")
	root.PersistentFlags().IntVar(&flagMaxDepth, "max-depth", fileCfg.MaxDepth, "maximum traversal depth (0 = unbounded)")
	root.PersistentFlags().StringSliceVar(&flagExtensions, "extensions", fileCfg.Extensions, "only index these extensions (no dot)")
	root.PersistentFlags().StringVar(&flagContextLabel, "context-label", fileCfg.ContextLabel, "short label shown next to the root path")
	root.PersistentFlags().StringSliceVar(&flagGlobalIgnores, "global-ignores", fileCfg.GlobalIgnores, "base names always pruned (e.g. node_modules)")
	root.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "disable the on-disk index cache")
	root.PersistentFlags().StringVar(&flagReindexDelay, "reindex-delay", fileCfg.ReindexDelay, "delay before a fresh walk on a warm cache (e.g. \"5s\")")

	buildOptions := func() (string, walker.FilesystemOptions) {
		resolvedRoot, err := filepath.Abs(flagRoot)
		if err != nil {
			resolvedRoot = flagRoot
		}

		opts := walker.FilesystemOptions{
			IncludeHidden:      flagHidden,
			FollowSymlinks:     flagFollowSymlinks,
			RespectIgnoreFiles: flagRespectIgnoreFiles,
			GitIgnore:          flagGitIgnore,
			GitGlobal:          flagGitGlobal,
			GitExclude:         flagGitExclude,
			Threads:            flagThreads,
			ContextLabel:       flagContextLabel,
		}
		if flagMaxDepth > 0 {
			d := flagMaxDepth
			opts.MaxDepth = &d
		}
		if len(flagExtensions) > 0 {
			opts.AllowedExtensions = make(map[string]struct{}, len(flagExtensions))
			for _, e := range flagExtensions {
				opts.AllowedExtensions[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
			}
		}
		if len(flagGlobalIgnores) > 0 {
			opts.GlobalIgnores = make(map[string]struct{}, len(flagGlobalIgnores))
			for _, g := range flagGlobalIgnores {
				opts.GlobalIgnores[g] = struct{}{}
			}
		}
		return resolvedRoot, opts
	}

	openCache := func() *cache.Cache {
		if flagNoCache {
			return nil
		}
		if err := os.MkdirAll(defaultCacheDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "frz: cache dir: %v\n", err)
			return nil
		}
		c, err := cache.Open(filepath.Join(defaultCacheDir, "index.db"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "frz: cache open failed, continuing without it: %v\n", err)
			return nil
		}
		return c
	}

	reindexDelay := func() time.Duration {
		return config.File{ReindexDelay: flagReindexDelay}.ReindexDelayDuration()
	}

	// ---- frz (default: launch the interactive TUI) ------------------------
	root.RunE = func(cmd *cobra.Command, args []string) error {
		resolvedRoot, opts := buildOptions()
		if err := validateRoot(resolvedRoot); err != nil {
			return err
		}

		c := openCache()
		if c != nil {
			defer c.Close()
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		state := app.New()
		state.Dataset.Root = resolvedRoot
		state.Dataset.ContextLabel = flagContextLabel
		state.Dataset.InitialQuery = flagInitialQuery

		indexChan := action.NewChan[indexer.View](64)
		searchChan := action.NewChan[search.View](64)
		cancelReg := &action.CancellationRegister{}

		rt := search.NewRuntime(searchChan, cancelReg)
		go rt.Run()

		ix := indexer.New(resolvedRoot, opts, c, reindexDelay())
		indexStop := make(chan struct{})
		go func() {
			if err := ix.Run(ctx, 1, indexChan, indexStop); err != nil {
				fmt.Fprintf(os.Stderr, "frz: indexing: %v\n", err)
			}
		}()
		defer close(indexStop)

		label := flagContextLabel
		if label == "" {
			label = filepath.Base(resolvedRoot)
		}
		m := tui.New(state, indexChan, searchChan, cancelReg, rt, flagInitialQuery, label)

		p := tea.NewProgram(m, tea.WithAltScreen())
		finalModel, err := p.Run()
		if err != nil {
			return err
		}

		return emitOutcome(finalModel.(tui.Model).Outcome())
	}

	// ---- frz query <text> (non-interactive) --------------------------------
	var jsonOutput bool
	queryCmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run a single non-interactive query and print matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolvedRoot, opts := buildOptions()
			if err := validateRoot(resolvedRoot); err != nil {
				return err
			}
			query := strings.Join(args, " ")

			rows, err := collectRows(cmd.Context(), resolvedRoot, opts, openCache(), reindexDelay())
			if err != nil {
				return err
			}

			batch := runOneShotQuery(query, rows)
			return printResults(batch, rows, jsonOutput)
		},
	}
	queryCmd.Flags().BoolVar(&jsonOutput, "json", false, "output matches as JSON")
	root.AddCommand(queryCmd)

	// ---- frz index (non-interactive warm-up; writes the cache) -------------
	root.AddCommand(&cobra.Command{
		Use:   "index",
		Short: "Walk the root once and populate the on-disk cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolvedRoot, opts := buildOptions()
			if err := validateRoot(resolvedRoot); err != nil {
				return err
			}
			c := openCache()
			if c == nil {
				return fmt.Errorf("index: cache is required for this command (remove --no-cache)")
			}
			defer c.Close()

			rows, err := collectRows(cmd.Context(), resolvedRoot, opts, c, reindexDelay())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "\nindexed %d files\n", len(rows))
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func validateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("frz: root %q: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("frz: root %q is not a directory", root)
	}
	return nil
}

// emitOutcome prints the accepted selection (if any) to stdout so a shell
// wrapper can capture it, the way `sift search` prints to stdout while
// status goes to stderr. Exit code stays 0 here: spec.md §6 reserves
// non-zero for configuration/I-O initialization failures, which are
// already returned as errors before the TUI ever runs.
func emitOutcome(out tui.Outcome) error {
	if out.Accepted && out.Selection != nil {
		fmt.Println(out.Selection.Display)
	}
	return nil
}

// collectRows drives a single Indexer pass to completion synchronously,
// printing a progress bar to stderr (grounded on the teacher's
// makeProgressPrinter carriage-return line, translated to
// schollz/progressbar/v3 since that dependency has no other home in
// SPEC_FULL.md's interactive path — the TUI draws its own progress text).
func collectRows(ctx context.Context, root string, opts walker.FilesystemOptions, c *cache.Cache, delay time.Duration) ([]fsrow.Row, error) {
	ix := indexer.New(root, opts, c, delay)
	indexChan := action.NewChan[indexer.View](64)
	stopCh := make(chan struct{})

	bar := progressbar.Default(-1, "indexing")
	view := &barView{bar: bar}

	done := make(chan error, 1)
	go func() { done <- ix.Run(ctx, 1, indexChan, stopCh) }()

	for {
		select {
		case env := <-indexChan.Recv():
			env.Mutate(view)
			if env.Complete {
				close(stopCh)
				err := <-done
				bar.Finish()
				return view.rows, err
			}
		case err := <-done:
			return view.rows, err
		}
	}
}

// barView adapts indexer.View to a schollz/progressbar.
type barView struct {
	bar  *progressbar.ProgressBar
	rows []fsrow.Row
}

func (v *barView) ApplyIndexUpdate(update fsrow.IndexUpdate) {
	switch {
	case update.CachedData != nil:
		v.rows = append([]fsrow.Row(nil), update.CachedData.Rows...)
	case update.Reset:
		v.rows = append([]fsrow.Row(nil), update.Files...)
	case len(update.Files) > 0:
		v.rows = append(v.rows, update.Files...)
	}
	_ = v.bar.Set(update.Progress.IndexedFiles)
}

func runOneShotQuery(query string, rows []fsrow.Row) fsrow.MatchBatch {
	var final fsrow.MatchBatch
	never := func() bool { return false }
	noop := func(fsrow.MatchBatch) {}
	scorer.RunQuery(query, rows, never, noop, func(b fsrow.MatchBatch) { final = b })
	return final
}

func printResults(batch fsrow.MatchBatch, rows []fsrow.Row, jsonOutput bool) error {
	if jsonOutput {
		type jsonRow struct {
			Display string `json:"display"`
			Score   uint16 `json:"score"`
		}
		out := make([]jsonRow, 0, len(batch.Indices))
		for i, idx := range batch.Indices {
			if idx < 0 || idx >= len(rows) {
				continue
			}
			out = append(out, jsonRow{Display: rows[idx].Display, Score: batch.Scores[i]})
		}
		enc, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(enc))
		return nil
	}
	for i, idx := range batch.Indices {
		if idx < 0 || idx >= len(rows) {
			continue
		}
		fmt.Printf("%6d  %s\n", batch.Scores[i], rows[idx].Display)
	}
	return nil
}
