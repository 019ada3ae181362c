package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc is called for the initial run, with an empty batch, and once per
// batch of changed files.
type RunFunc func(ctx context.Context, changed Batch) (*RunResult, error)

// RunResult summarises a single run for the status line.
type RunResult struct {
	// Documents is the number of documents processed.
	Documents int
	// Pruned is the number of content nodes removed.
	Pruned int
	// Summary describes how the output differs from the previous run.
	Summary string
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the files to watch, e.g. the input document and the config
	// file. Their directories are watched so that atomic replacement by
	// editors is noticed.
	Files []string

	// Debounce is the quiet period before triggering a rerun.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if len(opts.Files) == 0 {
		return fmt.Errorf("no files to watch")
	}

	targets, err := resolveTargets(opts.Files)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range targetDirs(targets) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	doRun(sigCtx, opts, runFn, Batch{})

	batcher := NewBatcher(opts.Debounce, opts.Logger, func(b Batch) {
		doRun(sigCtx, opts, runFn, b)
	})
	defer batcher.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "shutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, targets) {
				continue
			}

			opts.Logger.Debug("file changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			batcher.Add(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, changed Batch) {
	if ctx.Err() != nil {
		return
	}

	now := time.Now().Format("15:04:05")
	trigger := changed.String()

	result, err := runFn(ctx, changed)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d document(s), %d pruned)\n",
		now, trigger, result.Documents, result.Pruned)

	if result.Summary != "" {
		fmt.Fprintf(opts.Out, "  changes: %s\n", result.Summary)
	}
}

// resolveTargets returns the cleaned absolute paths of files.
func resolveTargets(files []string) (map[string]bool, error) {
	targets := make(map[string]bool, len(files))

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", f, err)
		}

		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("watching %q: %w", f, err)
		}

		targets[filepath.Clean(abs)] = true
	}

	return targets, nil
}

// targetDirs returns the distinct directories holding targets.
func targetDirs(targets map[string]bool) []string {
	seen := make(map[string]bool)

	var dirs []string

	for t := range targets {
		dir := filepath.Dir(t)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// isRelevant reports whether event touches one of the targets.
func isRelevant(event fsnotify.Event, targets map[string]bool) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return targets[filepath.Clean(abs)]
}
