package watch

import (
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Batch lists the watched files that changed during one quiet period, in
// the order they were first touched. The initial run gets an empty batch.
type Batch struct {
	Paths []string
}

// IsInitial reports whether the batch belongs to the initial run.
func (b Batch) IsInitial() bool {
	return len(b.Paths) == 0
}

// Has reports whether path changed in this batch.
func (b Batch) Has(path string) bool {
	if path == "" {
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	return slices.Contains(b.Paths, filepath.Clean(abs))
}

// String names the changed files for status lines.
func (b Batch) String() string {
	if b.IsInitial() {
		return "(initial)"
	}

	names := make([]string, len(b.Paths))
	for i, p := range b.Paths {
		names[i] = filepath.Base(p)
	}

	return strings.Join(names, ", ")
}

// Batcher collects file events and hands them over as one Batch once no
// new event arrived for the configured interval.
type Batcher struct {
	interval time.Duration
	logger   *slog.Logger
	flush    func(Batch)

	mu      sync.Mutex
	timer   *time.Timer
	pending []string
}

// NewBatcher creates a batcher calling flush after interval of quiet.
func NewBatcher(interval time.Duration, logger *slog.Logger, flush func(Batch)) *Batcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Batcher{
		interval: interval,
		logger:   logger,
		flush:    flush,
	}
}

// Add records a change of path and restarts the quiet period.
func (b *Batcher) Add(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if abs, err := filepath.Abs(path); err == nil {
		path = filepath.Clean(abs)
	}

	if !slices.Contains(b.pending, path) {
		b.pending = append(b.pending, path)
	}

	if b.timer != nil {
		b.timer.Stop()
	}

	b.timer = time.AfterFunc(b.interval, b.fire)
}

func (b *Batcher) fire() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("watch run panicked", slog.Any("error", r))
		}
	}()

	b.mu.Lock()
	batch := Batch{Paths: b.pending}
	b.pending = nil
	b.mu.Unlock()

	if batch.IsInitial() {
		return
	}

	b.flush(batch)
}

// Stop cancels any pending flush and drops the collected changes.
func (b *Batcher) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}

	b.pending = nil
}
