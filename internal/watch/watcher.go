// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch reports changes to preference files on disk.
//
// Writes from cfprefsd arrive as bursts of create/rename events. The watcher
// collects them per path, waits until a path has been quiet for the debounce
// period, and then hands the batch to a callback no more often than the
// configured minimum interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// =============================================================================
// OPTIONS
// =============================================================================

const (
	// DefaultDebounce is how long a path must be quiet before it is reported.
	DefaultDebounce = 750 * time.Millisecond

	// tick is how often pending paths are checked against the debounce.
	tick = 100 * time.Millisecond
)

// ErrNoPaths is returned when a watcher is created without any directory.
var ErrNoPaths = errors.New("no paths to watch")

// Options configures a Watcher.
type Options struct {
	// Paths are the directories to watch (not recursive).
	Paths []string

	// Debounce is the quiet period per file. Default: DefaultDebounce
	Debounce time.Duration

	// MinInterval is the minimum time between two batches. Zero disables
	// rate limiting.
	MinInterval time.Duration

	// Match selects which files count. Default: IsPreferenceFile
	Match func(path string) bool

	// Logger receives watcher errors. Default: slog.Default()
	Logger *slog.Logger
}

// Batch is a set of files that changed and have since settled.
type Batch struct {
	Paths []string
	At    time.Time
}

// IsPreferenceFile reports whether path names a property list, ignoring the
// lock and temporary files written next to it.
func IsPreferenceFile(path string) bool {
	return strings.HasSuffix(path, ".plist")
}

// =============================================================================
// WATCHER
// =============================================================================

// Watcher turns fsnotify events into debounced, rate limited batches.
type Watcher struct {
	watcher *fsnotify.Watcher
	opts    Options
	limiter *rate.Limiter
	log     *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time // path -> last event time
}

// New creates a watcher on every directory in opts.Paths. Directories that do
// not exist are an error.
func New(opts Options) (*Watcher, error) {
	if len(opts.Paths) == 0 {
		return nil, ErrNoPaths
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Match == nil {
		opts.Match = IsPreferenceFile
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, p := range opts.Paths {
		info, err := os.Stat(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
		if !info.IsDir() {
			fw.Close()
			return nil, fmt.Errorf("watch %s: not a directory", p)
		}
		if err := fw.Add(p); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
	}

	return &Watcher{
		watcher: fw,
		opts:    opts,
		limiter: newLimiter(opts.MinInterval),
		log:     log,
		pending: make(map[string]time.Time),
	}, nil
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Run processes events until ctx is done, calling fn with each settled batch.
// fn runs on the Run goroutine; events that arrive meanwhile are queued for
// the next batch. An error from fn stops Run and is returned.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context, Batch) error) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.record(event, time.Now())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case now := <-ticker.C:
			paths := w.settled(now)
			if len(paths) == 0 {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			if err := fn(ctx, Batch{Paths: paths, At: now}); err != nil {
				return err
			}
		}
	}
}

// record notes an event for a matching file.
func (w *Watcher) record(event fsnotify.Event, at time.Time) {
	if event.Op == fsnotify.Chmod || !w.opts.Match(event.Name) {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = at
	w.mu.Unlock()
}

// settled removes and returns the pending paths that have been quiet for the
// debounce period, sorted.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.opts.Debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
