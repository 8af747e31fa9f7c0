// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/prefdiff/internal/capture"
	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/config"
	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/export"
	"github.com/jeranaias/prefdiff/internal/filter"
	"github.com/jeranaias/prefdiff/internal/snapshot"
)

// ErrNoBaseline is returned when comparing before a first snapshot exists.
var ErrNoBaseline = errors.New("no baseline snapshot captured")

// =============================================================================
// CONFIG
// =============================================================================

// Config holds the parts a Session is assembled from.
type Config struct {
	// Reader lists and exports preference domains.
	Reader capture.Reader

	// Capture configures selection and concurrency. Progress is set per call.
	Capture capture.Options

	// Filter drops changes before commands are generated. Nil keeps all.
	Filter *filter.Filter

	// Generator renders commands. Default: command.NewGenerator(command.Options{})
	Generator *command.Generator

	// Logger receives capture and filter diagnostics. Default: slog.Default()
	Logger *slog.Logger
}

// FromConfig builds a Session that reads the live preference store with
// the settings in cfg.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	policy, err := command.ParsePolicy(cfg.Commands.NestedPolicy)
	if err != nil {
		return nil, err
	}
	f, err := filter.Compile(cfg.Commands.Filter, filter.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return New(Config{
		Reader: capture.NewDefaultsReader(cfg.Capture.Program, cfg.Capture.Timeout(), cfg.Capture.CurrentHost),
		Capture: capture.Options{
			Concurrency: cfg.Capture.Concurrency,
			Include:     cfg.Capture.Include,
			Exclude:     cfg.Capture.Exclude,
			Logger:      logger,
		},
		Filter: f,
		Generator: command.NewGenerator(command.Options{
			Program:     cfg.Commands.Program,
			Policy:      policy,
			CurrentHost: cfg.Capture.CurrentHost,
		}),
		Logger: logger,
	}), nil
}

// =============================================================================
// SESSION
// =============================================================================

// Session tracks the snapshots of one comparison.
type Session struct {
	mu sync.Mutex

	id        string
	startTime time.Time
	cfg       Config

	before *snapshot.Snapshot
	last   *Result
}

// New creates a session.
func New(cfg Config) *Session {
	if cfg.Generator == nil {
		cfg.Generator = command.NewGenerator(command.Options{})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Capture.Logger == nil {
		cfg.Capture.Logger = cfg.Logger
	}
	return &Session{
		id:        uuid.NewString(),
		startTime: time.Now(),
		cfg:       cfg,
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Before returns the baseline snapshot, or nil.
func (s *Session) Before() *snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.before
}

// Last returns the most recent comparison, or nil.
func (s *Session) Last() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Reset forgets both snapshots.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.before = nil
	s.last = nil
}

// Advance makes the after snapshot of the last comparison the new baseline,
// so that the next comparison shows only what changed since. Domains that
// could not be read in the after snapshot keep their baseline state, so a
// change made while a domain was unreadable is reported once it reads again.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return
	}
	next, err := carryForward(s.last.Before, s.last.After)
	if err != nil {
		s.cfg.Logger.Warn("baseline not advanced", "error", err)
		return
	}
	s.before = next
}

// carryForward returns after with each of its unreadable domains replaced by
// that domain's state in prev: its keys, its absence, or its own
// unreadability.
func carryForward(prev, after *snapshot.Snapshot) (*snapshot.Snapshot, error) {
	unreadable := after.Unreadable()
	if prev == nil || len(unreadable) == 0 {
		return after, nil
	}

	var entries []snapshot.Entry
	var stillUnreadable []string
	add := func(snap *snapshot.Snapshot, domain string) {
		for _, k := range snap.Keys(domain) {
			v, _ := snap.Lookup(domain, k)
			entries = append(entries, snapshot.Entry{Domain: domain, Key: k, Value: v})
		}
	}

	for _, d := range after.Domains() {
		add(after, d)
	}
	for _, d := range unreadable {
		switch {
		case prev.HasDomain(d):
			add(prev, d)
		case prev.IsUnreadable(d):
			stillUnreadable = append(stillUnreadable, d)
		}
	}

	return snapshot.Build(entries, stillUnreadable,
		snapshot.WithID(after.ID()), snapshot.WithCapturedAt(after.CapturedAt()))
}

// =============================================================================
// CAPTURE AND COMPARE
// =============================================================================

// Snapshot captures the preference store without changing session state.
func (s *Session) Snapshot(ctx context.Context, progress func(done, total int)) (*snapshot.Snapshot, error) {
	opts := s.cfg.Capture
	opts.Progress = progress
	return capture.Capture(ctx, s.cfg.Reader, opts)
}

// CaptureBefore captures the baseline snapshot.
func (s *Session) CaptureBefore(ctx context.Context, progress func(done, total int)) (*snapshot.Snapshot, error) {
	snap, err := s.Snapshot(ctx, progress)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.before = snap
	s.last = nil
	s.mu.Unlock()

	s.cfg.Logger.Info("baseline captured",
		"snapshot", snap.ID(),
		"domains", snap.DomainCount(),
		"keys", snap.KeyCount(),
		"unreadable", len(snap.Unreadable()))
	return snap, nil
}

// CaptureAfter captures a second snapshot and compares it with the baseline.
func (s *Session) CaptureAfter(ctx context.Context, progress func(done, total int)) (*Result, error) {
	before := s.Before()
	if before == nil {
		return nil, ErrNoBaseline
	}

	after, err := s.Snapshot(ctx, progress)
	if err != nil {
		return nil, err
	}

	res := s.Compare(before, after)

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	s.cfg.Logger.Info("comparison finished",
		"before", before.ID(),
		"after", after.ID(),
		"changes", res.Changes.Total(),
		"warnings", len(res.Changes.Warnings),
		"commands", len(res.Lines))
	return res, nil
}

// Compare diffs two snapshots, applies the filter and generates commands.
func (s *Session) Compare(before, after *snapshot.Snapshot) *Result {
	cs := diff.Compute(before, after)
	total := cs.Total()
	cs = s.cfg.Filter.Apply(cs)
	if dropped := total - cs.Total(); dropped > 0 {
		s.cfg.Logger.Debug("changes filtered out", "dropped", dropped, "filter", s.cfg.Filter.Expression())
	}

	lines, genErr := s.cfg.Generator.Generate(cs)
	return &Result{
		Before:  before,
		After:   after,
		Changes: cs,
		Lines:   lines,
		Err:     genErr,
		filter:  s.cfg.Filter.Expression(),
		policy:  s.cfg.Generator.Policy().String(),
	}
}

// Line renders the command for a single change, as Generate would.
func (s *Session) Line(dc diff.DomainChange, c diff.KeyChange) (command.CommandLine, error) {
	return s.cfg.Generator.Line(dc, c)
}

// =============================================================================
// RESULT
// =============================================================================

// Result is one comparison and its commands.
type Result struct {
	Before  *snapshot.Snapshot
	After   *snapshot.Snapshot
	Changes *diff.ChangeSet
	Lines   []command.CommandLine

	// Err joins one *command.UnsupportedShapeError per change left out of
	// Lines. Nil when every change produced a command.
	Err error

	filter string
	policy string
}

// Skipped returns the number of changes that have no command.
func (r *Result) Skipped() int {
	return r.Changes.Total() - len(r.Lines)
}

// Report assembles an export report for the result.
func (r *Result) Report() *export.Report {
	rep := export.NewReport(r.Before, r.After, r.Changes, r.Lines, r.Err)
	rep.Filter = r.filter
	rep.Policy = r.policy
	return rep
}

// String returns a one-line summary.
func (r *Result) String() string {
	s := r.Changes.Summary()
	if n := r.Skipped(); n > 0 {
		s += fmt.Sprintf(" (%d without command)", n)
	}
	return s
}
