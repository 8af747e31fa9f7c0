// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/config"
	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/export"
	"github.com/jeranaias/prefdiff/internal/session"
	"github.com/jeranaias/prefdiff/internal/ui/components"
	"github.com/jeranaias/prefdiff/internal/ui/styles"
	"github.com/jeranaias/prefdiff/internal/util"
)

// =============================================================================
// SCREENS AND FOCUS
// =============================================================================

// Screen is the current step of the comparison.
type Screen int

const (
	// ScreenInitial waits for the first Enter.
	ScreenInitial Screen = iota
	// ScreenLoadingFirst captures the baseline.
	ScreenLoadingFirst
	// ScreenWaiting has a baseline and waits for the user to change settings.
	ScreenWaiting
	// ScreenLoadingSecond captures the second snapshot and compares.
	ScreenLoadingSecond
	// ScreenDiffView shows the changes.
	ScreenDiffView
	// ScreenError shows a capture failure.
	ScreenError
)

// String returns the screen title shown in the header.
func (s Screen) String() string {
	switch s {
	case ScreenInitial:
		return "macOS settings diff"
	case ScreenLoadingFirst, ScreenLoadingSecond:
		return "Capturing"
	case ScreenWaiting:
		return "Baseline captured"
	case ScreenDiffView:
		return "Diff View"
	case ScreenError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsLoading reports whether a capture is in progress.
func (s Screen) IsLoading() bool {
	return s == ScreenLoadingFirst || s == ScreenLoadingSecond
}

// Focus is the pane that receives navigation keys in the diff view.
type Focus int

const (
	FocusDomain Focus = iota
	FocusDiff
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Model.
type Options struct {
	Session *session.Session
	Config  *config.Config

	// Logger receives UI diagnostics. Default: slog.Default()
	Logger *slog.Logger

	// Theme defaults to styles.NewThemeFor(Config.UI.Theme).
	Theme *styles.Theme

	// Copy writes text to the clipboard. Default: clipboard.WriteAll
	Copy func(text string) error

	// Export writes a report file and returns its path. Default: writes
	// Config.Export.Format into Config.Export.Dir.
	Export func(res *session.Result) (string, error)
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the TUI.
type Model struct {
	session *session.Session
	cfg     *config.Config
	logger  *slog.Logger

	theme   *styles.Theme
	keys    KeyMap
	help    help.Model
	header  *components.Header
	spinner components.Spinner

	screen Screen
	focus  Focus
	status *components.Status
	errMsg string

	result    *session.Result
	domainIdx int
	changeIdx int

	// Capture in flight
	gen      int
	cancel   context.CancelFunc
	progress chan ProgressMsg

	width  int
	height int

	copy     func(text string) error
	exportFn func(res *session.Result) (string, error)
}

// New creates the TUI model.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewThemeFor(cfg.UI.Theme)
		theme.SetCompact(cfg.UI.Compact)
	}

	m := &Model{
		session:  opts.Session,
		cfg:      cfg,
		logger:   logger,
		theme:    theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		header:   components.NewHeader(theme),
		spinner:  components.NewSpinner(theme),
		copy:     opts.Copy,
		exportFn: opts.Export,
		width:    theme.Width,
		height:   theme.Height,
	}
	if m.copy == nil {
		m.copy = clipboard.WriteAll
	}
	if m.exportFn == nil {
		m.exportFn = m.exportReport
	}

	m.help.Styles.ShortKey = theme.ShortcutKey
	m.help.Styles.ShortDesc = theme.ShortcutDesc
	m.help.Styles.FullKey = theme.ShortcutKey
	m.help.Styles.FullDesc = theme.ShortcutDesc
	m.keys.setScreen(m.screen, m.focus)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Screen returns the current screen.
func (m *Model) Screen() Screen { return m.screen }

// Focus returns the focused pane.
func (m *Model) Focus() Focus { return m.focus }

// Status returns the current status message, or nil once it has expired.
func (m *Model) Status() *components.Status {
	if m.status.IsExpired() {
		return nil
	}
	return m.status
}

// Result returns the last comparison, or nil.
func (m *Model) Result() *session.Result { return m.result }

// Selection returns the selected domain and change indexes.
func (m *Model) Selection() (domain, change int) { return m.domainIdx, m.changeIdx }

// Close cancels a capture in flight.
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// =============================================================================
// SELECTION
// =============================================================================

// domains returns the changed domains of the last comparison.
func (m *Model) domains() []diff.DomainChange {
	if m.result == nil {
		return nil
	}
	return m.result.Changes.Domains
}

// selectedDomain returns the domain under the cursor.
func (m *Model) selectedDomain() (diff.DomainChange, bool) {
	domains := m.domains()
	if m.domainIdx < 0 || m.domainIdx >= len(domains) {
		return diff.DomainChange{}, false
	}
	return domains[m.domainIdx], true
}

// selectedChange returns the change under the cursor in the changes pane.
func (m *Model) selectedChange() (diff.DomainChange, diff.KeyChange, bool) {
	dc, ok := m.selectedDomain()
	if !ok || m.changeIdx < 0 || m.changeIdx >= len(dc.Changes) {
		return diff.DomainChange{}, diff.KeyChange{}, false
	}
	return dc, dc.Changes[m.changeIdx], true
}

// selectedCommand renders the command for the selected change.
// ok is false when nothing is selected.
func (m *Model) selectedCommand() (line command.CommandLine, ok bool, err error) {
	dc, c, ok := m.selectedChange()
	if !ok {
		return command.CommandLine{}, false, nil
	}
	line, err = m.session.Line(dc, c)
	return line, true, err
}

// =============================================================================
// EXPORT
// =============================================================================

// exportReport writes the result in the configured format and directory.
func (m *Model) exportReport(res *session.Result) (string, error) {
	opts := &export.Options{
		OutputDir:       util.ExpandHome(m.cfg.Export.Dir),
		IncludeMetadata: true,
	}
	exporter, err := export.ForFormat(m.cfg.Export.Format, opts)
	if err != nil {
		return "", err
	}
	return export.ExportToFile(res.Report(), exporter, opts)
}
