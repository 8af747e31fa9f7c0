// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/ui/components"
	"github.com/jeranaias/prefdiff/internal/util"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.header.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ProgressMsg:
		if msg.Gen != m.gen || !m.screen.IsLoading() {
			return m, nil
		}
		m.spinner.SetProgress(msg.Done, msg.Total)
		return m, waitForProgress(m.progress)

	case BaselineCapturedMsg:
		return m.handleBaseline(msg)

	case ComparedMsg:
		return m.handleCompared(msg)

	case CopiedMsg:
		return m.handleCopied(msg)

	case ExportedMsg:
		if msg.Err != nil {
			m.logger.Warn("export failed", "error", msg.Err)
			return m, m.setStatus(components.ErrorStatus("Export failed: " + msg.Err.Error()))
		}
		return m, m.setStatus(components.SuccessStatus("✓ Exported to " + msg.Path))

	case components.StatusExpiredMsg:
		if m.status != nil && m.status.CreatedAt.Equal(msg.At) {
			m.status = nil
		}
		return m, nil
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Reset):
		return m, m.reset()

	case key.Matches(msg, m.keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, m.keys.Up):
		m.moveUp()

	case key.Matches(msg, m.keys.Down):
		m.moveDown()

	case key.Matches(msg, m.keys.Tab):
		m.toggleFocus()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copySelected()

	case key.Matches(msg, m.keys.CopyAll):
		return m, m.copyAll()

	case key.Matches(msg, m.keys.Export):
		return m, m.export()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenInitial:
		return m, m.startCapture(ScreenLoadingFirst)
	case ScreenWaiting:
		return m, m.startCapture(ScreenLoadingSecond)
	case ScreenError:
		return m, m.reset()
	}
	return m, nil
}

// =============================================================================
// NAVIGATION
// =============================================================================

func (m *Model) moveUp() {
	if m.screen != ScreenDiffView {
		return
	}
	switch m.focus {
	case FocusDomain:
		if m.domainIdx > 0 {
			m.domainIdx--
			m.changeIdx = 0
		}
	case FocusDiff:
		if m.changeIdx > 0 {
			m.changeIdx--
		}
	}
}

func (m *Model) moveDown() {
	if m.screen != ScreenDiffView {
		return
	}
	switch m.focus {
	case FocusDomain:
		if m.domainIdx < len(m.domains())-1 {
			m.domainIdx++
			m.changeIdx = 0
		}
	case FocusDiff:
		if dc, ok := m.selectedDomain(); ok && m.changeIdx < len(dc.Changes)-1 {
			m.changeIdx++
		}
	}
}

func (m *Model) toggleFocus() {
	if m.screen != ScreenDiffView {
		return
	}
	if m.focus == FocusDomain {
		m.focus = FocusDiff
	} else {
		m.focus = FocusDomain
	}
	m.keys.setScreen(m.screen, m.focus)
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

// setScreen switches screens and updates the enabled key bindings.
func (m *Model) setScreen(s Screen) {
	m.screen = s
	m.keys.setScreen(s, m.focus)
}

// setStatus replaces the status message and schedules its expiry.
func (m *Model) setStatus(s *components.Status) tea.Cmd {
	m.status = s
	return components.StatusExpireCmd(s)
}

// reset cancels any capture in flight and returns to the initial screen.
func (m *Model) reset() tea.Cmd {
	m.Close()
	m.gen++
	m.progress = nil
	m.spinner.Stop()
	m.session.Reset()

	m.focus = FocusDomain
	m.result = nil
	m.errMsg = ""
	m.domainIdx = 0
	m.changeIdx = 0
	m.header.SetCounts(0, 0)
	m.help.ShowAll = false
	m.setScreen(ScreenInitial)

	m.logger.Debug("session reset")
	return m.setStatus(components.InfoStatus("Reset complete"))
}

// startCapture moves to a loading screen and starts the matching capture.
func (m *Model) startCapture(loading Screen) tea.Cmd {
	m.Close()
	m.gen++
	gen := m.gen

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	progress := make(chan ProgressMsg, 64)
	m.progress = progress

	report := func(done, total int) {
		select {
		case progress <- ProgressMsg{Gen: gen, Done: done, Total: total}:
		default:
		}
	}

	var capture tea.Cmd
	var text string
	if loading == ScreenLoadingFirst {
		text = "Capturing defaults... This may take a few seconds"
		capture = func() tea.Msg {
			defer close(progress)
			snap, err := m.session.CaptureBefore(ctx, report)
			return BaselineCapturedMsg{Gen: gen, Snapshot: snap, Err: err}
		}
	} else {
		text = "Capturing defaults and detecting changes..."
		capture = func() tea.Msg {
			defer close(progress)
			res, err := m.session.CaptureAfter(ctx, report)
			return ComparedMsg{Gen: gen, Result: res, Err: err}
		}
	}

	m.setScreen(loading)
	m.spinner.SetMessage(text)
	return tea.Batch(
		m.spinner.Start(),
		m.setStatus(components.InfoStatus(text)),
		capture,
		waitForProgress(progress),
	)
}

// waitForProgress delivers the next progress report of a capture. It
// returns nil once the capture has finished.
func waitForProgress(ch <-chan ProgressMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return p
	}
}

// finishCapture clears the in-flight capture state.
func (m *Model) finishCapture() {
	m.spinner.Stop()
	m.progress = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) handleBaseline(msg BaselineCapturedMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen {
		return m, nil
	}
	m.finishCapture()

	if msg.Err != nil {
		return m, m.fail(msg.Err)
	}

	snap := msg.Snapshot
	m.header.SetCounts(snap.DomainCount(), snap.KeyCount())
	m.setScreen(ScreenWaiting)
	return m, m.setStatus(components.SuccessStatus(
		fmt.Sprintf("✓ Captured %s successfully", util.Plural(snap.DomainCount(), "domain"))))
}

func (m *Model) handleCompared(msg ComparedMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen {
		return m, nil
	}
	m.finishCapture()

	if msg.Err != nil {
		return m, m.fail(msg.Err)
	}

	m.result = msg.Result
	m.focus = FocusDomain
	m.domainIdx = 0
	m.changeIdx = 0
	m.setScreen(ScreenDiffView)

	if m.result.Err != nil {
		m.logger.Warn("changes without command", "count", m.result.Skipped(), "error", m.result.Err)
	}

	total := m.result.Changes.Total()
	if total == 0 {
		return m, m.setStatus(components.WarningStatus("No changes detected"))
	}
	return m, m.setStatus(components.SuccessStatus("✓ Found " + util.Plural(total, "change")))
}

// fail shows the error screen. Cancellation is not an error: it only
// happens on reset or quit, which already moved on.
func (m *Model) fail(err error) tea.Cmd {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	m.logger.Error("capture failed", "error", err)
	m.errMsg = "Failed to capture snapshot: " + err.Error()
	m.setScreen(ScreenError)
	return nil
}

// =============================================================================
// CLIPBOARD AND EXPORT
// =============================================================================

// copySelected copies the command of the selected change.
func (m *Model) copySelected() tea.Cmd {
	if m.screen != ScreenDiffView || m.focus != FocusDiff {
		return nil
	}
	line, ok, err := m.selectedCommand()
	if !ok {
		return nil
	}
	if err != nil {
		var shapeErr *command.UnsupportedShapeError
		if errors.As(err, &shapeErr) {
			return m.setStatus(components.WarningStatus("No command for this change: " + shapeErr.Reason))
		}
		return m.setStatus(components.WarningStatus("No command for this change: " + err.Error()))
	}

	note := ""
	if line.Degraded {
		note = line.Note
	}
	text := line.Text
	copyFn := m.copy
	return func() tea.Msg {
		return CopiedMsg{Count: 1, Degraded: note, Err: copyFn(text)}
	}
}

// copyAll copies every generated command, one per line, with the note of
// each degraded command as a comment above it.
func (m *Model) copyAll() tea.Cmd {
	if m.screen != ScreenDiffView || m.result == nil {
		return nil
	}
	lines := m.result.Lines
	if len(lines) == 0 {
		return m.setStatus(components.WarningStatus("Nothing to copy"))
	}
	text := command.Commented(lines)
	degraded := len(command.Degraded(lines))
	copyFn := m.copy
	return func() tea.Msg {
		return CopiedMsg{Count: len(lines), DegradedCount: degraded, Err: copyFn(text)}
	}
}

func (m *Model) handleCopied(msg CopiedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("clipboard unavailable", "error", msg.Err)
		return m, m.setStatus(components.ErrorStatus("Clipboard unavailable: " + msg.Err.Error()))
	}
	if msg.Degraded != "" {
		return m, m.setStatus(components.WarningStatus("✓ Command copied (degraded: " + msg.Degraded + ")"))
	}
	if msg.Count == 1 {
		return m, m.setStatus(components.SuccessStatus("✓ Command copied to clipboard"))
	}
	text := fmt.Sprintf("✓ Copied %s to clipboard", util.Plural(msg.Count, "command"))
	if msg.DegradedCount > 0 {
		return m, m.setStatus(components.WarningStatus(fmt.Sprintf("%s (%d degraded)", text, msg.DegradedCount)))
	}
	return m, m.setStatus(components.SuccessStatus(text))
}

// export writes the last comparison to a file.
func (m *Model) export() tea.Cmd {
	if m.screen != ScreenDiffView || m.result == nil {
		return nil
	}
	res := m.result
	exportFn := m.exportFn
	return func() tea.Msg {
		path, err := exportFn(res)
		return ExportedMsg{Path: path, Err: err}
	}
}
