// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the prefdiff TUI.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/prefdiff/internal/ui/styles"
)

const progressBarWidth = 24

// Spinner is the body of the loading screens: an animated line with the
// capture message and elapsed time, then a bar of domains read so far with
// an estimate of the time left.
type Spinner struct {
	spinner spinner.Model
	theme   *styles.Theme
	now     func() time.Time

	message string
	started time.Time
	active  bool

	done, total int
}

// NewSpinner returns an idle spinner.
func NewSpinner(theme *styles.Theme) Spinner {
	return Spinner{
		spinner: spinner.New(spinner.WithSpinner(styles.CaptureSpinner)),
		theme:   theme,
		now:     time.Now,
		message: "Capturing defaults",
	}
}

// SetMessage sets the line shown next to the animation.
func (s *Spinner) SetMessage(msg string) { s.message = msg }

// SetProgress records that done of total domains have been read.
func (s *Spinner) SetProgress(done, total int) {
	s.done, s.total = done, total
}

// Progress returns the last reported counts.
func (s *Spinner) Progress() (done, total int) { return s.done, s.total }

// Start begins a new capture: progress is cleared and the clock restarts.
func (s *Spinner) Start() tea.Cmd {
	s.active = true
	s.started = s.now()
	s.done, s.total = 0, 0
	return s.spinner.Tick
}

// Stop hides the spinner; ticks still in flight are ignored.
func (s *Spinner) Stop() { s.active = false }

// IsActive reports whether a capture is being shown.
func (s *Spinner) IsActive() bool { return s.active }

// Update advances the animation while active.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders nothing while idle.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	elapsed := s.now().Sub(s.started)

	var sb strings.Builder
	sb.WriteString(s.theme.Spinner.Render(s.spinner.View()))
	sb.WriteString(" ")
	sb.WriteString(s.theme.SpinnerText.Render(s.message))
	sb.WriteString(s.theme.SpinnerDetail.Render(" (" + formatElapsed(elapsed) + ")"))

	if s.total > 0 {
		line := fmt.Sprintf("[%s] %s/%s domains",
			styles.ProgressBar(s.done, s.total, progressBarWidth),
			fmtNumber(s.done), fmtNumber(s.total))
		if left, ok := remaining(s.done, s.total, elapsed); ok {
			line += ", about " + formatElapsed(left) + " left"
		}
		sb.WriteString("\n\n")
		sb.WriteString(s.theme.SpinnerDetail.Render(line))
	}
	return sb.String()
}
