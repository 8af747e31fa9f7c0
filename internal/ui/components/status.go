// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Auto-dismissing status line shown in the header and status box.
package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/prefdiff/internal/ui/styles"
)

// =============================================================================
// STATUS TYPES
// =============================================================================

// StatusKind represents the type of status message.
type StatusKind int

const (
	// StatusInfo is an informational message (cyan)
	StatusInfo StatusKind = iota
	// StatusSuccess is a success message (emerald)
	StatusSuccess
	// StatusWarning is a warning message (amber)
	StatusWarning
	// StatusError is an error message (rose)
	StatusError
)

// String returns the kind name.
func (k StatusKind) String() string {
	switch k {
	case StatusSuccess:
		return "success"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "info"
	}
}

// StatusDuration is how long a status message stays visible.
const StatusDuration = 3 * time.Second

// =============================================================================
// STATUS MESSAGE
// =============================================================================

// Status is a short message that disappears after Duration.
type Status struct {
	Text      string
	Kind      StatusKind
	CreatedAt time.Time
	Duration  time.Duration
}

// NewStatus creates a status message of the given kind.
func NewStatus(kind StatusKind, text string) *Status {
	return &Status{
		Text:      text,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  StatusDuration,
	}
}

// InfoStatus creates an informational status.
func InfoStatus(text string) *Status { return NewStatus(StatusInfo, text) }

// SuccessStatus creates a success status.
func SuccessStatus(text string) *Status { return NewStatus(StatusSuccess, text) }

// WarningStatus creates a warning status.
func WarningStatus(text string) *Status { return NewStatus(StatusWarning, text) }

// ErrorStatus creates an error status.
func ErrorStatus(text string) *Status { return NewStatus(StatusError, text) }

// IsExpired returns true if the status should no longer be shown.
func (s *Status) IsExpired() bool {
	return s.ExpiredAt(time.Now())
}

// ExpiredAt reports whether the status has expired at the given time.
// A nil status is always expired.
func (s *Status) ExpiredAt(now time.Time) bool {
	if s == nil {
		return true
	}
	return now.Sub(s.CreatedAt) >= s.Duration
}

// TimeRemaining returns how much time is left before the status expires.
func (s *Status) TimeRemaining() time.Duration {
	if s == nil {
		return 0
	}
	remaining := s.Duration - time.Since(s.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Style returns the theme style for the status kind.
func (s *Status) Style(theme *styles.Theme) lipgloss.Style {
	switch s.Kind {
	case StatusSuccess:
		return theme.SuccessStyle
	case StatusWarning:
		return theme.WarningStyle
	case StatusError:
		return theme.ErrorStyle
	default:
		return theme.InfoStyle
	}
}

// Render renders the status text in its kind's color.
func (s *Status) Render(theme *styles.Theme) string {
	if s == nil {
		return ""
	}
	return s.Style(theme).Render(s.Text)
}

// =============================================================================
// STATUS MESSAGES
// =============================================================================

// StatusExpiredMsg is sent when the status created at At should be cleared.
type StatusExpiredMsg struct {
	At time.Time
}

// StatusExpireCmd returns a command that fires once the status has expired.
func StatusExpireCmd(s *Status) tea.Cmd {
	if s == nil {
		return nil
	}
	created := s.CreatedAt
	return tea.Tick(s.Duration, func(time.Time) tea.Msg {
		return StatusExpiredMsg{At: created}
	})
}
