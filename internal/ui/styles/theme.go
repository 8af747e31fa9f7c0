// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the prefdiff TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewThemeFor. They match the ui.theme config values.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeAuto  = "auto"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Compact drops blank lines and box padding.
	Compact bool

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App lipgloss.Style
	Box lipgloss.Style

	// ==========================================================================
	// HEADER AND FOOTER STYLES
	// ==========================================================================

	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	HeaderBrand  lipgloss.Style
	Footer       lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// PANE STYLES
	// ==========================================================================

	PaneFocused        lipgloss.Style
	PaneBlurred        lipgloss.Style
	PaneTitle          lipgloss.Style
	PaneTitleFocused   lipgloss.Style
	Row                lipgloss.Style
	RowSelected        lipgloss.Style
	RowSelectedBlurred lipgloss.Style

	// ==========================================================================
	// CHANGE STYLES
	// ==========================================================================

	Added    lipgloss.Style
	Removed  lipgloss.Style
	Modified lipgloss.Style
	OldValue lipgloss.Style
	Degraded lipgloss.Style

	// ==========================================================================
	// COMMAND PREVIEW STYLES
	// ==========================================================================

	Preview       lipgloss.Style
	PreviewPrompt lipgloss.Style
	PreviewText   lipgloss.Style

	// ==========================================================================
	// LOADING STYLES
	// ==========================================================================

	LoadingBox    lipgloss.Style
	Spinner       lipgloss.Style
	SpinnerText   lipgloss.Style
	SpinnerDetail lipgloss.Style

	// ==========================================================================
	// ERROR BOX STYLES
	// ==========================================================================

	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	Muted        lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	ErrorStyle   lipgloss.Style
}

// NewTheme creates a theme that follows the terminal background.
func NewTheme() *Theme {
	return NewThemeFor(ThemeAuto)
}

// NewThemeFor creates a theme for a ui.theme value. Unknown names behave
// like "auto".
func NewThemeFor(name string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch name {
	case ThemeDark:
		isDark = true
	case ThemeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	// AdaptiveColor reads the background flag from lipgloss.
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
		Width:        80,
		Height:       24,
	}

	t.initStyles()
	return t
}

// SetCompact switches the dense layout on or off.
func (t *Theme) SetCompact(compact bool) {
	t.Compact = compact
	t.initStyles()
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	padding := 1
	if t.Compact {
		padding = 0
	}

	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Box = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, padding)

	// Header and footer
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Panes
	t.PaneFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan)

	t.PaneBlurred = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.PaneTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.PaneTitleFocused = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Row = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.RowSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true)

	t.RowSelectedBlurred = lipgloss.NewStyle().
		Foreground(Cyan).
		Background(SelectionBg).
		Bold(true)

	// Changes
	t.Added = lipgloss.NewStyle().Foreground(Emerald)
	t.Removed = lipgloss.NewStyle().Foreground(Rose)
	t.Modified = lipgloss.NewStyle().Foreground(Amber)
	t.OldValue = lipgloss.NewStyle().Foreground(TextMuted)
	t.Degraded = lipgloss.NewStyle().Foreground(Amber).Bold(true)

	// Command preview
	t.Preview = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)

	t.PreviewPrompt = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.PreviewText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	// Loading
	t.LoadingBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Padding(padding, 2)

	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
	t.SpinnerText = lipgloss.NewStyle().Foreground(TextSecondary)
	t.SpinnerDetail = lipgloss.NewStyle().Foreground(TextMuted)

	// Error box
	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(padding, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	// Status
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
	t.SuccessStyle = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
