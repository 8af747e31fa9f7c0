// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/prefdiff/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the one-line title bar: brand and screen title on the left,
// snapshot counts on the right.
type Header struct {
	Title   string // Brand (default: "prefdiff")
	Screen  string // Current screen title
	Domains int    // Domains in the baseline, 0 hides the counts
	Keys    int    // Keys in the baseline
	Width   int
	theme   *styles.Theme
}

// NewHeader creates a header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "prefdiff",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetCounts updates the baseline counts shown on the right.
func (h *Header) SetCounts(domains, keys int) {
	h.Domains = domains
	h.Keys = keys
}

// View renders the header.
func (h *Header) View() string {
	left := h.theme.HeaderBrand.Render("< "+h.Title+" >")
	if h.Screen != "" {
		left += " " + h.theme.HeaderTitle.Render(h.Screen)
	}

	right := ""
	if h.Domains > 0 {
		right = h.theme.Muted.Render(fmtNumber(h.Domains) + " domains  " + fmtNumber(h.Keys) + " keys")
	}

	// Header style has one column of padding on each side.
	inner := h.Width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Narrow terminals drop the counts first.
		right = ""
		gap = inner - lipgloss.Width(left)
		if gap < 0 {
			gap = 0
		}
	}

	return h.theme.Header.Width(h.Width).MaxWidth(h.Width).Render(left + strings.Repeat(" ", gap) + right)
}
