// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the prefdiff TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

	Purple  - Spinner and header brand
	Cyan    - Focus ring, selected rows, info status
	Emerald - Added keys and success status
	Rose    - Removed keys and errors
	Amber   - Modified keys, warnings and degraded commands

Surface and text colors (SurfaceDim, Overlay, TextPrimary, TextSecondary,
TextMuted, TextInverse) layer the panes. StatusIndicators pair each status
color with a symbol so messages stay readable without color.

# Theme System (theme.go)

NewThemeFor takes the ui.theme config value ("dark", "light" or "auto") and
sets the lipgloss background flag accordingly:

	theme := styles.NewThemeFor(cfg.UI.Theme)
	theme.SetCompact(cfg.UI.Compact)
	theme.SetSize(msg.Width, msg.Height)
	if theme.GetLayoutMode() == styles.LayoutNarrow {
		// hide old values of modified keys
	}

# Progress (progress.go)

CaptureSpinner is the frame set of the loading screens and ProgressBar
draws "n of m domains read" as an ASCII bar.
*/
package styles
