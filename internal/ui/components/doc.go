// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the prefdiff TUI.

Each component is styled through a *styles.Theme and built on Bubble Tea and
Lip Gloss.

# Components

Header (header.go) - One-line title bar with the brand, the current screen
and the baseline domain and key counts.

Spinner (spinner.go) - Animated spinner from bubbles/spinner with an elapsed
timer and a capture progress bar ("12/80 domains").

Status (status.go) - Info, success, warning and error messages that expire
after StatusDuration. StatusExpireCmd schedules a StatusExpiredMsg so the
model can clear the message without polling.

# Usage

	theme := styles.NewThemeFor(cfg.UI.Theme)
	spin := components.NewSpinner(theme)
	spin.SetMessage("Capturing defaults")
	cmd := spin.Start()

	status := components.SuccessStatus("Captured 142 domains")
	return m, tea.Batch(cmd, components.StatusExpireCmd(status))
*/
package components
