// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the prefdiff CLI.
//
// Colors are used when stdout is a terminal, unless NO_COLOR is set or
// --no-color was given. FORCE_COLOR overrides the terminal check so piped
// output can stay colored.

package cli

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsTTY reports whether stdin is a terminal, i.e. whether diff can wait for
// the user to press Enter.
func IsTTY() bool { return isTerminal(os.Stdin) }

// IsStderrTTY reports whether stderr is a terminal. Progress lines are
// redrawn in place only then.
func IsStderrTTY() bool { return isTerminal(os.Stderr) }

// Markdown output is wrapped to the terminal, within these bounds.
const (
	DefaultTerminalWidth = 80
	MinTerminalWidth     = 40
)

// GetTerminalWidth returns the width of stdout, DefaultTerminalWidth when
// it is not a terminal, and never less than MinTerminalWidth.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return max(width, MinTerminalWidth)
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// colorState is decided once, on first use, unless a flag or a test sets it
// earlier.
var colorState struct {
	sync.Mutex
	decided bool
	enabled bool
}

// ColorsEnabled reports whether output should be colored.
func ColorsEnabled() bool {
	colorState.Lock()
	defer colorState.Unlock()
	if !colorState.decided {
		colorState.enabled = colorsFromEnv(os.Getenv, isTerminal(os.Stdout))
		colorState.decided = true
	}
	return colorState.enabled
}

// colorsFromEnv applies the NO_COLOR (https://no-color.org) and FORCE_COLOR
// conventions on top of the terminal check.
func colorsFromEnv(getenv func(string) string, tty bool) bool {
	switch {
	case getenv("NO_COLOR") != "":
		return false
	case getenv("FORCE_COLOR") != "":
		return true
	default:
		return tty
	}
}

// DisableColors turns colors off for the rest of the process (--no-color).
func DisableColors() {
	ForceColorsEnabled(false)
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ForceColorsEnabled overrides detection.
func ForceColorsEnabled(enabled bool) {
	colorState.Lock()
	colorState.enabled = enabled
	colorState.decided = true
	colorState.Unlock()
}

// GetColorProfile returns Ascii when colors are off and the detected
// terminal profile otherwise.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
