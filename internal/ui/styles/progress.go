// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// CaptureSpinner is the frame set shown while domains are being read. It
// stays ASCII so it renders on any terminal font.
var CaptureSpinner = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    time.Second / 10,
}

// Progress bar glyphs. A cell that is partly done shows one of
// progressPartial, in increasing order of completion.
const (
	progressFull  = "#"
	progressEmpty = "-"
)

var progressPartial = []string{".", ":", "+"}

// ProgressBar draws done out of total as a bar of width cells. Counts
// outside [0, total] are clamped; a zero total draws an empty bar.
func ProgressBar(done, total, width int) string {
	if width <= 0 {
		return ""
	}
	if total <= 0 {
		return strings.Repeat(progressEmpty, width)
	}
	done = min(max(done, 0), total)

	steps := len(progressPartial) + 1
	units := done * width * steps / total
	full, part := units/steps, units%steps

	var sb strings.Builder
	sb.Grow(width)
	sb.WriteString(strings.Repeat(progressFull, full))
	if part > 0 {
		sb.WriteString(progressPartial[part-1])
		full++
	}
	sb.WriteString(strings.Repeat(progressEmpty, width-full))
	return sb.String()
}
