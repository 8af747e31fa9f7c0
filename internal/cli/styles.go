// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Styles for line-oriented CLI output.
//
// The CLI shares the TUI palette so a change is the same color in
// "prefdiff diff" and in the interactive view. Rendering goes through
// RenderConditional, which drops styling when colors are off (terminal.go).

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	// TitleStyle heads a command's output.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan)

	// SectionStyle heads one domain.
	SectionStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary)

	// LabelStyle aligns "label: value" listings such as config show.
	LabelStyle = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(labelWidth)

	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Emerald)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)
	WarningStyle = lipgloss.NewStyle().Foreground(styles.Amber)

	// DimStyle is for hints, old values and anything secondary.
	DimStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)

	separatorStyle = lipgloss.NewStyle().Foreground(styles.Overlay)
)

const (
	labelWidth     = 24
	separatorWidth = 60
)

// RenderSeparator returns a rule of width columns, or the default width
// when width is not positive.
func RenderSeparator(width int) string {
	if width <= 0 {
		width = separatorWidth
	}
	return RenderConditional(separatorStyle, strings.Repeat("─", width))
}

// RenderLabel pads label to the label column. Without colors only the
// padding is kept.
func RenderLabel(label string) string {
	if !ColorsEnabled() {
		return lipgloss.NewStyle().Width(labelWidth).Render(label)
	}
	return LabelStyle.Render(label)
}

// changeKindStyle maps a change kind to its color: added green, removed
// red, modified amber.
func changeKindStyle(k diff.ChangeKind) lipgloss.Style {
	switch k {
	case diff.ChangeAdded:
		return SuccessStyle
	case diff.ChangeRemoved:
		return ErrorStyle
	default:
		return WarningStyle
	}
}

// RenderChangeKind renders the +/-/~ marker of a change.
func RenderChangeKind(k diff.ChangeKind) string {
	return RenderConditional(changeKindStyle(k), k.Prefix())
}

// RenderConditional applies style only when colors are enabled.
func RenderConditional(style lipgloss.Style, text string) string {
	if !ColorsEnabled() {
		return text
	}
	return style.Render(text)
}
