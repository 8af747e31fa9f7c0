// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/ui/styles"
	"github.com/jeranaias/prefdiff/internal/util"
	"github.com/jeranaias/prefdiff/internal/value"
)

// Minimum pane height, borders included.
const minPaneHeight = 5

// View implements tea.Model.
func (m *Model) View() string {
	m.header.Screen = m.screen.String()

	var body string
	switch m.screen {
	case ScreenInitial:
		body = m.viewInitial()
	case ScreenLoadingFirst, ScreenLoadingSecond:
		body = m.viewLoading()
	case ScreenWaiting:
		body = m.viewWaiting()
	case ScreenDiffView:
		body = m.viewDiff()
	case ScreenError:
		body = m.viewError()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.viewFooter())
}

// contentWidth is the usable width inside the app padding.
func (m *Model) contentWidth() int {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return w
}

// bodyHeight is the height left between header and footer.
func (m *Model) bodyHeight() int {
	h := m.height - 1 - lipgloss.Height(m.viewFooter())
	if h < minPaneHeight {
		h = minPaneHeight
	}
	return h
}

func (m *Model) viewFooter() string {
	return m.theme.Footer.Render(m.help.View(m.keys))
}

// statusLine renders the live status message, or fallback in the given style.
func (m *Model) statusLine(fallback string, style lipgloss.Style) string {
	if s := m.Status(); s != nil {
		return s.Render(m.theme)
	}
	return style.Render(fallback)
}

// box renders lines inside a titled, rounded box of the content width.
func (m *Model) box(title string, lines []string) string {
	content := m.theme.PaneTitle.Render(title) + "\n" + strings.Join(lines, "\n")
	return m.theme.Box.Width(m.contentWidth() - 2).Render(content)
}

// =============================================================================
// SCREENS
// =============================================================================

func (m *Model) viewInitial() string {
	instructions := m.box("Instructions", []string{
		"",
		"  1. Press [Enter] to capture the current defaults snapshot",
		"  2. Make changes in System Settings",
		"  3. Press [Enter] again to capture the second snapshot",
		"  4. View the differences and copy commands",
		"",
		"  Press [q] to quit",
	})
	status := m.statusLine("Ready - Press [Enter] to start", m.theme.SuccessStyle)
	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, instructions, status))
}

func (m *Model) viewLoading() string {
	box := m.theme.LoadingBox.Render(
		m.spinner.View() + "\n\n" + m.theme.Muted.Render("Please wait..."))
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) viewWaiting() string {
	lines := []string{""}

	if before := m.session.Before(); before != nil {
		lines = append(lines, fmt.Sprintf("  %s Captured %s (%s)",
			m.theme.SuccessStyle.Render(styles.StatusIndicators.Success),
			util.Plural(before.DomainCount(), "domain"),
			util.Plural(before.KeyCount(), "key")))
		if n := len(before.Unreadable()); n > 0 {
			lines = append(lines, fmt.Sprintf("  %s %s could not be read",
				m.theme.WarningStyle.Render(styles.StatusIndicators.Warning),
				util.Plural(n, "domain")))
		}
	}

	lines = append(lines,
		"",
		"  Now make changes in System Settings...",
		"",
		"  When ready, press [Enter] to capture the second snapshot",
		"  and detect changes.",
	)

	instructions := m.box("Instructions", lines)
	status := m.statusLine("Waiting for changes - Press [Enter] when ready", m.theme.WarningStyle)
	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, instructions, status))
}

func (m *Model) viewError() string {
	width := m.contentWidth() - 2
	msg := lipgloss.NewStyle().Width(width - 6).Render(m.errMsg)
	box := m.theme.ErrorBox.Width(width).Render(
		m.theme.ErrorTitle.Render(styles.StatusIndicators.Error+" Error") + "\n\n" +
			m.theme.ErrorMessage.Render(msg))
	hint := m.theme.Muted.Render("Press [Enter] or [r] to start over, [q] to quit")
	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, box, hint))
}

// =============================================================================
// DIFF VIEW
// =============================================================================

func (m *Model) viewDiff() string {
	width := m.contentWidth()

	summary := m.statusLine(m.summaryText(), m.theme.InfoStyle)
	parts := []string{summary}

	var below []string
	if m.focus == FocusDiff {
		if preview := m.viewPreview(width); preview != "" {
			below = append(below, preview)
		}
	}
	if warn := m.viewWarnings(width); warn != "" {
		below = append(below, warn)
	}

	used := lipgloss.Height(summary)
	for _, b := range below {
		used += lipgloss.Height(b)
	}
	paneHeight := m.bodyHeight() - used
	if paneHeight < minPaneHeight {
		paneHeight = minPaneHeight
	}

	leftWidth := width * 35 / 100
	rightWidth := width - leftWidth
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewDomains(leftWidth, paneHeight),
		m.viewChanges(rightWidth, paneHeight))

	parts = append(parts, panes)
	parts = append(parts, below...)
	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// summaryText is shown when no status message is active.
func (m *Model) summaryText() string {
	if m.result == nil {
		return "Found 0 changes"
	}
	return m.result.String()
}

func (m *Model) viewDomains(width, height int) string {
	focused := m.focus == FocusDomain
	inner := width - 2
	rows := height - 3 // borders and title

	domains := m.domains()
	start := scrollStart(m.domainIdx, len(domains), rows)

	lines := []string{m.paneTitle(fmt.Sprintf("Domains (%d)", len(domains)), focused)}
	for i := start; i < len(domains) && i < start+rows; i++ {
		dc := domains[i]
		text := util.TruncateWidth(fmt.Sprintf("%s (%d)", dc.Domain, len(dc.Changes)), inner)
		lines = append(lines, m.row(text, i == m.domainIdx, focused, inner, m.theme.Row))
	}

	return m.pane(lines, width, height, focused)
}

func (m *Model) viewChanges(width, height int) string {
	focused := m.focus == FocusDiff
	inner := width - 2
	rows := height - 3

	title := "Changes"
	if focused {
		title = "Changes (y to copy)"
	}
	lines := []string{m.paneTitle(title, focused)}

	dc, ok := m.selectedDomain()
	if ok {
		start := scrollStart(m.changeIdx, len(dc.Changes), rows)
		for i := start; i < len(dc.Changes) && i < start+rows; i++ {
			c := dc.Changes[i]
			text := util.TruncateWidth(m.changeText(c)+m.changeMarker(dc, c), inner)
			lines = append(lines, m.row(text, i == m.changeIdx, focused, inner, m.changeStyle(c.Kind)))
		}
	}

	return m.pane(lines, width, height, focused)
}

// changeText renders "+ key: value" or "~ key: old → new". Narrow layouts
// drop the old value.
func (m *Model) changeText(c diff.KeyChange) string {
	text := c.Kind.Prefix() + " " + c.Key + ": "
	if c.Kind == diff.ChangeModified && m.theme.GetLayoutMode() != styles.LayoutNarrow {
		return text + value.Format(c.Old) + " → " + value.Format(c.New)
	}
	return text + value.Format(c.Value())
}

// changeMarker flags changes whose command is lossy or missing.
func (m *Model) changeMarker(dc diff.DomainChange, c diff.KeyChange) string {
	line, err := m.session.Line(dc, c)
	switch {
	case err != nil:
		return "  [no command]"
	case line.Degraded:
		return "  " + styles.StatusIndicators.Warning
	}
	return ""
}

func (m *Model) changeStyle(kind diff.ChangeKind) lipgloss.Style {
	switch kind {
	case diff.ChangeAdded:
		return m.theme.Added
	case diff.ChangeRemoved:
		return m.theme.Removed
	default:
		return m.theme.Modified
	}
}

func (m *Model) paneTitle(title string, focused bool) string {
	if focused {
		return m.theme.PaneTitleFocused.Render(title)
	}
	return m.theme.PaneTitle.Render(title)
}

// row renders one list entry, highlighted when selected.
func (m *Model) row(text string, selected, focused bool, width int, style lipgloss.Style) string {
	switch {
	case selected && focused:
		return m.theme.RowSelected.Width(width).Render(text)
	case selected:
		return m.theme.RowSelectedBlurred.Width(width).Render(text)
	default:
		return style.Render(text)
	}
}

func (m *Model) pane(lines []string, width, height int, focused bool) string {
	style := m.theme.PaneBlurred
	if focused {
		style = m.theme.PaneFocused
	}
	return style.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

// viewPreview renders the command of the selected change.
func (m *Model) viewPreview(width int) string {
	line, ok, err := m.selectedCommand()
	if !ok {
		return ""
	}
	inner := width - 4

	var lines []string
	lines = append(lines, m.theme.PaneTitleFocused.Render("Command Preview (y to copy)"))
	if err != nil {
		reason := err.Error()
		var shapeErr *command.UnsupportedShapeError
		if errors.As(err, &shapeErr) {
			reason = shapeErr.Reason
		}
		lines = append(lines, m.theme.WarningStyle.Render(util.TruncateWidth("No command: "+reason, inner)))
	} else {
		text := lipgloss.NewStyle().Width(inner - 2).Render(line.Text)
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			m.theme.PreviewPrompt.Render("$ "), m.theme.PreviewText.Render(text)))
		if line.Degraded {
			lines = append(lines, m.theme.Degraded.Render(
				util.TruncateWidth(styles.StatusIndicators.Warning+" "+line.Note, inner)))
		}
	}

	return m.theme.Preview.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// viewWarnings lists domains that could not be compared, on one line.
func (m *Model) viewWarnings(width int) string {
	if m.result == nil || len(m.result.Changes.Warnings) == 0 {
		return ""
	}
	warnings := m.result.Changes.Warnings
	parts := make([]string, 0, len(warnings))
	for _, w := range warnings {
		parts = append(parts, w.String())
	}
	text := fmt.Sprintf("%s %s not compared: %s",
		styles.StatusIndicators.Warning,
		util.Plural(len(warnings), "domain"),
		strings.Join(parts, "; "))
	return m.theme.WarningStyle.Render(util.TruncateWidth(text, width))
}

// scrollStart returns the first visible index that keeps selected in a
// window of rows entries.
func scrollStart(selected, total, rows int) int {
	if rows <= 0 || total <= rows || selected < rows {
		return 0
	}
	start := selected - rows + 1
	if start > total-rows {
		start = total - rows
	}
	return start
}
