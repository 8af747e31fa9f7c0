// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/jeranaias/prefdiff/internal/capture"
	"github.com/jeranaias/prefdiff/internal/config"
	"github.com/jeranaias/prefdiff/internal/logging"
	"github.com/jeranaias/prefdiff/internal/session"
	"github.com/jeranaias/prefdiff/internal/ui/components"
	"github.com/jeranaias/prefdiff/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

func xmlPlist(t *testing.T, v map[string]interface{}) []byte {
	t.Helper()
	data, err := plist.Marshal(v, plist.XMLFormat)
	require.NoError(t, err)
	return data
}

type fixture struct {
	model  *Model
	reader *capture.StaticReader
	copied []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reader := capture.NewStaticReader(map[string][]byte{
		"com.example.dock": xmlPlist(t, map[string]interface{}{"tilesize": int64(36)}),
	})
	f := &fixture{reader: reader}
	f.model = newModel(reader, func(text string) error {
		f.copied = append(f.copied, text)
		return nil
	})
	return f
}

func newModel(reader capture.Reader, copyFn func(string) error) *Model {
	s := session.New(session.Config{Reader: reader, Logger: logging.Discard()})
	m := New(Options{
		Session: s,
		Config:  config.Default(),
		Logger:  logging.Discard(),
		Theme:   styles.NewThemeFor(styles.ThemeDark),
		Copy:    copyFn,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m
}

// runCmd executes cmd and any batch it returns. Commands that do not finish
// within a short timeout, such as status expiry ticks, are dropped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// step feeds the messages produced by cmd back into the model once.
func step(m *Model, cmd tea.Cmd) {
	for _, msg := range runCmd(cmd) {
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		m.Update(msg)
	}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

// compare runs both captures, applying change between them.
func (f *fixture) compare(t *testing.T, change func()) {
	t.Helper()
	step(f.model, press(f.model, "enter"))
	require.Equal(t, ScreenWaiting, f.model.Screen())
	change()
	step(f.model, press(f.model, "enter"))
	require.Equal(t, ScreenDiffView, f.model.Screen())
}

func (f *fixture) changeDock(t *testing.T) func() {
	return func() {
		f.reader.Set("com.example.dock", xmlPlist(t, map[string]interface{}{
			"tilesize": int64(48),
			"autohide": true,
		}))
	}
}

// =============================================================================
// FLOW TESTS
// =============================================================================

func TestModel_FullFlow(t *testing.T) {
	f := newFixture(t)
	m := f.model
	assert.Equal(t, ScreenInitial, m.Screen())
	assert.Contains(t, m.View(), "Ready - Press [Enter] to start")

	cmd := press(m, "enter")
	assert.Equal(t, ScreenLoadingFirst, m.Screen())
	assert.Contains(t, m.View(), "Capturing defaults")

	step(m, cmd)
	require.Equal(t, ScreenWaiting, m.Screen())
	require.NotNil(t, m.Status())
	assert.Equal(t, "✓ Captured 1 domain successfully", m.Status().Text)
	assert.Contains(t, m.View(), "Captured 1 domain (1 key)")

	f.changeDock(t)()
	cmd = press(m, "enter")
	assert.Equal(t, ScreenLoadingSecond, m.Screen())

	step(m, cmd)
	require.Equal(t, ScreenDiffView, m.Screen())
	require.NotNil(t, m.Result())
	assert.Equal(t, 2, m.Result().Changes.Total())
	assert.Equal(t, "✓ Found 2 changes", m.Status().Text)
	assert.Equal(t, components.StatusSuccess, m.Status().Kind)
}

func TestModel_NoChanges(t *testing.T) {
	f := newFixture(t)
	f.compare(t, func() {})

	require.NotNil(t, f.model.Status())
	assert.Equal(t, "No changes detected", f.model.Status().Text)
	assert.Equal(t, components.StatusWarning, f.model.Status().Kind)
	assert.True(t, f.model.Result().Changes.IsEmpty())
}

func TestModel_Quit(t *testing.T) {
	f := newFixture(t)
	press(f.model, "enter")

	cmd := press(f.model, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Nil(t, f.model.cancel)
}

func TestModel_ResetDropsStaleCapture(t *testing.T) {
	f := newFixture(t)
	m := f.model

	capture := press(m, "enter")
	require.Equal(t, ScreenLoadingFirst, m.Screen())

	press(m, "r")
	assert.Equal(t, ScreenInitial, m.Screen())
	assert.Equal(t, "Reset complete", m.Status().Text)

	step(m, capture)
	assert.Equal(t, ScreenInitial, m.Screen(), "result of a cancelled capture must be ignored")
}

// failingReader cannot list domains.
type failingReader struct{}

func (failingReader) Domains(context.Context) ([]string, error) {
	return nil, errors.New("defaults: command not found")
}

func (failingReader) Export(context.Context, string) ([]byte, error) {
	return nil, errors.New("unreachable")
}

func TestModel_CaptureError(t *testing.T) {
	m := newModel(failingReader{}, nil)

	step(m, press(m, "enter"))
	require.Equal(t, ScreenError, m.Screen())
	assert.Contains(t, m.View(), "Failed to capture snapshot")
	assert.Contains(t, m.View(), "command not found")

	press(m, "enter")
	assert.Equal(t, ScreenInitial, m.Screen())
}

func TestModel_StatusExpiry(t *testing.T) {
	f := newFixture(t)
	m := f.model
	press(m, "enter")
	press(m, "r")

	status := m.Status()
	require.NotNil(t, status)

	m.Update(components.StatusExpiredMsg{At: status.CreatedAt.Add(-time.Second)})
	assert.NotNil(t, m.Status(), "an older expiry must not clear a newer status")

	m.Update(components.StatusExpiredMsg{At: status.CreatedAt})
	assert.Nil(t, m.Status())
}

// =============================================================================
// NAVIGATION TESTS
// =============================================================================

func TestModel_Navigation(t *testing.T) {
	f := newFixture(t)
	f.reader.Set("com.example.finder", xmlPlist(t, map[string]interface{}{"ShowPathbar": false}))
	f.compare(t, func() {
		f.changeDock(t)()
		f.reader.Set("com.example.finder", xmlPlist(t, map[string]interface{}{"ShowPathbar": true}))
	})
	m := f.model

	// Domains are sorted: com.example.dock, com.example.finder
	press(m, "tab", "j")
	d, c := m.Selection()
	assert.Equal(t, 0, d)
	assert.Equal(t, 1, c)

	press(m, "j")
	_, c = m.Selection()
	assert.Equal(t, 1, c, "cursor stops at the last change")

	press(m, "tab", "j")
	d, c = m.Selection()
	assert.Equal(t, 1, d)
	assert.Equal(t, 0, c, "moving between domains resets the change cursor")

	press(m, "j")
	d, _ = m.Selection()
	assert.Equal(t, 1, d)

	press(m, "k", "k")
	d, _ = m.Selection()
	assert.Equal(t, 0, d)
}

func TestModel_NavigationIgnoredOutsideDiffView(t *testing.T) {
	f := newFixture(t)
	press(f.model, "tab", "j")
	assert.Equal(t, FocusDomain, f.model.Focus())
	d, c := f.model.Selection()
	assert.Zero(t, d)
	assert.Zero(t, c)
}

// =============================================================================
// CLIPBOARD AND EXPORT TESTS
// =============================================================================

func TestModel_CopySelected(t *testing.T) {
	f := newFixture(t)
	f.compare(t, f.changeDock(t))
	m := f.model

	assert.Nil(t, press(m, "y"), "copy needs the changes pane focused")

	press(m, "tab")
	step(m, press(m, "y"))
	require.Len(t, f.copied, 1)
	assert.Contains(t, f.copied[0], "defaults write com.example.dock autohide")
	assert.Equal(t, "✓ Command copied to clipboard", m.Status().Text)
}

func TestModel_CopyAll(t *testing.T) {
	f := newFixture(t)
	f.compare(t, f.changeDock(t))

	step(f.model, press(f.model, "Y"))
	require.Len(t, f.copied, 1)
	assert.Len(t, strings.Split(f.copied[0], "\n"), 2)
	assert.Equal(t, "✓ Copied 2 commands to clipboard", f.model.Status().Text)
}

func TestModel_CopyAllIncludesDegradedNotes(t *testing.T) {
	f := newFixture(t)
	f.compare(t, func() {
		f.reader.Set("com.example.dock", xmlPlist(t, map[string]interface{}{
			"tilesize":        int64(48),
			"persistent-apps": []interface{}{map[string]interface{}{"tile-type": "file-tile"}},
		}))
	})

	step(f.model, press(f.model, "Y"))
	require.Len(t, f.copied, 1)
	lines := strings.Split(f.copied[0], "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "# degraded: nested dict at $[0]"), lines[0])
	assert.Contains(t, lines[1], "defaults write com.example.dock persistent-apps")
	assert.Equal(t, "defaults write com.example.dock tilesize -int 48", lines[2])

	require.NotNil(t, f.model.Status())
	assert.Equal(t, components.StatusWarning, f.model.Status().Kind)
	assert.Equal(t, "✓ Copied 2 commands to clipboard (1 degraded)", f.model.Status().Text)
}

func TestModel_CopyFailure(t *testing.T) {
	reader := capture.NewStaticReader(map[string][]byte{
		"com.example.dock": xmlPlist(t, map[string]interface{}{"tilesize": int64(36)}),
	})
	m := newModel(reader, func(string) error { return errors.New("no pbcopy") })

	step(m, press(m, "enter"))
	reader.Set("com.example.dock", xmlPlist(t, map[string]interface{}{"tilesize": int64(48)}))
	step(m, press(m, "enter"))
	require.Equal(t, ScreenDiffView, m.Screen())

	step(m, press(m, "tab", "y"))
	require.NotNil(t, m.Status())
	assert.Equal(t, components.StatusError, m.Status().Kind)
	assert.Contains(t, m.Status().Text, "Clipboard unavailable")
}

func TestModel_Export(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	f.model.cfg.Export.Dir = dir
	f.model.cfg.Export.Format = "json"
	f.compare(t, f.changeDock(t))

	step(f.model, press(f.model, "e"))
	require.NotNil(t, f.model.Status())
	assert.Equal(t, components.StatusSuccess, f.model.Status().Kind)
	assert.Contains(t, f.model.Status().Text, dir)
	assert.True(t, strings.HasSuffix(f.model.Status().Text, ".json"))
}

// =============================================================================
// VIEW TESTS
// =============================================================================

func TestView_DiffPanes(t *testing.T) {
	f := newFixture(t)
	f.compare(t, f.changeDock(t))
	m := f.model

	view := m.View()
	assert.Contains(t, view, "Domains (1)")
	assert.Contains(t, view, "com.example.dock (2)")
	assert.Contains(t, view, "+ autohide: true")
	assert.Contains(t, view, "~ tilesize: 36 → 48")
	assert.NotContains(t, view, "$ defaults")

	press(m, "tab")
	view = m.View()
	assert.Contains(t, view, "Command Preview (y to copy)")
	assert.Contains(t, view, "$ defaults write com.example.dock autohide -bool true")
}

func TestView_NarrowDropsOldValue(t *testing.T) {
	f := newFixture(t)
	f.compare(t, f.changeDock(t))
	f.model.Update(tea.WindowSizeMsg{Width: 58, Height: 30})

	press(f.model, "tab", "j")
	view := f.model.View()
	assert.NotContains(t, view, "→")
	assert.Contains(t, view, "tilesize: 48")
}

func TestView_DegradedCommand(t *testing.T) {
	f := newFixture(t)
	f.compare(t, func() {
		f.reader.Set("com.example.dock", xmlPlist(t, map[string]interface{}{
			"tilesize":   int64(36),
			"persistent": []interface{}{map[string]interface{}{"label": "Mail"}},
		}))
	})

	press(f.model, "tab")
	view := f.model.View()
	assert.Contains(t, view, "+ persistent")
	assert.Contains(t, view, styles.StatusIndicators.Warning)
}

func TestScrollStart(t *testing.T) {
	tests := []struct {
		selected, total, rows, want int
	}{
		{0, 3, 10, 0},
		{5, 20, 10, 0},
		{9, 20, 10, 0},
		{10, 20, 10, 1},
		{19, 20, 10, 10},
		{3, 20, 0, 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, scrollStart(tc.selected, tc.total, tc.rows), "%+v", tc)
	}
}
