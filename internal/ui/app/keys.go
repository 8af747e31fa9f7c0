// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings of the TUI.
type KeyMap struct {
	Enter   key.Binding
	Up      key.Binding
	Down    key.Binding
	Tab     key.Binding
	Copy    key.Binding
	CopyAll key.Binding
	Export  key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "capture"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("k/up", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/down", "down"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy command"),
		),
		CopyAll: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy all"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// setScreen enables the bindings that do something on the given screen, so
// help only lists those.
func (k *KeyMap) setScreen(s Screen, f Focus) {
	diffView := s == ScreenDiffView
	k.Enter.SetEnabled(s == ScreenInitial || s == ScreenWaiting || s == ScreenError)
	k.Up.SetEnabled(diffView)
	k.Down.SetEnabled(diffView)
	k.Tab.SetEnabled(diffView)
	k.Copy.SetEnabled(diffView && f == FocusDiff)
	k.CopyAll.SetEnabled(diffView)
	k.Export.SetEnabled(diffView)
	k.Reset.SetEnabled(s != ScreenInitial)
	k.Help.SetEnabled(diffView)

	switch s {
	case ScreenWaiting:
		k.Enter.SetHelp("enter", "compare")
	case ScreenError:
		k.Enter.SetHelp("enter", "start over")
	default:
		k.Enter.SetHelp("enter", "capture")
	}
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Up, k.Down, k.Tab, k.Copy, k.Reset, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Tab},
		{k.Copy, k.CopyAll, k.Export},
		{k.Enter, k.Reset, k.Help, k.Quit},
	}
}
