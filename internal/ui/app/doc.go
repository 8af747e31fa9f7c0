// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app implements the interactive prefdiff TUI as a Bubble Tea model.
//
// The model walks through the screens of one comparison:
//
//	Initial -> LoadingFirst -> Waiting -> LoadingSecond -> DiffView
//
// with Error reachable from either loading screen. Captures run as tea.Cmd
// against a session.Session and report progress through a channel; each
// capture carries a generation number so results that arrive after a reset
// are dropped.
//
// # Key Types
//
//   - Model: the tea.Model; create it with New
//   - Screen, Focus: current step and focused pane
//   - KeyMap: bubbles/key bindings, enabled per screen so help lists only
//     the keys that do something
//
// # Usage
//
//	m := app.New(app.Options{Session: s, Config: cfg, Logger: logger})
//	defer m.Close()
//	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
package app
