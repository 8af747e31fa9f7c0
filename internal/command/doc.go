// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package command renders change sets as replayable defaults commands.
//
// Every added or modified key becomes a write command carrying a type tag
// (-bool, -int, -float, -string, -data, -date, -array, -dict) and every
// removed key becomes a delete command. Arguments are shell-quoted so the
// text can be pasted into a terminal or saved as a script.
//
// Arrays and dictionaries are written with flat syntax when all of their
// elements are scalars. Deeper values are handled by the generator's Policy.
//
// # Key Types
//
//   - Generator: Renders a diff.ChangeSet into command lines
//   - CommandLine: One command with its argv, text and originating change
//   - Policy: Annotate (lossy literal, marked Degraded) or Fail
//   - UnsupportedShapeError: Reported for skipped entries under PolicyFail
//
// # Usage
//
//	gen := command.NewGenerator(command.Options{})
//	lines, err := gen.Generate(cs)
//	if err != nil {
//	    // only returned under PolicyFail; lines holds everything else
//	}
//	fmt.Print(command.Script(lines, "captured by prefdiff"))
package command
