// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands of prefdiff.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global and command-specific flags
//   - JSONResponse: Envelope for --json output
//   - ValidationError, ConfigError, CaptureError, PartialError: error
//     categories, each mapped to its own exit code by GetExitCode
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdDiff:
//	    cli.HandleDiff(args)
//	case cli.CmdWatch:
//	    cli.HandleWatch(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - diff: capture, wait for Enter, capture again and print the commands
//   - watch: capture once, then re-diff whenever a preference file changes
//   - config: show, path, init, get, set and keys
//   - doctor: check the defaults tool, config, paths and clipboard
//   - version, help
//
// Mistyped commands, config keys and flags get a "did you mean" hint.
// Running prefdiff without a command starts the TUI in package ui/app.
package cli
