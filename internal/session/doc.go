// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs one before/after comparison of the preference store.
//
// A Session owns the capture pipeline (reader, include/exclude globs,
// concurrency), the change filter and the command generator, and keeps the
// snapshots taken so far. The TUI, the diff command and the watch command
// all drive the same Session.
//
// # Key Types
//
//   - Session: Captures snapshots and compares them
//   - Result: One comparison with its generated commands
//
// # Usage
//
// Capture, let the user change something, capture again:
//
//	s, err := session.FromConfig(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	if _, err := s.CaptureBefore(ctx, nil); err != nil {
//	    return err
//	}
//	// ... wait for the user ...
//	res, err := s.CaptureAfter(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(command.Script(res.Lines))
package session
