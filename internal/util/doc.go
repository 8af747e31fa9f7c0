// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds helpers needed by more than one prefdiff package.
//
//   - TruncateWidth, PadRight, StringWidth: display-width text for TUI panes
//   - Plural, FirstLine: status line text
//   - ExpandHome: configured paths such as export.dir
//   - WriteFileAtomic: exported reports and saved configuration
//
// Example:
//
//	row := util.TruncateWidth(domain+" (3)", 30)
//	err := util.WriteFileAtomic(path, script, 0o755)
package util
