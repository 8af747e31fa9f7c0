// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/jeranaias/prefdiff/internal/session"
	"github.com/jeranaias/prefdiff/internal/snapshot"
)

// =============================================================================
// CAPTURE MESSAGES
// =============================================================================

// Every capture carries the generation it was started in. Results from an
// older generation arrive after a reset and are dropped.

// ProgressMsg reports capture progress.
type ProgressMsg struct {
	Gen   int
	Done  int
	Total int
}

// BaselineCapturedMsg is sent when the first snapshot is complete.
type BaselineCapturedMsg struct {
	Gen      int
	Snapshot *snapshot.Snapshot
	Err      error
}

// ComparedMsg is sent when the second snapshot has been compared.
type ComparedMsg struct {
	Gen    int
	Result *session.Result
	Err    error
}

// =============================================================================
// ACTION MESSAGES
// =============================================================================

// CopiedMsg is sent after writing to the clipboard.
type CopiedMsg struct {
	Count         int    // Commands copied
	Degraded      string // Note of a single degraded command, if any
	DegradedCount int    // Degraded commands among several
	Err           error
}

// ExportedMsg is sent after writing an export file.
type ExportedMsg struct {
	Path string
	Err  error
}
