// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package export renders a comparison as a file someone can keep, review or
replay.

A Report bundles the change set with the commands generated for it and the
capture times of both snapshots. Each format is an Exporter:

	sh    executable script, one defaults command per change
	json  every change with its old and new value and its command
	yaml  the json document as YAML
	md    per-domain tables followed by a shell block

Skipped changes (no faithful command) are listed in every format, so a
report never silently drops a change.

	exp, err := export.ForFormat(cfg.Export.Format, export.DefaultOptions())
	path, err := export.ExportToFile(report, exp, opts)
*/
package export
