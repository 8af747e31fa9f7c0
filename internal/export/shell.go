// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"time"

	"github.com/jeranaias/prefdiff/internal/command"
)

// ShellExporter exports the generated commands as a shell script.
type ShellExporter struct {
	options *Options
}

// NewShellExporter creates a new shell script exporter.
func NewShellExporter(opts *Options) *ShellExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &ShellExporter{options: opts}
}

// Export renders the report's commands. The header comment lists the
// summary, the snapshots and any entries that were skipped.
func (e *ShellExporter) Export(r *Report) ([]byte, error) {
	if r == nil {
		return nil, ErrNilReport
	}

	header := []string{"Preference changes recorded by prefdiff", r.Summary()}
	if e.options.IncludeMetadata {
		header = append(header,
			fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339)),
			fmt.Sprintf("Before: %s (%s)", r.Before.ID, formatTimestamp(r.Before.CapturedAt)),
			fmt.Sprintf("After:  %s (%s)", r.After.ID, formatTimestamp(r.After.CapturedAt)),
		)
		if r.Filter != "" {
			header = append(header, "Filter: "+r.Filter)
		}
	}
	if r.Changes != nil {
		for _, w := range r.Changes.Warnings {
			header = append(header, "warning: "+w.String())
		}
	}
	for _, s := range r.Skipped {
		header = append(header, "skipped: "+s)
	}

	return []byte(command.Script(r.Lines, header...)), nil
}

// FileExtension returns the file extension for shell scripts.
func (e *ShellExporter) FileExtension() string {
	return ".sh"
}

// MimeType returns the MIME type for shell scripts.
func (e *ShellExporter) MimeType() string {
	return "application/x-sh"
}
