// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/value"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports reports as Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a report to Markdown: a table of changes per domain and
// the commands as a shell code block.
func (e *MarkdownExporter) Export(r *Report) ([]byte, error) {
	if r == nil {
		return nil, ErrNilReport
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString("generator: prefdiff\n")
		sb.WriteString(fmt.Sprintf("generated: %s\n", r.GeneratedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("before: %s\n", escapeYAML(r.Before.ID)))
		sb.WriteString(fmt.Sprintf("after: %s\n", escapeYAML(r.After.ID)))
		if r.Filter != "" {
			sb.WriteString(fmt.Sprintf("filter: %s\n", escapeYAML(r.Filter)))
		}
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# Preference changes\n\n")
	sb.WriteString(fmt.Sprintf("**%s**\n\n", r.Summary()))

	if e.options.IncludeMetadata {
		sb.WriteString("| Snapshot | Captured | Domains | Keys | Unreadable |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, row := range []struct {
			name string
			info SnapshotInfo
		}{{"Before", r.Before}, {"After", r.After}} {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d |\n",
				row.name, formatTimestamp(row.info.CapturedAt), row.info.Domains, row.info.Keys, row.info.Unreadable))
		}
		sb.WriteString("\n")
	}

	if r.Changes != nil {
		for _, dc := range r.Changes.Domains {
			e.writeDomain(&sb, r, dc)
		}

		if len(r.Changes.Warnings) > 0 {
			sb.WriteString("## Warnings\n\n")
			for _, w := range r.Changes.Warnings {
				sb.WriteString("- " + escapeMarkdown(w.String()) + "\n")
			}
			sb.WriteString("\n")
		}
	}

	if len(r.Lines) > 0 {
		sb.WriteString("## Commands\n\n```sh\n")
		for _, l := range r.Lines {
			if l.Degraded {
				sb.WriteString("# degraded: " + l.Note + "\n")
			}
			sb.WriteString(l.Text + "\n")
		}
		sb.WriteString("```\n\n")
	}

	if len(r.Skipped) > 0 {
		sb.WriteString("## Skipped\n\n")
		for _, s := range r.Skipped {
			sb.WriteString("- " + escapeMarkdown(s) + "\n")
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

func (e *MarkdownExporter) writeDomain(sb *strings.Builder, r *Report, dc diff.DomainChange) {
	sb.WriteString(fmt.Sprintf("## %s (%s)\n\n", escapeMarkdown(dc.Domain), dc.Kind))
	sb.WriteString("| | Key | Before | After |\n")
	sb.WriteString("|---|---|---|---|\n")

	for _, c := range dc.Changes {
		marker := c.Kind.Prefix()
		if l, ok := r.lineFor(dc.Domain, c.Key); ok && l.Degraded {
			marker += " (degraded)"
		}
		sb.WriteString(fmt.Sprintf("| %s | `%s` | %s | %s |\n",
			marker, escapeCode(c.Key), cell(c.Old), cell(c.New)))
	}
	sb.WriteString("\n")
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

func cell(v value.Value) string {
	if v == nil {
		return ""
	}
	return "`" + escapeCode(value.Format(v)) + "`"
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeCode keeps inline code spans intact inside a table.
func escapeCode(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes a front matter value when needed.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
