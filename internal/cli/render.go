// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Terminal rendering of command scripts, config files and
// Markdown reports.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/value"
)

// highlight returns code with terminal syntax highlighting for language.
// The input is returned unchanged when colors are off or highlighting fails.
func highlight(code, language string) string {
	if !ColorsEnabled() {
		return code
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// renderMarkdown renders a Markdown document for the terminal, falling back
// to the raw text when colors are off.
func renderMarkdown(content string, width int) string {
	if !ColorsEnabled() {
		return content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

// writeChanges prints a colored listing of a change set, one line per key
// grouped under its domain, followed by the warnings.
func writeChanges(w io.Writer, cs *diff.ChangeSet) {
	for _, dc := range cs.Domains {
		fmt.Fprintf(w, "%s %s\n",
			RenderConditional(SectionStyle, dc.Domain),
			RenderConditional(DimStyle, "("+dc.Kind.String()+")"))
		for _, c := range dc.Changes {
			var val string
			if c.Kind == diff.ChangeModified {
				val = value.Format(c.Old) + " → " + value.Format(c.New)
			} else {
				val = value.Format(c.Value())
			}
			fmt.Fprintf(w, "  %s %s: %s\n", RenderChangeKind(c.Kind), c.Key, val)
		}
	}
	for _, warn := range cs.Warnings {
		fmt.Fprintf(w, "%s %s\n", RenderConditional(WarningStyle, "!"), warn.String())
	}
}
