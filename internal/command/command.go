// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/jeranaias/prefdiff/internal/diff"
)

// DefaultProgram is the command used when Options.Program is empty.
const DefaultProgram = "defaults"

// =============================================================================
// KINDS AND POLICIES
// =============================================================================

// Kind is the kind of a generated command.
type Kind int

const (
	// KindWrite sets a key to a value
	KindWrite Kind = iota
	// KindDelete removes a key
	KindDelete
)

// String returns the defaults verb for the kind.
func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Policy decides what happens to values that flat command syntax cannot
// express, such as an array of dictionaries.
type Policy int

const (
	// PolicyAnnotate emits a best-effort command marked Degraded
	PolicyAnnotate Policy = iota
	// PolicyFail skips the entry and reports an UnsupportedShapeError
	PolicyFail
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyAnnotate:
		return "annotate"
	case PolicyFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name as used in configuration.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "annotate":
		return PolicyAnnotate, nil
	case "fail":
		return PolicyFail, nil
	default:
		return PolicyAnnotate, fmt.Errorf("unknown nested policy %q (want annotate or fail)", s)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnsupportedShape is matched by UnsupportedShapeError via errors.Is.
var ErrUnsupportedShape = errors.New("unsupported value shape")

// UnsupportedShapeError reports a change that was not rendered because its
// value cannot be expressed as a single flat command.
type UnsupportedShapeError struct {
	Domain string
	Key    string
	Path   string // Location of the offending value, "$" for the root
	Reason string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("%s %s: unsupported value shape at %s: %s", e.Domain, e.Key, e.Path, e.Reason)
}

func (e *UnsupportedShapeError) Is(target error) bool {
	return target == ErrUnsupportedShape
}

// =============================================================================
// COMMAND LINE
// =============================================================================

// CommandLine is one generated command together with the change it came from.
type CommandLine struct {
	Kind     Kind
	Domain   string
	Key      string
	Args     []string // argv, program first
	Text     string   // Shell-quoted command line
	Degraded bool     // Value was rendered lossily
	Note     string   // Explanation when Degraded

	DomainKind diff.DomainKind
	Change     diff.KeyChange
}

// =============================================================================
// GENERATOR
// =============================================================================

// Options configures a Generator.
type Options struct {
	// Program is the executable named in each command. Default: "defaults"
	Program string

	// Policy decides how unrepresentable values are handled.
	Policy Policy

	// CurrentHost adds -currentHost so commands target the by-host domain.
	CurrentHost bool
}

// Generator turns change sets into command lines.
type Generator struct {
	opts Options
}

// NewGenerator creates a generator.
func NewGenerator(opts Options) *Generator {
	if opts.Program == "" {
		opts.Program = DefaultProgram
	}
	return &Generator{opts: opts}
}

// Policy returns the generator's nested value policy.
func (g *Generator) Policy() Policy {
	return g.opts.Policy
}

// Generate renders every key change of cs, in order. Added and modified keys
// become write commands and removed keys become delete commands.
//
// With PolicyFail, entries whose value cannot be expressed are left out and
// reported as *UnsupportedShapeError values joined into the returned error;
// the lines for all other entries are still returned.
func (g *Generator) Generate(cs *diff.ChangeSet) ([]CommandLine, error) {
	if cs == nil {
		return nil, nil
	}

	lines := make([]CommandLine, 0, cs.Total())
	var errs []error

	for _, dc := range cs.Domains {
		for _, c := range dc.Changes {
			line, err := g.Line(dc, c)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			lines = append(lines, line)
		}
	}

	return lines, errors.Join(errs...)
}

// Line renders a single key change.
func (g *Generator) Line(dc diff.DomainChange, c diff.KeyChange) (CommandLine, error) {
	line := CommandLine{
		Domain:     dc.Domain,
		Key:        c.Key,
		DomainKind: dc.Kind,
		Change:     c,
	}

	args := []string{g.opts.Program}
	if g.opts.CurrentHost {
		args = append(args, "-currentHost")
	}

	if c.Kind == diff.ChangeRemoved {
		line.Kind = KindDelete
		line.Args = append(args, "delete", dc.Domain, c.Key)
		line.Text = quoteArgs(line.Args)
		return line, nil
	}

	line.Kind = KindWrite
	encoded, problem := encodeValue(c.New)
	if problem != nil {
		if g.opts.Policy == PolicyFail {
			return CommandLine{}, &UnsupportedShapeError{
				Domain: dc.Domain,
				Key:    c.Key,
				Path:   problem.path,
				Reason: problem.reason,
			}
		}
		encoded, line.Note = annotated(c.New, problem)
		line.Degraded = true
	}

	line.Args = append(append(args, "write", dc.Domain, c.Key), encoded...)
	line.Text = quoteArgs(line.Args)
	return line, nil
}

// quoteArgs joins argv into a single shell-safe line.
func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellescape.Quote(a)
	}
	return strings.Join(quoted, " ")
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// Texts returns the command text of each line.
func Texts(lines []CommandLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

// Degraded returns the lines marked Degraded.
func Degraded(lines []CommandLine) []CommandLine {
	var out []CommandLine
	for _, l := range lines {
		if l.Degraded {
			out = append(out, l)
		}
	}
	return out
}

// Script renders lines as a POSIX shell script. Each header line becomes a
// comment, and degraded commands are preceded by a comment with their note.
func Script(lines []CommandLine, header ...string) string {
	var sb strings.Builder

	sb.WriteString("#!/bin/sh\n")
	for _, h := range header {
		for _, hl := range strings.Split(h, "\n") {
			sb.WriteString("# " + hl + "\n")
		}
	}
	if len(header) > 0 {
		sb.WriteString("\n")
	}

	writeCommented(&sb, lines)
	return sb.String()
}

// Commented joins the command texts with newlines, preceding each degraded
// command with a "# degraded:" comment carrying its note.
func Commented(lines []CommandLine) string {
	var sb strings.Builder
	writeCommented(&sb, lines)
	return strings.TrimSuffix(sb.String(), "\n")
}

func writeCommented(sb *strings.Builder, lines []CommandLine) {
	for _, l := range lines {
		if l.Degraded {
			sb.WriteString("# degraded: " + l.Note + "\n")
		}
		sb.WriteString(l.Text)
		sb.WriteString("\n")
	}
}
