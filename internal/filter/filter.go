// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter selects key changes with expr-lang expressions.
//
// An expression is evaluated once per key change and keeps the change when
// it yields true. The environment holds:
//
//	domain      domain name
//	key         key name
//	kind        "added", "removed" or "modified"
//	domainKind  kind of the domain record, same values as kind
//	type        kind of the new value ("int", "dict", ...), old value for removals
//	value       display form of the new value, old value for removals
//
// Example: domain != "com.apple.spaces" && !(key startsWith "NSWindow Frame")
//
// A change is never dropped because of a broken expression: evaluation
// errors and non-boolean results keep the change and are logged.
package filter

import (
	"fmt"
	"log/slog"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/value"
)

// Filter is a compiled filter expression. The zero value and a nil
// *Filter keep everything.
type Filter struct {
	expression string
	program    *exprvm.Program
	log        *slog.Logger
}

// Option configures Compile.
type Option func(*Filter)

// WithLogger sets the logger for evaluation problems.
func WithLogger(l *slog.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.log = l
		}
	}
}

// Compile parses expression. An empty or blank expression keeps all changes.
func Compile(expression string, opts ...Option) (*Filter, error) {
	f := &Filter{expression: strings.TrimSpace(expression), log: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.expression == "" {
		return f, nil
	}

	program, err := exprlang.Compile(f.expression,
		exprlang.Env(environment(diff.DomainChange{}, diff.KeyChange{})),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", f.expression, err)
	}
	f.program = program
	return f, nil
}

// Expression returns the source expression.
func (f *Filter) Expression() string {
	if f == nil {
		return ""
	}
	return f.expression
}

// Keep reports whether a change passes the filter.
func (f *Filter) Keep(dc diff.DomainChange, c diff.KeyChange) bool {
	if f == nil || f.program == nil {
		return true
	}

	out, err := exprlang.Run(f.program, environment(dc, c))
	if err != nil {
		f.log.Warn("filter evaluation failed, keeping change",
			"expression", f.expression, "domain", dc.Domain, "key", c.Key, "error", err)
		return true
	}

	keep, ok := out.(bool)
	if !ok {
		f.log.Warn("filter returned a non-boolean, keeping change",
			"expression", f.expression, "domain", dc.Domain, "key", c.Key, "result", fmt.Sprintf("%v", out))
		return true
	}
	return keep
}

// Apply returns a filtered copy of cs.
func (f *Filter) Apply(cs *diff.ChangeSet) *diff.ChangeSet {
	if cs == nil || f == nil || f.program == nil {
		return cs
	}
	return cs.Filter(f.Keep)
}

func environment(dc diff.DomainChange, c diff.KeyChange) map[string]any {
	env := map[string]any{
		"domain":     dc.Domain,
		"key":        c.Key,
		"kind":       c.Kind.String(),
		"domainKind": dc.Kind.String(),
		"type":       "",
		"value":      "",
	}
	if v := c.Value(); v != nil {
		env["type"] = v.Kind().String()
		env["value"] = value.Format(v)
	}
	return env
}
