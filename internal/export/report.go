// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"time"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/snapshot"
	"github.com/jeranaias/prefdiff/internal/value"
)

// =============================================================================
// REPORT
// =============================================================================

// SnapshotInfo describes one side of a comparison.
type SnapshotInfo struct {
	ID         string    `json:"id" yaml:"id"`
	CapturedAt time.Time `json:"captured_at" yaml:"captured_at"`
	Domains    int       `json:"domains" yaml:"domains"`
	Keys       int       `json:"keys" yaml:"keys"`
	Unreadable int       `json:"unreadable" yaml:"unreadable"`
}

// Report is everything an exporter renders: the changes, the generated
// commands and where they came from.
type Report struct {
	Changes     *diff.ChangeSet
	Lines       []command.CommandLine
	Skipped     []string // Entries left out by the generator
	Before      SnapshotInfo
	After       SnapshotInfo
	Filter      string
	Policy      string
	GeneratedAt time.Time
}

// NewReport assembles a report. genErr is the error returned by
// command.Generator.Generate; each joined error becomes a Skipped entry.
func NewReport(before, after *snapshot.Snapshot, cs *diff.ChangeSet, lines []command.CommandLine, genErr error) *Report {
	return &Report{
		Changes:     cs,
		Lines:       lines,
		Skipped:     splitErrors(genErr),
		Before:      infoOf(before),
		After:       infoOf(after),
		GeneratedAt: time.Now(),
	}
}

func infoOf(s *snapshot.Snapshot) SnapshotInfo {
	if s == nil {
		return SnapshotInfo{}
	}
	return SnapshotInfo{
		ID:         s.ID(),
		CapturedAt: s.CapturedAt(),
		Domains:    s.DomainCount(),
		Keys:       s.KeyCount(),
		Unreadable: len(s.Unreadable()),
	}
}

func splitErrors(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

// Summary returns the change set summary, or "No changes" for an empty report.
func (r *Report) Summary() string {
	if r.Changes == nil {
		return "No changes"
	}
	return r.Changes.Summary()
}

// lineFor finds the generated command of a key change.
func (r *Report) lineFor(domain, key string) (command.CommandLine, bool) {
	for _, l := range r.Lines {
		if l.Domain == domain && l.Key == key {
			return l, true
		}
	}
	return command.CommandLine{}, false
}

// =============================================================================
// DOCUMENT (JSON / YAML)
// =============================================================================

type document struct {
	Generator   string       `json:"generator" yaml:"generator"`
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
	Summary     string       `json:"summary" yaml:"summary"`
	Filter      string       `json:"filter,omitempty" yaml:"filter,omitempty"`
	Policy      string       `json:"policy,omitempty" yaml:"policy,omitempty"`
	Before      SnapshotInfo `json:"before" yaml:"before"`
	After       SnapshotInfo `json:"after" yaml:"after"`
	Stats       diffStats    `json:"stats" yaml:"stats"`
	Domains     []domainDoc  `json:"domains" yaml:"domains"`
	Warnings    []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Commands    []string     `json:"commands" yaml:"commands"`
	Skipped     []string     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

type diffStats struct {
	Domains  int `json:"domains" yaml:"domains"`
	Added    int `json:"added" yaml:"added"`
	Removed  int `json:"removed" yaml:"removed"`
	Modified int `json:"modified" yaml:"modified"`
}

type domainDoc struct {
	Domain  string      `json:"domain" yaml:"domain"`
	Kind    string      `json:"kind" yaml:"kind"`
	Changes []changeDoc `json:"changes" yaml:"changes"`
}

type changeDoc struct {
	Key      string `json:"key" yaml:"key"`
	Kind     string `json:"kind" yaml:"kind"`
	Type     string `json:"type" yaml:"type"`
	Old      string `json:"old,omitempty" yaml:"old,omitempty"`
	New      string `json:"new,omitempty" yaml:"new,omitempty"`
	Command  string `json:"command,omitempty" yaml:"command,omitempty"`
	Degraded bool   `json:"degraded,omitempty" yaml:"degraded,omitempty"`
	Note     string `json:"note,omitempty" yaml:"note,omitempty"`
}

// ErrNilReport is returned by exporters given a nil report.
var ErrNilReport = errors.New("report is nil")

func buildDocument(r *Report) document {
	doc := document{
		Generator:   "prefdiff",
		GeneratedAt: r.GeneratedAt,
		Summary:     r.Summary(),
		Filter:      r.Filter,
		Policy:      r.Policy,
		Before:      r.Before,
		After:       r.After,
		Domains:     []domainDoc{},
		Commands:    command.Texts(r.Lines),
		Skipped:     r.Skipped,
	}

	if r.Changes == nil {
		return doc
	}

	doc.Stats = diffStats(r.Changes.Stats)
	for _, w := range r.Changes.Warnings {
		doc.Warnings = append(doc.Warnings, w.String())
	}

	for _, dc := range r.Changes.Domains {
		dd := domainDoc{Domain: dc.Domain, Kind: dc.Kind.String()}
		for _, c := range dc.Changes {
			cd := changeDoc{
				Key:  c.Key,
				Kind: c.Kind.String(),
				Type: c.Value().Kind().String(),
			}
			if c.Old != nil {
				cd.Old = value.Format(c.Old)
			}
			if c.New != nil {
				cd.New = value.Format(c.New)
			}
			if l, ok := r.lineFor(dc.Domain, c.Key); ok {
				cd.Command = l.Text
				cd.Degraded = l.Degraded
				cd.Note = l.Note
			}
			dd.Changes = append(dd.Changes, cd)
		}
		doc.Domains = append(doc.Domains, dd)
	}
	return doc
}
