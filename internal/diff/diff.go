// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes the changes between two preference snapshots.
package diff

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/prefdiff/internal/snapshot"
	"github.com/jeranaias/prefdiff/internal/value"
)

// =============================================================================
// CHANGE KINDS
// =============================================================================

// ChangeKind is the kind of a single key change.
type ChangeKind int

const (
	// ChangeAdded means the key exists only in the after snapshot
	ChangeAdded ChangeKind = iota
	// ChangeRemoved means the key exists only in the before snapshot
	ChangeRemoved
	// ChangeModified means the key exists in both with different values
	ChangeModified
)

// String returns the string representation of a change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Prefix returns the marker character used when listing this kind.
func (k ChangeKind) Prefix() string {
	switch k {
	case ChangeAdded:
		return "+"
	case ChangeRemoved:
		return "-"
	case ChangeModified:
		return "~"
	default:
		return " "
	}
}

// DomainKind is the kind of a domain-level change.
type DomainKind int

const (
	// DomainAdded means the domain exists only in the after snapshot
	DomainAdded DomainKind = iota
	// DomainRemoved means the domain exists only in the before snapshot
	DomainRemoved
	// DomainModified means the domain exists in both and at least one key changed
	DomainModified
)

// String returns the string representation of a domain kind.
func (k DomainKind) String() string {
	switch k {
	case DomainAdded:
		return "added"
	case DomainRemoved:
		return "removed"
	case DomainModified:
		return "modified"
	default:
		return "unknown"
	}
}

// =============================================================================
// CHANGE RECORDS
// =============================================================================

// KeyChange is one changed key inside a domain.
type KeyChange struct {
	Kind ChangeKind  // Added, Removed or Modified
	Key  string      // Preference key
	Old  value.Value // Before value (nil when added)
	New  value.Value // After value (nil when removed)
}

// Value returns the value that best describes the change: the new value
// for additions and modifications, the old value for removals.
func (c KeyChange) Value() value.Value {
	if c.Kind == ChangeRemoved {
		return c.Old
	}
	return c.New
}

// DomainChange groups the key changes of one domain.
type DomainChange struct {
	Domain  string
	Kind    DomainKind
	Changes []KeyChange // Sorted by key, never empty
}

// Warning reports a domain that could not be compared because it was
// unreadable in at least one snapshot.
type Warning struct {
	Domain string
	Before bool // Unreadable in the before snapshot
	After  bool // Unreadable in the after snapshot
}

// String returns a human-readable description of the warning.
func (w Warning) String() string {
	var where string
	switch {
	case w.Before && w.After:
		where = "both snapshots"
	case w.Before:
		where = "before snapshot"
	default:
		where = "after snapshot"
	}
	return fmt.Sprintf("%s: could not be read in %s, not compared", w.Domain, where)
}

// Stats holds aggregate counts for a ChangeSet.
type Stats struct {
	Domains  int // Number of domain records
	Added    int // Added keys
	Removed  int // Removed keys
	Modified int // Modified keys
}

// ChangeSet is the result of comparing two snapshots.
type ChangeSet struct {
	Domains  []DomainChange // Sorted by domain
	Warnings []Warning      // Sorted by domain
	Stats    Stats
}

// Total returns the number of key changes.
func (cs *ChangeSet) Total() int {
	return cs.Stats.Added + cs.Stats.Removed + cs.Stats.Modified
}

// IsEmpty reports whether the set has no changes and no warnings.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Domains) == 0 && len(cs.Warnings) == 0
}

// =============================================================================
// DIFF COMPUTATION
// =============================================================================

var emptySnapshot = snapshot.MustBuild(nil, nil, snapshot.WithID("empty"), snapshot.WithCapturedAt(time.Unix(0, 0)))

// Compute returns the changes that turn before into after.
//
// Domains and keys are visited in lexicographic order, so the result does
// not depend on how the snapshots were captured. Domains unreadable in
// either snapshot are left out of the records and reported as warnings.
// A nil snapshot is treated as empty.
func Compute(before, after *snapshot.Snapshot) *ChangeSet {
	if before == nil {
		before = emptySnapshot
	}
	if after == nil {
		after = emptySnapshot
	}

	cs := &ChangeSet{
		Warnings: collectWarnings(before, after),
	}

	for _, domain := range mergeSorted(before.Domains(), after.Domains()) {
		if before.IsUnreadable(domain) || after.IsUnreadable(domain) {
			continue
		}

		inBefore := before.HasDomain(domain)
		inAfter := after.HasDomain(domain)

		switch {
		case inAfter && !inBefore:
			dc := DomainChange{Domain: domain, Kind: DomainAdded}
			for _, key := range after.Keys(domain) {
				v, _ := after.Lookup(domain, key)
				dc.Changes = append(dc.Changes, KeyChange{Kind: ChangeAdded, Key: key, New: v})
			}
			cs.Domains = append(cs.Domains, dc)

		case inBefore && !inAfter:
			dc := DomainChange{Domain: domain, Kind: DomainRemoved}
			for _, key := range before.Keys(domain) {
				v, _ := before.Lookup(domain, key)
				dc.Changes = append(dc.Changes, KeyChange{Kind: ChangeRemoved, Key: key, Old: v})
			}
			cs.Domains = append(cs.Domains, dc)

		default:
			if changes := compareDomain(before, after, domain); len(changes) > 0 {
				cs.Domains = append(cs.Domains, DomainChange{
					Domain:  domain,
					Kind:    DomainModified,
					Changes: changes,
				})
			}
		}
	}

	cs.Stats = computeStats(cs.Domains)
	return cs
}

// compareDomain diffs the keys of a domain present in both snapshots.
func compareDomain(before, after *snapshot.Snapshot, domain string) []KeyChange {
	var changes []KeyChange

	for _, key := range mergeSorted(before.Keys(domain), after.Keys(domain)) {
		oldV, inBefore := before.Lookup(domain, key)
		newV, inAfter := after.Lookup(domain, key)

		switch {
		case inAfter && !inBefore:
			changes = append(changes, KeyChange{Kind: ChangeAdded, Key: key, New: newV})
		case inBefore && !inAfter:
			changes = append(changes, KeyChange{Kind: ChangeRemoved, Key: key, Old: oldV})
		case !value.Equal(oldV, newV):
			changes = append(changes, KeyChange{Kind: ChangeModified, Key: key, Old: oldV, New: newV})
		}
	}

	return changes
}

// collectWarnings lists domains unreadable in either snapshot, sorted.
func collectWarnings(before, after *snapshot.Snapshot) []Warning {
	var warnings []Warning
	for _, domain := range mergeSorted(before.Unreadable(), after.Unreadable()) {
		warnings = append(warnings, Warning{
			Domain: domain,
			Before: before.IsUnreadable(domain),
			After:  after.IsUnreadable(domain),
		})
	}
	return warnings
}

// mergeSorted merges two sorted, duplicate-free slices into their sorted union.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func computeStats(domains []DomainChange) Stats {
	stats := Stats{Domains: len(domains)}
	for _, dc := range domains {
		for _, c := range dc.Changes {
			switch c.Kind {
			case ChangeAdded:
				stats.Added++
			case ChangeRemoved:
				stats.Removed++
			case ChangeModified:
				stats.Modified++
			}
		}
	}
	return stats
}

// =============================================================================
// FILTERING
// =============================================================================

// Filter returns a new ChangeSet holding only the key changes for which keep
// returns true. Ordering is preserved, domains left without changes are
// dropped, and warnings are carried over unchanged.
func (cs *ChangeSet) Filter(keep func(DomainChange, KeyChange) bool) *ChangeSet {
	out := &ChangeSet{
		Warnings: append([]Warning(nil), cs.Warnings...),
	}

	for _, dc := range cs.Domains {
		var kept []KeyChange
		for _, c := range dc.Changes {
			if keep(dc, c) {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out.Domains = append(out.Domains, DomainChange{
			Domain:  dc.Domain,
			Kind:    dc.Kind,
			Changes: kept,
		})
	}

	out.Stats = computeStats(out.Domains)
	return out
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatChangeSet returns a plain-text listing of the change set, one line
// per key change grouped under a header per domain.
func FormatChangeSet(cs *ChangeSet) string {
	var sb strings.Builder

	for _, dc := range cs.Domains {
		sb.WriteString(fmt.Sprintf("== %s (%s)\n", dc.Domain, dc.Kind))
		for _, c := range dc.Changes {
			sb.WriteString(c.Kind.Prefix())
			sb.WriteString(" ")
			sb.WriteString(c.Key)
			sb.WriteString(": ")
			switch c.Kind {
			case ChangeModified:
				sb.WriteString(value.Format(c.Old) + " -> " + value.Format(c.New))
			default:
				sb.WriteString(value.Format(c.Value()))
			}
			sb.WriteString("\n")
		}
	}

	for _, w := range cs.Warnings {
		sb.WriteString("! ")
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary returns a human-readable summary of the change set.
func (cs *ChangeSet) Summary() string {
	if cs.Total() == 0 {
		if len(cs.Warnings) > 0 {
			return fmt.Sprintf("No changes (%d unreadable)", len(cs.Warnings))
		}
		return "No changes"
	}

	var parts []string

	domainText := "domain"
	if cs.Stats.Domains != 1 {
		domainText = "domains"
	}
	parts = append(parts, fmt.Sprintf("%d %s", cs.Stats.Domains, domainText))

	if cs.Stats.Added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", cs.Stats.Added))
	}
	if cs.Stats.Removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d", cs.Stats.Removed))
	}
	if cs.Stats.Modified > 0 {
		parts = append(parts, fmt.Sprintf("~%d", cs.Stats.Modified))
	}
	if len(cs.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("(%d unreadable)", len(cs.Warnings)))
	}

	return strings.Join(parts, " ")
}
