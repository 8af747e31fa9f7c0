// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes the changes between two preference snapshots.
//
// Compute is a pure function: it never mutates its inputs, has no error
// path, and always produces the same ChangeSet for structurally equal
// snapshots. Domains are emitted in lexicographic order and keys within a
// domain in lexicographic order.
//
// # Key Types
//
//   - ChangeKind: Kind of a key change (added, removed, modified)
//   - DomainKind: Kind of a domain record (added, removed, modified)
//   - KeyChange: One changed key with its old and new value
//   - DomainChange: All key changes of one domain
//   - Warning: A domain that could not be compared
//   - ChangeSet: Complete result with records, warnings and stats
//
// # Usage
//
// Compute a change set between two snapshots:
//
//	cs := diff.Compute(before, after)
//	fmt.Println(cs.Summary())
//	fmt.Print(diff.FormatChangeSet(cs))
//
// Keep only changes outside a domain:
//
//	cs = cs.Filter(func(dc diff.DomainChange, _ diff.KeyChange) bool {
//	    return dc.Domain != "com.apple.spaces"
//	})
package diff
