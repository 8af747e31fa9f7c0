// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package snapshot holds immutable captures of the preferences store.
//
// A Snapshot maps domain -> key -> value.Value and records which domains
// could not be read. It is built once with Build and never mutated; every
// accessor returns copies or sorted views so callers cannot change it.
package snapshot

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/prefdiff/internal/value"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrDuplicateKey is matched by DuplicateKeyError via errors.Is.
var ErrDuplicateKey = errors.New("duplicate domain/key pair")

// DuplicateKeyError reports a (domain, key) pair that appeared twice in the
// entries given to Build. The capture source guarantees uniqueness, so this
// is a contract violation rather than a user-facing condition.
type DuplicateKeyError struct {
	Domain string
	Key    string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("snapshot: duplicate key %q in domain %q", e.Key, e.Domain)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Entry is one captured (domain, key, value) triple.
type Entry struct {
	Domain string
	Key    string
	Value  value.Value
}

// Snapshot is an immutable capture of the preferences store.
type Snapshot struct {
	id         string
	capturedAt time.Time
	domains    map[string]map[string]value.Value
	unreadable map[string]struct{}
	keyCount   int
}

// Option configures Build.
type Option func(*Snapshot)

// WithCapturedAt sets the capture timestamp. Defaults to time.Now().
func WithCapturedAt(t time.Time) Option {
	return func(s *Snapshot) {
		s.capturedAt = t
	}
}

// WithID sets the snapshot identifier. Defaults to a random UUID.
func WithID(id string) Option {
	return func(s *Snapshot) {
		s.id = id
	}
}

// Build creates a Snapshot from entries and the set of domains that could
// not be read. Duplicate (domain, key) pairs return a *DuplicateKeyError.
//
// A domain listed as unreadable is unreadable even when entries exist for
// it; those entries are discarded. Domains with no entries are not
// represented at all.
func Build(entries []Entry, unreadable []string, opts ...Option) (*Snapshot, error) {
	s := &Snapshot{
		domains:    make(map[string]map[string]value.Value),
		unreadable: make(map[string]struct{}, len(unreadable)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.capturedAt.IsZero() {
		s.capturedAt = time.Now()
	}

	for _, d := range unreadable {
		s.unreadable[d] = struct{}{}
	}

	for _, e := range entries {
		keys, ok := s.domains[e.Domain]
		if !ok {
			keys = make(map[string]value.Value)
			s.domains[e.Domain] = keys
		}
		if _, dup := keys[e.Key]; dup {
			return nil, &DuplicateKeyError{Domain: e.Domain, Key: e.Key}
		}
		keys[e.Key] = e.Value
	}

	for d := range s.unreadable {
		delete(s.domains, d)
	}
	for _, keys := range s.domains {
		s.keyCount += len(keys)
	}

	return s, nil
}

// MustBuild is like Build but panics on a duplicate key.
func MustBuild(entries []Entry, unreadable []string, opts ...Option) *Snapshot {
	s, err := Build(entries, unreadable, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ID returns the snapshot identifier.
func (s *Snapshot) ID() string { return s.id }

// CapturedAt returns when the snapshot was taken.
func (s *Snapshot) CapturedAt() time.Time { return s.capturedAt }

// DomainCount returns the number of readable domains with at least one key.
func (s *Snapshot) DomainCount() int { return len(s.domains) }

// KeyCount returns the total number of keys across all domains.
func (s *Snapshot) KeyCount() int { return s.keyCount }

// Domains returns the readable domains in lexicographic order.
func (s *Snapshot) Domains() []string {
	out := make([]string, 0, len(s.domains))
	for d := range s.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// HasDomain reports whether domain has at least one key.
func (s *Snapshot) HasDomain(domain string) bool {
	_, ok := s.domains[domain]
	return ok
}

// Keys returns the keys of domain in lexicographic order.
func (s *Snapshot) Keys(domain string) []string {
	keys := s.domains[domain]
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the value stored at domain/key.
func (s *Snapshot) Lookup(domain, key string) (value.Value, bool) {
	v, ok := s.domains[domain][key]
	return v, ok
}

// IsUnreadable reports whether domain could not be read.
func (s *Snapshot) IsUnreadable(domain string) bool {
	_, ok := s.unreadable[domain]
	return ok
}

// Unreadable returns the unreadable domains in lexicographic order.
func (s *Snapshot) Unreadable() []string {
	out := make([]string, 0, len(s.unreadable))
	for d := range s.unreadable {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
