// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/prefdiff/internal/snapshot"
	"github.com/jeranaias/prefdiff/internal/value"
)

const dock = "com.example.dock"

func build(t *testing.T, unreadable []string, entries ...snapshot.Entry) *snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.Build(entries, unreadable)
	require.NoError(t, err)
	return s
}

func entry(domain, key string, v value.Value) snapshot.Entry {
	return snapshot.Entry{Domain: domain, Key: key, Value: v}
}

func TestCompute_ModifiedInteger(t *testing.T) {
	before := build(t, nil, entry(dock, "tilesize", value.Int(36)))
	after := build(t, nil, entry(dock, "tilesize", value.Int(48)))

	cs := Compute(before, after)

	require.Len(t, cs.Domains, 1)
	dc := cs.Domains[0]
	assert.Equal(t, dock, dc.Domain)
	assert.Equal(t, DomainModified, dc.Kind)
	require.Len(t, dc.Changes, 1)
	assert.Equal(t, ChangeModified, dc.Changes[0].Kind)
	assert.Equal(t, "tilesize", dc.Changes[0].Key)
	assert.True(t, value.Equal(value.Int(36), dc.Changes[0].Old))
	assert.True(t, value.Equal(value.Int(48), dc.Changes[0].New))
	assert.Equal(t, Stats{Domains: 1, Modified: 1}, cs.Stats)
}

func TestCompute_AddedKey(t *testing.T) {
	before := build(t, nil, entry(dock, "tilesize", value.Int(36)))
	after := build(t, nil,
		entry(dock, "tilesize", value.Int(36)),
		entry(dock, "autohide", value.Bool(true)),
	)

	cs := Compute(before, after)

	require.Len(t, cs.Domains, 1)
	require.Len(t, cs.Domains[0].Changes, 1)
	c := cs.Domains[0].Changes[0]
	assert.Equal(t, ChangeAdded, c.Kind)
	assert.Equal(t, "autohide", c.Key)
	assert.Nil(t, c.Old)
	assert.True(t, value.Equal(value.Bool(true), c.New))
}

func TestCompute_RemovedKey(t *testing.T) {
	before := build(t, nil,
		entry(dock, "tilesize", value.Int(36)),
		entry(dock, "legacyFlag", value.String("x")),
	)
	after := build(t, nil, entry(dock, "tilesize", value.Int(36)))

	cs := Compute(before, after)

	require.Len(t, cs.Domains, 1)
	require.Len(t, cs.Domains[0].Changes, 1)
	c := cs.Domains[0].Changes[0]
	assert.Equal(t, ChangeRemoved, c.Kind)
	assert.Equal(t, "legacyFlag", c.Key)
	assert.True(t, value.Equal(value.String("x"), c.Old))
	assert.Nil(t, c.New)
	assert.True(t, value.Equal(value.String("x"), c.Value()))
}

func TestCompute_AddedDomain(t *testing.T) {
	before := build(t, nil, entry(dock, "tilesize", value.Int(36)))
	after := build(t, nil,
		entry(dock, "tilesize", value.Int(36)),
		entry("com.example.newapp", "b", value.Int(2)),
		entry("com.example.newapp", "a", value.Int(1)),
	)

	cs := Compute(before, after)

	require.Len(t, cs.Domains, 1)
	dc := cs.Domains[0]
	assert.Equal(t, "com.example.newapp", dc.Domain)
	assert.Equal(t, DomainAdded, dc.Kind)
	require.Len(t, dc.Changes, 2)
	assert.Equal(t, "a", dc.Changes[0].Key)
	assert.Equal(t, "b", dc.Changes[1].Key)
	for _, c := range dc.Changes {
		assert.Equal(t, ChangeAdded, c.Kind)
	}
}

func TestCompute_RemovedDomain(t *testing.T) {
	before := build(t, nil,
		entry("com.example.gone", "x", value.Int(1)),
		entry("com.example.gone", "y", value.Int(2)),
	)
	after := build(t, nil)

	cs := Compute(before, after)

	require.Len(t, cs.Domains, 1)
	dc := cs.Domains[0]
	assert.Equal(t, DomainRemoved, dc.Kind)
	require.Len(t, dc.Changes, 2)
	for _, c := range dc.Changes {
		assert.Equal(t, ChangeRemoved, c.Kind)
	}
	assert.Equal(t, 2, cs.Stats.Removed)
}

func TestCompute_UnreadableInAfterOnly(t *testing.T) {
	before := build(t, nil,
		entry("com.example.locked", "k", value.Int(1)),
		entry(dock, "tilesize", value.Int(36)),
	)
	after := build(t, []string{"com.example.locked"},
		entry(dock, "tilesize", value.Int(36)),
	)

	cs := Compute(before, after)

	assert.Empty(t, cs.Domains, "unreadable domain must not masquerade as removed")
	require.Len(t, cs.Warnings, 1)
	assert.Equal(t, Warning{Domain: "com.example.locked", After: true}, cs.Warnings[0])
	assert.False(t, cs.IsEmpty())
	assert.Equal(t, 0, cs.Total())
}

func TestCompute_UnreadableRegardlessOfBefore(t *testing.T) {
	after := build(t, []string{"com.example.locked"})

	absent := Compute(build(t, nil), after)
	present := Compute(build(t, nil, entry("com.example.locked", "k", value.Int(1))), after)

	assert.Equal(t, absent.Domains, present.Domains)
	assert.Equal(t, absent.Warnings, present.Warnings)
}

func TestCompute_UnreadableInBeforeOnly(t *testing.T) {
	before := build(t, []string{"com.example.locked"})
	after := build(t, nil, entry("com.example.locked", "k", value.Int(1)))

	cs := Compute(before, after)

	assert.Empty(t, cs.Domains)
	require.Len(t, cs.Warnings, 1)
	assert.Equal(t, Warning{Domain: "com.example.locked", Before: true}, cs.Warnings[0])
}

func TestCompute_Identity(t *testing.T) {
	s := build(t, nil,
		entry(dock, "tilesize", value.Int(36)),
		entry(dock, "apps", value.Array(value.Dict(map[string]value.Value{"label": value.String("Mail")}))),
		entry("NSGlobalDomain", "AppleLocale", value.String("en_US")),
	)

	cs := Compute(s, s)
	assert.True(t, cs.IsEmpty())
	assert.Empty(t, cs.Domains)
	assert.Empty(t, cs.Warnings)
	assert.Equal(t, "No changes", cs.Summary())
}

func TestCompute_IdentityWithUnreadable(t *testing.T) {
	s := build(t, []string{"locked"}, entry(dock, "tilesize", value.Int(36)))

	cs := Compute(s, s)
	assert.Empty(t, cs.Domains)
	require.Len(t, cs.Warnings, 1)
	assert.Equal(t, Warning{Domain: "locked", Before: true, After: true}, cs.Warnings[0])
}

func TestCompute_EqualValuesOmitted(t *testing.T) {
	nested := func() value.Value {
		return value.Dict(map[string]value.Value{
			"b": value.Array(value.Int(1), value.Float(2.5)),
			"a": value.Data([]byte{1}),
		})
	}
	before := build(t, nil, entry(dock, "persistent", nested()))
	after := build(t, nil, entry(dock, "persistent", nested()))

	assert.Empty(t, Compute(before, after).Domains)
}

func TestCompute_CrossKindIsModified(t *testing.T) {
	before := build(t, nil, entry(dock, "k", value.Int(1)))
	after := build(t, nil, entry(dock, "k", value.Float(1)))

	cs := Compute(before, after)
	require.Len(t, cs.Domains, 1)
	assert.Equal(t, ChangeModified, cs.Domains[0].Changes[0].Kind)
}

func TestCompute_NilSnapshots(t *testing.T) {
	after := build(t, nil, entry(dock, "k", value.Int(1)))

	cs := Compute(nil, after)
	require.Len(t, cs.Domains, 1)
	assert.Equal(t, DomainAdded, cs.Domains[0].Kind)

	assert.True(t, Compute(nil, nil).IsEmpty())
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	before := build(t, nil, entry(dock, "a", value.Int(1)))
	after := build(t, nil, entry(dock, "a", value.Int(2)), entry(dock, "b", value.Int(3)))

	Compute(before, after)

	assert.Equal(t, []string{"a"}, before.Keys(dock))
	assert.Equal(t, []string{"a", "b"}, after.Keys(dock))
}

// randomEntries builds a deterministic pseudo-random population of entries.
func randomEntries(seed int64, domains, keys int) []snapshot.Entry {
	r := rand.New(rand.NewSource(seed))
	var entries []snapshot.Entry
	for d := 0; d < domains; d++ {
		for k := 0; k < keys; k++ {
			if r.Intn(3) == 0 {
				continue
			}
			entries = append(entries, snapshot.Entry{
				Domain: "com.example.d" + string(rune('a'+d)),
				Key:    "key" + string(rune('a'+k)),
				Value:  value.Int(int64(r.Intn(4))),
			})
		}
	}
	return entries
}

func shuffled(seed int64, entries []snapshot.Entry) []snapshot.Entry {
	out := append([]snapshot.Entry(nil), entries...)
	rand.New(rand.NewSource(seed)).Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func TestCompute_DeterministicAcrossInsertionOrder(t *testing.T) {
	beforeEntries := randomEntries(1, 8, 10)
	afterEntries := randomEntries(2, 8, 10)

	first := Compute(
		snapshot.MustBuild(beforeEntries, nil),
		snapshot.MustBuild(afterEntries, nil),
	)
	second := Compute(
		snapshot.MustBuild(shuffled(3, beforeEntries), nil),
		snapshot.MustBuild(shuffled(4, afterEntries), nil),
	)

	assert.Equal(t, first, second)
	assert.Equal(t, FormatChangeSet(first), FormatChangeSet(second))
}

func TestCompute_Ordering(t *testing.T) {
	cs := Compute(
		snapshot.MustBuild(randomEntries(5, 10, 12), nil),
		snapshot.MustBuild(randomEntries(6, 10, 12), nil),
	)
	require.NotEmpty(t, cs.Domains)

	domains := make([]string, len(cs.Domains))
	for i, dc := range cs.Domains {
		domains[i] = dc.Domain
		require.NotEmpty(t, dc.Changes)

		keys := make([]string, len(dc.Changes))
		for j, c := range dc.Changes {
			keys[j] = c.Key
		}
		assert.True(t, sort.StringsAreSorted(keys), "keys of %s not sorted: %v", dc.Domain, keys)
	}
	assert.True(t, sort.StringsAreSorted(domains))
}

func TestCompute_CoverageOfModifiedKeys(t *testing.T) {
	before := snapshot.MustBuild(randomEntries(7, 6, 8), nil)
	after := snapshot.MustBuild(randomEntries(8, 6, 8), nil)
	cs := Compute(before, after)

	seen := map[string]int{}
	for _, dc := range cs.Domains {
		for _, c := range dc.Changes {
			if c.Kind != ChangeModified {
				continue
			}
			seen[dc.Domain+"/"+c.Key]++
			oldV, _ := before.Lookup(dc.Domain, c.Key)
			newV, _ := after.Lookup(dc.Domain, c.Key)
			assert.True(t, value.Equal(oldV, c.Old))
			assert.True(t, value.Equal(newV, c.New))
		}
	}

	for _, domain := range before.Domains() {
		for _, key := range before.Keys(domain) {
			oldV, _ := before.Lookup(domain, key)
			newV, ok := after.Lookup(domain, key)
			if !ok {
				continue
			}
			want := 0
			if !value.Equal(oldV, newV) {
				want = 1
			}
			assert.Equal(t, want, seen[domain+"/"+key], "%s/%s", domain, key)
		}
	}
}

func TestChangeKind_String(t *testing.T) {
	tests := []struct {
		kind     ChangeKind
		expected string
		prefix   string
	}{
		{ChangeAdded, "added", "+"},
		{ChangeRemoved, "removed", "-"},
		{ChangeModified, "modified", "~"},
		{ChangeKind(42), "unknown", " "},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.kind.String())
		assert.Equal(t, tt.prefix, tt.kind.Prefix())
	}
}

func TestDomainKind_String(t *testing.T) {
	assert.Equal(t, "added", DomainAdded.String())
	assert.Equal(t, "removed", DomainRemoved.String())
	assert.Equal(t, "modified", DomainModified.String())
	assert.Equal(t, "unknown", DomainKind(9).String())
}

func TestFilter(t *testing.T) {
	before := build(t, []string{"locked"},
		entry("a.domain", "k1", value.Int(1)),
		entry("b.domain", "k1", value.Int(1)),
	)
	after := build(t, nil,
		entry("a.domain", "k1", value.Int(2)),
		entry("a.domain", "k2", value.Int(2)),
		entry("b.domain", "k1", value.Int(2)),
	)
	cs := Compute(before, after)
	require.Equal(t, 3, cs.Total())

	filtered := cs.Filter(func(dc DomainChange, c KeyChange) bool {
		return dc.Domain == "a.domain" && c.Kind == ChangeAdded
	})

	require.Len(t, filtered.Domains, 1)
	assert.Equal(t, "a.domain", filtered.Domains[0].Domain)
	require.Len(t, filtered.Domains[0].Changes, 1)
	assert.Equal(t, "k2", filtered.Domains[0].Changes[0].Key)
	assert.Equal(t, Stats{Domains: 1, Added: 1}, filtered.Stats)
	assert.Equal(t, cs.Warnings, filtered.Warnings)

	assert.Equal(t, 3, cs.Total(), "filter must not modify the receiver")
}

func TestFormatChangeSet(t *testing.T) {
	before := build(t, []string{"locked"},
		entry(dock, "tilesize", value.Int(36)),
		entry(dock, "legacyFlag", value.String("x")),
	)
	after := build(t, nil,
		entry(dock, "tilesize", value.Int(48)),
		entry(dock, "autohide", value.Bool(true)),
	)

	got := FormatChangeSet(Compute(before, after))
	want := strings.Join([]string{
		"== com.example.dock (modified)",
		"+ autohide: true",
		`- legacyFlag: "x"`,
		"~ tilesize: 36 -> 48",
		"! locked: could not be read in before snapshot, not compared",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestSummary(t *testing.T) {
	before := build(t, nil,
		entry(dock, "tilesize", value.Int(36)),
		entry(dock, "legacyFlag", value.String("x")),
	)
	after := build(t, []string{"locked"},
		entry(dock, "tilesize", value.Int(48)),
		entry(dock, "autohide", value.Bool(true)),
		entry("com.example.newapp", "a", value.Int(1)),
	)

	assert.Equal(t, "2 domains +2 -1 ~1 (1 unreadable)", Compute(before, after).Summary())

	onlyWarnings := Compute(build(t, nil), build(t, []string{"locked"}))
	assert.Equal(t, "No changes (1 unreadable)", onlyWarnings.Summary())
}

func TestWarning_String(t *testing.T) {
	assert.Equal(t, "d: could not be read in both snapshots, not compared",
		Warning{Domain: "d", Before: true, After: true}.String())
	assert.Equal(t, "d: could not be read in after snapshot, not compared",
		Warning{Domain: "d", After: true}.String())
}

func TestMergeSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d"}, mergeSorted([]string{"a", "c"}, []string{"b", "c", "d"}))
	assert.Equal(t, []string{"a"}, mergeSorted(nil, []string{"a"}))
	assert.Empty(t, mergeSorted(nil, nil))
}
