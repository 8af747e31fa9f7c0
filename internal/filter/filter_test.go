// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package filter

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/snapshot"
	"github.com/jeranaias/prefdiff/internal/value"
)

func changeSet(t *testing.T) *diff.ChangeSet {
	t.Helper()
	before, err := snapshot.Build([]snapshot.Entry{
		{Domain: "com.example.dock", Key: "tilesize", Value: value.Int(36)},
		{Domain: "com.example.dock", Key: "legacyFlag", Value: value.String("x")},
	}, nil)
	require.NoError(t, err)

	after, err := snapshot.Build([]snapshot.Entry{
		{Domain: "com.example.dock", Key: "tilesize", Value: value.Int(48)},
		{Domain: "com.example.dock", Key: "autohide", Value: value.Bool(true)},
		{Domain: "com.apple.spaces", Key: "SpacesDisplayConfiguration", Value: value.Dict(nil)},
		{Domain: "com.apple.finder", Key: "NSWindow Frame Main", Value: value.String("0 0 800 600")},
	}, nil)
	require.NoError(t, err)

	return diff.Compute(before, after)
}

func keys(cs *diff.ChangeSet) []string {
	var out []string
	for _, dc := range cs.Domains {
		for _, c := range dc.Changes {
			out = append(out, dc.Domain+" "+c.Key)
		}
	}
	return out
}

func TestCompile_EmptyKeepsAll(t *testing.T) {
	f, err := Compile("  ")
	require.NoError(t, err)

	cs := changeSet(t)
	assert.Same(t, cs, f.Apply(cs))
	assert.Empty(t, f.Expression())
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`domain ==`)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       []string
	}{
		{
			name:       "exclude domain",
			expression: `domain != "com.apple.spaces"`,
			want: []string{
				"com.apple.finder NSWindow Frame Main",
				"com.example.dock autohide",
				"com.example.dock legacyFlag",
				"com.example.dock tilesize",
			},
		},
		{
			name:       "by kind",
			expression: `kind == "removed"`,
			want:       []string{"com.example.dock legacyFlag"},
		},
		{
			name:       "by value type",
			expression: `type == "int" || type == "bool"`,
			want:       []string{"com.example.dock autohide", "com.example.dock tilesize"},
		},
		{
			name:       "key prefix",
			expression: `!(key startsWith "NSWindow")`,
			want: []string{
				"com.apple.spaces SpacesDisplayConfiguration",
				"com.example.dock autohide",
				"com.example.dock legacyFlag",
				"com.example.dock tilesize",
			},
		},
		{
			name:       "domain kind",
			expression: `domainKind == "modified"`,
			want: []string{
				"com.example.dock autohide",
				"com.example.dock legacyFlag",
				"com.example.dock tilesize",
			},
		},
		{
			name:       "display value",
			expression: `value == "48"`,
			want:       []string{"com.example.dock tilesize"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(f.Apply(changeSet(t))))
		})
	}
}

func TestKeep_NonBooleanKeepsChange(t *testing.T) {
	var buf bytes.Buffer
	f, err := Compile(`key`, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)

	cs := changeSet(t)
	assert.Equal(t, cs.Total(), f.Apply(cs).Total())
	assert.Contains(t, buf.String(), "non-boolean")
}

func TestKeep_RuntimeErrorKeepsChange(t *testing.T) {
	var buf bytes.Buffer
	f, err := Compile(`int(key) > 0`, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)

	dc := diff.DomainChange{Domain: "d", Kind: diff.DomainAdded}
	c := diff.KeyChange{Kind: diff.ChangeAdded, Key: "not-a-number", New: value.Int(1)}

	assert.True(t, f.Keep(dc, c))
	assert.Contains(t, buf.String(), "evaluation failed")
}

func TestNilFilter(t *testing.T) {
	var f *Filter
	cs := changeSet(t)
	assert.Same(t, cs, f.Apply(cs))
	assert.True(t, f.Keep(diff.DomainChange{}, diff.KeyChange{}))
}
