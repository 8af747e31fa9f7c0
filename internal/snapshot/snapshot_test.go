// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/prefdiff/internal/value"
)

func TestBuild_Basic(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s, err := Build([]Entry{
		{Domain: "com.example.dock", Key: "tilesize", Value: value.Int(36)},
		{Domain: "com.example.dock", Key: "autohide", Value: value.Bool(false)},
		{Domain: "NSGlobalDomain", Key: "AppleLocale", Value: value.String("en_US")},
	}, nil, WithCapturedAt(at), WithID("before"))
	require.NoError(t, err)

	assert.Equal(t, "before", s.ID())
	assert.Equal(t, at, s.CapturedAt())
	assert.Equal(t, 2, s.DomainCount())
	assert.Equal(t, 3, s.KeyCount())
	assert.Equal(t, []string{"NSGlobalDomain", "com.example.dock"}, s.Domains())
	assert.Equal(t, []string{"autohide", "tilesize"}, s.Keys("com.example.dock"))
	assert.Empty(t, s.Keys("missing"))

	v, ok := s.Lookup("com.example.dock", "tilesize")
	require.True(t, ok)
	assert.True(t, value.Equal(value.Int(36), v))

	_, ok = s.Lookup("com.example.dock", "nope")
	assert.False(t, ok)
}

func TestBuild_DefaultsIDAndTime(t *testing.T) {
	s := MustBuild(nil, nil)
	assert.NotEmpty(t, s.ID())
	assert.False(t, s.CapturedAt().IsZero())

	other := MustBuild(nil, nil)
	assert.NotEqual(t, s.ID(), other.ID())
}

func TestBuild_DuplicateKey(t *testing.T) {
	_, err := Build([]Entry{
		{Domain: "d", Key: "k", Value: value.Int(1)},
		{Domain: "d", Key: "k", Value: value.Int(2)},
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	var dup *DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "d", dup.Domain)
	assert.Equal(t, "k", dup.Key)
}

func TestBuild_SameKeyDifferentDomains(t *testing.T) {
	_, err := Build([]Entry{
		{Domain: "a", Key: "k", Value: value.Int(1)},
		{Domain: "b", Key: "k", Value: value.Int(1)},
	}, nil)
	assert.NoError(t, err)
}

func TestMustBuild_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustBuild([]Entry{
			{Domain: "d", Key: "k", Value: value.Int(1)},
			{Domain: "d", Key: "k", Value: value.Int(1)},
		}, nil)
	})
}

func TestBuild_Unreadable(t *testing.T) {
	s := MustBuild([]Entry{
		{Domain: "ok", Key: "k", Value: value.Int(1)},
		{Domain: "locked", Key: "k", Value: value.Int(1)},
	}, []string{"zeta", "locked"})

	assert.Equal(t, []string{"locked", "zeta"}, s.Unreadable())
	assert.True(t, s.IsUnreadable("locked"))
	assert.False(t, s.HasDomain("locked"), "entries for unreadable domains are discarded")
	assert.Equal(t, []string{"ok"}, s.Domains())
	assert.Equal(t, 1, s.KeyCount())
}

func TestDomainsAreCaseSensitive(t *testing.T) {
	s := MustBuild([]Entry{
		{Domain: "com.Example", Key: "k", Value: value.Int(1)},
		{Domain: "com.example", Key: "k", Value: value.Int(1)},
	}, nil)
	assert.Equal(t, []string{"com.Example", "com.example"}, s.Domains())
}
