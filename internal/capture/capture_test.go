// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capture

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/jeranaias/prefdiff/internal/value"
)

func xmlPlist(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := plist.Marshal(v, plist.XMLFormat)
	require.NoError(t, err)
	return data
}

// =============================================================================
// DECODE
// =============================================================================

func TestDecode_AllKinds(t *testing.T) {
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	data := xmlPlist(t, map[string]interface{}{
		"flag":   true,
		"count":  int64(-3),
		"size":   uint64(48),
		"ratio":  1.5,
		"name":   "Dock",
		"blob":   []byte{0xde, 0xad},
		"when":   date,
		"list":   []interface{}{int64(1), "a"},
		"nested": map[string]interface{}{"x": false},
	})

	values, err := Decode(data)
	require.NoError(t, err)

	assert.True(t, value.Equal(value.Bool(true), values["flag"]))
	assert.True(t, value.Equal(value.Int(-3), values["count"]))
	assert.True(t, value.Equal(value.Int(48), values["size"]))
	assert.True(t, value.Equal(value.Float(1.5), values["ratio"]))
	assert.True(t, value.Equal(value.String("Dock"), values["name"]))
	assert.True(t, value.Equal(value.Data([]byte{0xde, 0xad}), values["blob"]))
	assert.True(t, value.Equal(value.Date(date), values["when"]))
	assert.True(t, value.Equal(value.Array(value.Int(1), value.String("a")), values["list"]))
	assert.True(t, value.Equal(value.Dict(map[string]value.Value{"x": value.Bool(false)}), values["nested"]))
}

func TestDecode_BinaryFormat(t *testing.T) {
	data, err := plist.Marshal(map[string]interface{}{"tilesize": int64(48)}, plist.BinaryFormat)
	require.NoError(t, err)

	values, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Int(48), values["tilesize"]))
}

func TestDecode_UIDBecomesInt(t *testing.T) {
	v, err := convert(plist.UID(7))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Int(7), v))
}

func TestDecode_IntegerOverflow(t *testing.T) {
	data := xmlPlist(t, map[string]interface{}{"big": uint64(math.MaxUint64)})

	_, err := Decode(data)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "big", decodeErr.Key)
}

func TestDecode_NotDictionary(t *testing.T) {
	_, err := Decode(xmlPlist(t, []interface{}{"a"}))
	assert.ErrorIs(t, err, ErrNotDictionary)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte(`{ "a" = `))
	assert.Error(t, err)
}

// =============================================================================
// DOMAIN LIST
// =============================================================================

func TestParseDomainList(t *testing.T) {
	got := ParseDomainList("com.apple.dock, com.example.app,\ncom.apple.dock, \n")
	assert.Equal(t, []string{"NSGlobalDomain", "com.apple.dock", "com.example.app"}, got)
}

func TestParseDomainList_Empty(t *testing.T) {
	assert.Equal(t, []string{"NSGlobalDomain"}, ParseDomainList(""))
}

func TestSelect(t *testing.T) {
	domains := []string{"NSGlobalDomain", "com.apple.dock", "com.apple.spaces", "com.example.app"}

	got, err := Select(domains, nil, []string{"com.apple.spaces"})
	require.NoError(t, err)
	assert.Equal(t, []string{"NSGlobalDomain", "com.apple.dock", "com.example.app"}, got)

	got, err = Select(domains, []string{"com.apple.*"}, []string{"*.spaces"})
	require.NoError(t, err)
	assert.Equal(t, []string{"com.apple.dock"}, got)

	_, err = Select(domains, []string{"[bad"}, nil)
	assert.Error(t, err)
}

// =============================================================================
// CAPTURE
// =============================================================================

func TestCapture_Static(t *testing.T) {
	reader := NewStaticReader(map[string][]byte{
		"com.example.dock":   xmlPlist(t, map[string]interface{}{"tilesize": int64(48), "autohide": true}),
		"com.example.app":    xmlPlist(t, map[string]interface{}{"name": "x"}),
		"com.example.locked": nil,
		"com.example.broken": []byte("garbage"),
	})

	var calls int32
	snap, err := Capture(context.Background(), reader, Options{
		Concurrency: 2,
		Progress:    func(done, total int) { atomic.AddInt32(&calls, 1); assert.Equal(t, 4, total) },
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"com.example.app", "com.example.dock"}, snap.Domains())
	assert.Equal(t, []string{"com.example.broken", "com.example.locked"}, snap.Unreadable())
	assert.Equal(t, 3, snap.KeyCount())
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))

	v, ok := snap.Lookup("com.example.dock", "tilesize")
	require.True(t, ok)
	assert.True(t, value.Equal(value.Int(48), v))
}

func TestCapture_ExcludedDomainsAreNotRead(t *testing.T) {
	reader := NewStaticReader(map[string][]byte{
		"com.example.dock":   xmlPlist(t, map[string]interface{}{"tilesize": int64(48)}),
		"com.example.locked": nil,
	})

	snap, err := Capture(context.Background(), reader, Options{Exclude: []string{"*.locked"}})
	require.NoError(t, err)

	assert.Empty(t, snap.Unreadable())
	assert.False(t, snap.IsUnreadable("com.example.locked"))
}

func TestCapture_Timestamp(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	snap, err := Capture(context.Background(), NewStaticReader(nil), Options{Now: func() time.Time { return at }})
	require.NoError(t, err)
	assert.Equal(t, at, snap.CapturedAt())
	assert.NotEmpty(t, snap.ID())
}

type failingReader struct{}

func (failingReader) Domains(context.Context) ([]string, error) {
	return nil, errors.New("defaults not found")
}

func (failingReader) Export(context.Context, string) ([]byte, error) {
	return nil, errors.New("unreachable")
}

func TestCapture_ListFailureIsError(t *testing.T) {
	_, err := Capture(context.Background(), failingReader{}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list domains")
}

func TestCapture_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Capture(ctx, NewStaticReader(map[string][]byte{"a": nil}), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCapture_StaticReaderChanges(t *testing.T) {
	reader := NewStaticReader(map[string][]byte{
		"com.example.dock": xmlPlist(t, map[string]interface{}{"tilesize": int64(36)}),
	})

	before, err := Capture(context.Background(), reader, Options{})
	require.NoError(t, err)

	reader.Set("com.example.dock", xmlPlist(t, map[string]interface{}{"tilesize": int64(48)}))
	reader.Set("com.example.app", xmlPlist(t, map[string]interface{}{"on": true}))

	after, err := Capture(context.Background(), reader, Options{})
	require.NoError(t, err)

	assert.NotEqual(t, before.ID(), after.ID())
	assert.Equal(t, 1, before.DomainCount())
	assert.Equal(t, 2, after.DomainCount())
}
