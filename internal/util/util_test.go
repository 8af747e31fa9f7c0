// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports", "prefdiff.sh")

	require.NoError(t, WriteFileAtomic(path, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, WriteFileAtomic(path, []byte("#!/bin/sh\nset -e\n"), 0o755))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\nset -e\n", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// Only the report itself, no temp files.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_PrivateMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, WriteFileAtomic(path, []byte("version = \"1\"\n"), 0o600))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteFileAtomic_FailureKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, WriteFileAtomic(path, []byte("{}"), 0o644))

	// A directory where the parent should be makes MkdirAll fail.
	blocked := filepath.Join(dir, "report.json", "nested.json")
	err := WriteFileAtomic(blocked, []byte("x"), 0o644)
	require.Error(t, err)
	assert.Contains(t, err.Error(), blocked)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))
}

// =============================================================================
// TEXT TESTS
// =============================================================================

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny width", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
		{"wide characters", "日本語テキスト", 7, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWidth(tt.input, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, StringWidth(got), max(tt.width, 0))
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "ab...", PadRight("abcdefgh", 5))
	assert.Equal(t, 6, StringWidth(PadRight("日本", 6)))
}

func TestStringWidth(t *testing.T) {
	assert.Equal(t, 5, StringWidth("hello"))
	assert.Equal(t, 4, StringWidth("日本"))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "a", FirstLine("a\nb"))
	assert.Equal(t, "abc", FirstLine("abc"))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "0 keys", Plural(0, "key"))
	assert.Equal(t, "1 key", Plural(1, "key"))
	assert.Equal(t, "3 domains", Plural(3, "domain"))
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, "Library", "Preferences"), ExpandHome("~/Library/Preferences"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/etc/hosts", ExpandHome("/etc/hosts"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}
