// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp dir and clears PREFDIFF_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{
		"PREFDIFF_DEFAULTS", "PREFDIFF_CONCURRENCY", "PREFDIFF_CURRENT_HOST",
		"PREFDIFF_POLICY", "PREFDIFF_FILTER", "PREFDIFF_EXPORT_DIR",
	} {
		t.Setenv(name, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "defaults", cfg.Capture.Program)
	assert.Equal(t, 8, cfg.Capture.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.Capture.Timeout())
	assert.Equal(t, "annotate", cfg.Commands.NestedPolicy)
	assert.Equal(t, 750*time.Millisecond, cfg.Watch.Debounce())
	assert.Equal(t, 2*time.Second, cfg.Watch.MinInterval())
	assert.Equal(t, "sh", cfg.Export.Format)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Capture, cfg.Capture)
}

func TestLoad_TOML(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".prefdiff", "config.toml"), `
[capture]
concurrency = 4
exclude = ["com.apple.spaces", "*.savedState"]

[commands]
nested_policy = "fail"
filter = 'domain != "com.apple.spaces"'
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Capture.Concurrency)
	assert.Equal(t, []string{"com.apple.spaces", "*.savedState"}, cfg.Capture.Exclude)
	assert.Equal(t, "fail", cfg.Commands.NestedPolicy)
	assert.Equal(t, `domain != "com.apple.spaces"`, cfg.Commands.Filter)
	// Unset keys keep their defaults.
	assert.Equal(t, 10, cfg.Capture.TimeoutSecs)
	assert.Equal(t, "defaults", cfg.Commands.Program)
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".prefdiff", "config.json"), `{"export": {"format": "yaml"}}`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Export.Format)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, `
[capture]
concurrency = 500
exclude = ["[broken"]

[commands]
nested_policy = "explode"
filter = "domain =="
`)

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{
		"capture.concurrency",
		"capture.exclude",
		"commands.nested_policy",
		"commands.filter",
	}, fields)
}

func TestLoadFromPath_Malformed(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "[capture\n")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PREFDIFF_DEFAULTS", "/opt/bin/defaults")
	t.Setenv("PREFDIFF_CONCURRENCY", "3")
	t.Setenv("PREFDIFF_CURRENT_HOST", "true")
	t.Setenv("PREFDIFF_POLICY", "fail")
	t.Setenv("PREFDIFF_FILTER", `kind == "added"`)
	t.Setenv("PREFDIFF_EXPORT_DIR", "/tmp/out")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/bin/defaults", cfg.Capture.Program)
	assert.Equal(t, "/opt/bin/defaults", cfg.Commands.Program)
	assert.Equal(t, 3, cfg.Capture.Concurrency)
	assert.True(t, cfg.Capture.CurrentHost)
	assert.Equal(t, "fail", cfg.Commands.NestedPolicy)
	assert.Equal(t, `kind == "added"`, cfg.Commands.Filter)
	assert.Equal(t, "/tmp/out", cfg.Export.Dir)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Capture.Exclude = []string{"com.apple.spaces"}
	cfg.UI.Compact = true
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Capture, loaded.Capture)
	assert.True(t, loaded.UI.Compact)
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Export.Format = "md"
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "md", loaded.Export.Format)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("capture.concurrency")
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	require.NoError(t, cfg.Set("capture.concurrency", "2"))
	require.NoError(t, cfg.Set("capture.current_host", "yes"))
	require.NoError(t, cfg.Set("capture.exclude", "a.*, b.*"))
	require.NoError(t, cfg.Set("commands.nested_policy", "fail"))

	assert.Equal(t, 2, cfg.Capture.Concurrency)
	assert.True(t, cfg.Capture.CurrentHost)
	assert.Equal(t, []string{"a.*", "b.*"}, cfg.Capture.Exclude)
	assert.Equal(t, "fail", cfg.Commands.NestedPolicy)

	_, err = cfg.Get("capture.nope")
	assert.Error(t, err)
	_, err = cfg.Get("capture")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("capture.concurrency", "many"))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	cfg.Capture.Exclude = []string{"a"}

	clone := cfg.Clone()
	clone.Capture.Exclude[0] = "b"

	assert.Equal(t, "a", cfg.Capture.Exclude[0])
}

func TestExpandedPaths(t *testing.T) {
	home := isolate(t)
	assert.Equal(t, []string{filepath.Join(home, "Library", "Preferences")}, Default().Watch.ExpandedPaths())
}

func TestString_IsTOML(t *testing.T) {
	out := Default().String()
	assert.Contains(t, out, "[capture]")
	assert.Contains(t, out, `nested_policy = "annotate"`)
}
