// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/prefdiff/internal/filter"
	"github.com/jeranaias/prefdiff/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete prefdiff configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Capture controls how preferences are read
	Capture CaptureConfig `toml:"capture" json:"capture"`

	// Commands controls how changes are rendered as commands
	Commands CommandsConfig `toml:"commands" json:"commands"`

	// Watch controls the watch command
	Watch WatchConfig `toml:"watch" json:"watch"`

	// Export controls report files
	Export ExportConfig `toml:"export" json:"export"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// CaptureConfig contains snapshot capture settings.
type CaptureConfig struct {
	// Program is the defaults executable used for reading
	Program string `toml:"program" json:"program"`
	// Concurrency is the number of domains exported in parallel
	Concurrency int `toml:"concurrency" json:"concurrency"`
	// TimeoutSecs bounds the export of a single domain
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// Exclude lists domain globs that are never read
	Exclude []string `toml:"exclude" json:"exclude"`
	// Include lists domain globs to read; empty reads all domains
	Include []string `toml:"include" json:"include"`
	// CurrentHost reads by-host preferences
	CurrentHost bool `toml:"current_host" json:"current_host"`
}

// CommandsConfig contains command generation settings.
type CommandsConfig struct {
	// Program is the executable named in generated commands
	Program string `toml:"program" json:"program"`
	// NestedPolicy is "annotate" or "fail"
	NestedPolicy string `toml:"nested_policy" json:"nested_policy"`
	// Filter is an expression selecting which changes to keep
	Filter string `toml:"filter" json:"filter"`
}

// WatchConfig contains settings for re-diffing on file changes.
type WatchConfig struct {
	// Paths are directories watched for preference writes
	Paths []string `toml:"paths" json:"paths"`
	// DebounceMs waits for writes to settle before capturing
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
	// MinIntervalSecs is the minimum time between two captures
	MinIntervalSecs int `toml:"min_interval_secs" json:"min_interval_secs"`
}

// ExportConfig contains report export settings.
type ExportConfig struct {
	// Dir is where exported reports are written
	Dir string `toml:"dir" json:"dir"`
	// Format is one of sh, json, yaml, md
	Format string `toml:"format" json:"format"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Compact uses a denser layout
	Compact bool `toml:"compact" json:"compact"`
}

// Timeout returns the per-domain export timeout.
func (c CaptureConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Debounce returns the settle delay after a file event.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// MinInterval returns the minimum time between captures.
func (w WatchConfig) MinInterval() time.Duration {
	return time.Duration(w.MinIntervalSecs) * time.Second
}

// ExpandedPaths returns Paths with a leading "~" replaced by the home
// directory.
func (w WatchConfig) ExpandedPaths() []string {
	out := make([]string, 0, len(w.Paths))
	for _, p := range w.Paths {
		out = append(out, util.ExpandHome(p))
	}
	return out
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Valid enumerations.
var (
	ValidPolicies = []string{"annotate", "fail"}
	ValidFormats  = []string{"sh", "json", "yaml", "md"}
	ValidThemes   = []string{"dark", "light", "auto"}
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",

		Capture: CaptureConfig{
			Program:     "defaults",
			Concurrency: 8,
			TimeoutSecs: 10,
			Exclude:     []string{},
			Include:     []string{},
		},

		Commands: CommandsConfig{
			Program:      "defaults",
			NestedPolicy: "annotate",
		},

		Watch: WatchConfig{
			Paths:           []string{"~/Library/Preferences"},
			DebounceMs:      750,
			MinIntervalSecs: 2,
		},

		Export: ExportConfig{
			Dir:    ".",
			Format: "sh",
		},

		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the prefdiff configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".prefdiff"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		p, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(p); statErr == nil {
			return LoadFromPath(p)
		}
	}

	cfg := Default()
	return cfg, cfg.finish()
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Keys missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies environment overrides, defaults and validation.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# prefdiff configuration file\n")
	buf.WriteString("# Generated by prefdiff - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Capture
	if c.Capture.Program == "" {
		errs = append(errs, ValidationError{Field: "capture.program", Message: "must not be empty"})
	}
	if c.Capture.Concurrency < 1 || c.Capture.Concurrency > 64 {
		errs = append(errs, ValidationError{
			Field:   "capture.concurrency",
			Message: fmt.Sprintf("must be between 1 and 64, got %d", c.Capture.Concurrency),
		})
	}
	if c.Capture.TimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "capture.timeout_secs",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Capture.TimeoutSecs),
		})
	}
	errs = append(errs, validateGlobs("capture.include", c.Capture.Include)...)
	errs = append(errs, validateGlobs("capture.exclude", c.Capture.Exclude)...)

	// Commands
	if c.Commands.Program == "" {
		errs = append(errs, ValidationError{Field: "commands.program", Message: "must not be empty"})
	}
	if !oneOf(c.Commands.NestedPolicy, ValidPolicies) {
		errs = append(errs, ValidationError{
			Field: "commands.nested_policy",
			Message: fmt.Sprintf("invalid policy '%s', must be one of: %s",
				c.Commands.NestedPolicy, strings.Join(ValidPolicies, ", ")),
		})
	}
	if c.Commands.Filter != "" {
		if _, err := filter.Compile(c.Commands.Filter); err != nil {
			errs = append(errs, ValidationError{Field: "commands.filter", Message: err.Error()})
		}
	}

	// Watch
	if c.Watch.DebounceMs < 0 {
		errs = append(errs, ValidationError{Field: "watch.debounce_ms", Message: "must not be negative"})
	}
	if c.Watch.MinIntervalSecs < 0 {
		errs = append(errs, ValidationError{Field: "watch.min_interval_secs", Message: "must not be negative"})
	}

	// Export
	if !oneOf(c.Export.Format, ValidFormats) {
		errs = append(errs, ValidationError{
			Field: "export.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: %s",
				c.Export.Format, strings.Join(ValidFormats, ", ")),
		})
	}

	// UI
	if !oneOf(c.UI.Theme, ValidThemes) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateGlobs(field string, patterns []string) ValidateErrors {
	var errs ValidateErrors
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("invalid pattern '%s'", p)})
		}
	}
	return errs
}

func oneOf(s string, valid []string) bool {
	s = strings.ToLower(s)
	for _, v := range valid {
		if s == v {
			return true
		}
	}
	return false
}

// SetDefaults sets default values for any missing or zero-value configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Capture.Program == "" {
		c.Capture.Program = defaults.Capture.Program
	}
	if c.Capture.Concurrency == 0 {
		c.Capture.Concurrency = defaults.Capture.Concurrency
	}
	if c.Capture.TimeoutSecs == 0 {
		c.Capture.TimeoutSecs = defaults.Capture.TimeoutSecs
	}

	if c.Commands.Program == "" {
		c.Commands.Program = defaults.Commands.Program
	}
	if c.Commands.NestedPolicy == "" {
		c.Commands.NestedPolicy = defaults.Commands.NestedPolicy
	}
	c.Commands.NestedPolicy = strings.ToLower(c.Commands.NestedPolicy)

	if len(c.Watch.Paths) == 0 {
		c.Watch.Paths = defaults.Watch.Paths
	}

	if c.Export.Dir == "" {
		c.Export.Dir = defaults.Export.Dir
	}
	if c.Export.Format == "" {
		c.Export.Format = defaults.Export.Format
	}
	c.Export.Format = strings.ToLower(c.Export.Format)

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PREFDIFF_DEFAULTS: overrides capture.program and commands.program
//   - PREFDIFF_CONCURRENCY: overrides capture.concurrency
//   - PREFDIFF_CURRENT_HOST: set to "1" or "true" to read by-host preferences
//   - PREFDIFF_POLICY: overrides commands.nested_policy
//   - PREFDIFF_FILTER: overrides commands.filter
//   - PREFDIFF_EXPORT_DIR: overrides export.dir
func (c *Config) ApplyEnvOverrides() {
	if program := os.Getenv("PREFDIFF_DEFAULTS"); program != "" {
		c.Capture.Program = program
		c.Commands.Program = program
	}

	if n := os.Getenv("PREFDIFF_CONCURRENCY"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			c.Capture.Concurrency = v
		}
	}

	if host := os.Getenv("PREFDIFF_CURRENT_HOST"); host != "" {
		c.Capture.CurrentHost = host == "1" || strings.ToLower(host) == "true"
	}

	if policy := os.Getenv("PREFDIFF_POLICY"); policy != "" {
		c.Commands.NestedPolicy = policy
	}

	if expr := os.Getenv("PREFDIFF_FILTER"); expr != "" {
		c.Commands.Filter = expr
	}

	if dir := os.Getenv("PREFDIFF_EXPORT_DIR"); dir != "" {
		c.Export.Dir = dir
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "capture.concurrency").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String input is
// converted to the field's type; list fields take comma-separated values.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section", key)
			}
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"capture.program",
		"capture.concurrency",
		"capture.timeout_secs",
		"capture.exclude",
		"capture.include",
		"capture.current_host",
		"commands.program",
		"commands.nested_policy",
		"commands.filter",
		"watch.paths",
		"watch.debounce_ms",
		"watch.min_interval_secs",
		"export.dir",
		"export.format",
		"ui.theme",
		"ui.compact",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Capture.Exclude = append([]string(nil), c.Capture.Exclude...)
	clone.Capture.Include = append([]string(nil), c.Capture.Include...)
	clone.Watch.Paths = append([]string(nil), c.Watch.Paths...)
	return &clone
}

// String returns the config as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}
