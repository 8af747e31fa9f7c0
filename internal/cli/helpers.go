// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared helpers for the diff, watch and config commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/config"
	"github.com/jeranaias/prefdiff/internal/export"
	"github.com/jeranaias/prefdiff/internal/filter"
	"github.com/jeranaias/prefdiff/internal/logging"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// LoadConfig loads the file named by --config, or the default config file.
// Failures are returned as *ConfigError.
func LoadConfig(args Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		cfg, err := config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, &ConfigError{Path: args.ConfigPath, Err: err}
		}
		return cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		path, _ := config.ConfigPathTOML()
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// ApplyFlags overlays the command-line flags on cfg. Flag values are checked
// here so that a bad flag is reported as a usage error rather than a config
// error.
func ApplyFlags(cfg *config.Config, args Args) error {
	if args.Policy != "" {
		policy, err := command.ParsePolicy(args.Policy)
		if err != nil {
			return NewValidationErrorWithExample("--policy", args.Policy,
				"unknown policy", "--policy annotate  or  --policy fail")
		}
		cfg.Commands.NestedPolicy = policy.String()
	}

	if args.Filter != "" {
		if _, err := filter.Compile(args.Filter); err != nil {
			return NewValidationErrorWithExample("--filter", args.Filter,
				err.Error(), `--filter 'domain startsWith "com.apple."'`)
		}
		cfg.Commands.Filter = args.Filter
	}

	if args.Format != "" {
		exporter, err := export.ForFormat(args.Format, nil)
		if err != nil {
			return ErrUnsupportedFormat(args.Format, export.Formats)
		}
		cfg.Export.Format = strings.TrimPrefix(exporter.FileExtension(), ".")
	}

	if args.CurrentHost {
		cfg.Capture.CurrentHost = true
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}

// newLogger returns the stderr logger for --verbose and --debug.
func newLogger(args Args) *slog.Logger {
	return logging.New(os.Stderr, logging.Level(args.Verbose, args.Debug))
}

// =============================================================================
// PROGRESS
// =============================================================================

// progressPrinter returns a capture progress callback that redraws one line
// on w, and a function that ends the line. Both are no-ops when w is not a
// terminal.
func progressPrinter(w io.Writer, label string, tty bool) (func(done, total int), func()) {
	if !tty {
		return nil, func() {}
	}

	drawn := false
	progress := func(done, total int) {
		drawn = true
		fmt.Fprintf(w, "\r%s %s", label, RenderConditional(DimStyle, fmt.Sprintf("%d/%d domains", done, total)))
	}
	finish := func() {
		if drawn {
			fmt.Fprintln(w)
		}
	}
	return progress, finish
}

// =============================================================================
// FORMATTING
// =============================================================================

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
