// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// watch_cmd.go - The "watch" command: re-diff whenever preference files change.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/config"
	"github.com/jeranaias/prefdiff/internal/export"
	"github.com/jeranaias/prefdiff/internal/session"
	"github.com/jeranaias/prefdiff/internal/util"
	"github.com/jeranaias/prefdiff/internal/watch"
)

// HandleWatch handles the "watch" command.
func HandleWatch(args Args) {
	if err := runWatchCommand(args); err != nil {
		HandleErrorAndExit(CmdWatch, err, args.JSON)
	}
}

func runWatchCommand(args Args) error {
	if err := unknownFlagsError(CmdWatch, args.Unknown); err != nil {
		return err
	}
	if args.Output != "" {
		return NewValidationErrorWithExample("--output", args.Output,
			"not supported by watch", "prefdiff diff --output changes.sh")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	if err := ApplyFlags(cfg, args); err != nil {
		return err
	}

	logger := newLogger(args)
	s, err := session.FromConfig(cfg, logger)
	if err != nil {
		return &ConfigError{Err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &watchRun{
		args:    args,
		cfg:     cfg,
		session: s,
		logger:  logger,
		out:     os.Stdout,
		errOut:  os.Stderr,
		tty:     IsStderrTTY(),
		copy:    clipboard.WriteAll,
	}
	return w.run(ctx)
}

// =============================================================================
// WATCH RUN
// =============================================================================

// watchRun is one execution of the watch command.
type watchRun struct {
	args    Args
	cfg     *config.Config
	session *session.Session
	logger  *slog.Logger

	out    io.Writer
	errOut io.Writer
	tty    bool

	copy func(text string) error

	// ready, when set, is called once the watcher is running.
	ready func()
}

func (w *watchRun) run(ctx context.Context) error {
	progress, done := progressPrinter(w.errOut, "Capturing baseline", w.tty)
	before, err := w.session.CaptureBefore(ctx, progress)
	done()
	if err != nil {
		return &CaptureError{Phase: "baseline", Err: err}
	}

	paths := w.cfg.Watch.ExpandedPaths()
	watcher, err := watch.New(watch.Options{
		Paths:       paths,
		Debounce:    w.cfg.Watch.Debounce(),
		MinInterval: w.cfg.Watch.MinInterval(),
		Logger:      w.logger,
	})
	if err != nil {
		return &ConfigError{Err: fmt.Errorf("watch: %w", err)}
	}
	defer watcher.Close()

	fmt.Fprintf(w.errOut, "%s Captured %s. Watching %s (Ctrl+C to stop)\n",
		RenderConditional(SuccessStyle, "✓"),
		util.Plural(before.DomainCount(), "domain"),
		strings.Join(paths, ", "))

	if w.ready != nil {
		w.ready()
	}

	err = watcher.Run(ctx, w.onBatch)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// onBatch re-captures and prints the changes for one settled batch. Capture
// failures are logged and the watch continues.
func (w *watchRun) onBatch(ctx context.Context, batch watch.Batch) error {
	w.logger.Debug("preference files changed", "files", len(batch.Paths))

	res, err := w.session.CaptureAfter(ctx, nil)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.Warn("capture failed", "error", err)
		fmt.Fprintf(w.errOut, "%s capture failed: %v\n", RenderConditional(WarningStyle, "Warning:"), err)
		return nil
	}

	if !w.args.FromStart {
		w.session.Advance()
	}

	if res.Changes.IsEmpty() {
		w.logger.Debug("no preference changes", "files", batch.Paths)
		return nil
	}

	names := make([]string, 0, len(batch.Paths))
	for _, p := range batch.Paths {
		names = append(names, filepath.Base(p))
	}
	fmt.Fprintf(w.errOut, "\n%s %s  %s\n",
		RenderConditional(DimStyle, batch.At.Format("15:04:05")),
		RenderConditional(TitleStyle, res.String()),
		RenderConditional(DimStyle, strings.Join(names, ", ")))
	if w.tty {
		writeChanges(w.errOut, res.Changes)
	}

	if err := w.print(res); err != nil {
		return err
	}

	if res.Err != nil {
		w.logger.Warn("changes without command", "count", res.Skipped(), "error", res.Err)
	}
	if w.args.Copy && len(res.Lines) > 0 {
		if err := w.copy(strings.Join(command.Texts(res.Lines), "\n")); err != nil {
			w.logger.Warn("clipboard unavailable", "error", err)
		}
	}
	return nil
}

// print writes the commands of a result. The shell format prints just the
// command lines; other formats print a full document per batch.
func (w *watchRun) print(res *session.Result) error {
	format := w.cfg.Export.Format
	if format == export.FormatShell || format == "" {
		if len(res.Lines) == 0 {
			return nil
		}
		var sb strings.Builder
		for _, l := range res.Lines {
			if l.Degraded {
				sb.WriteString("# degraded: " + l.Note + "\n")
			}
			sb.WriteString(l.Text + "\n")
		}
		fmt.Fprint(w.out, highlight(sb.String(), "bash"))
		return nil
	}

	exporter, err := export.ForFormat(format, &export.Options{IncludeMetadata: false})
	if err != nil {
		return ErrUnsupportedFormat(format, export.Formats)
	}
	content, err := exporter.Export(res.Report())
	if err != nil {
		return err
	}
	fmt.Fprint(w.out, renderDocument(string(content), format))
	return nil
}
