// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// diff_cmd.go - The "diff" command: capture, wait, capture again, print.
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
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/peterh/liner"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/config"
	"github.com/jeranaias/prefdiff/internal/export"
	"github.com/jeranaias/prefdiff/internal/session"
	"github.com/jeranaias/prefdiff/internal/util"
)

// HandleDiff handles the "diff" command.
func HandleDiff(args Args) {
	if err := runDiffCommand(args); err != nil {
		HandleErrorAndExit(CmdDiff, err, args.JSON)
	}
}

func runDiffCommand(args Args) error {
	if err := unknownFlagsError(CmdDiff, args.Unknown); err != nil {
		return err
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

	d := &diffRun{
		args:    args,
		cfg:     cfg,
		session: s,
		logger:  logger,
		out:     os.Stdout,
		errOut:  os.Stderr,
		tty:     IsStderrTTY(),
		wait:    promptEnter,
		copy:    clipboard.WriteAll,
	}
	return d.run(ctx)
}

// =============================================================================
// DIFF RUN
// =============================================================================

// diffRun is one execution of the diff command.
type diffRun struct {
	args    Args
	cfg     *config.Config
	session *session.Session
	logger  *slog.Logger

	out    io.Writer // Rendered report
	errOut io.Writer // Progress and messages
	tty    bool      // errOut is a terminal

	// wait blocks until the user has made their changes.
	wait func(ctx context.Context) error
	// copy places text on the clipboard.
	copy func(text string) error
}

func (d *diffRun) run(ctx context.Context) error {
	start := time.Now()
	progress, done := progressPrinter(d.errOut, "Capturing current settings", d.tty)
	before, err := d.session.CaptureBefore(ctx, progress)
	done()
	if err != nil {
		return &CaptureError{Phase: "before", Err: err}
	}

	fmt.Fprintf(d.errOut, "%s Captured %s (%s) in %s\n",
		RenderConditional(SuccessStyle, "✓"),
		util.Plural(before.DomainCount(), "domain"),
		util.Plural(before.KeyCount(), "key"),
		formatDurationShort(time.Since(start)))
	if n := len(before.Unreadable()); n > 0 {
		fmt.Fprintf(d.errOut, "%s %s could not be read\n",
			RenderConditional(WarningStyle, "!"), util.Plural(n, "domain"))
	}
	fmt.Fprintln(d.errOut, "Change your settings, then press Enter to compare.")

	if err := d.wait(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	progress, done = progressPrinter(d.errOut, "Capturing new settings", d.tty)
	res, err := d.session.CaptureAfter(ctx, progress)
	done()
	if err != nil {
		return &CaptureError{Phase: "after", Err: err}
	}

	return d.report(res)
}

// report prints the result in the configured format, or writes it to the
// --output file, and copies the commands when --copy is set.
func (d *diffRun) report(res *session.Result) error {
	if d.tty {
		writeChanges(d.errOut, res.Changes)
	}
	fmt.Fprintln(d.errOut, RenderConditional(TitleStyle, res.String()))

	opts := &export.Options{IncludeMetadata: true}
	exporter, err := export.ForFormat(d.cfg.Export.Format, opts)
	if err != nil {
		return ErrUnsupportedFormat(d.cfg.Export.Format, export.Formats)
	}
	rep := res.Report()

	if d.args.Output != "" {
		opts.OutputDir = filepath.Dir(d.args.Output)
		opts.Filename = filepath.Base(d.args.Output)
		path, err := export.ExportToFile(rep, exporter, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(d.errOut, "%s Wrote %s\n", RenderConditional(SuccessStyle, "✓"), path)
	} else {
		content, err := exporter.Export(rep)
		if err != nil {
			return err
		}
		fmt.Fprint(d.out, renderDocument(string(content), d.cfg.Export.Format))
	}

	if d.args.Copy {
		d.copyCommands(res.Lines)
	}

	if res.Err != nil {
		return &PartialError{Skipped: res.Skipped(), Err: res.Err}
	}
	return nil
}

// copyCommands puts the command lines on the clipboard, degraded notes
// included as comments. A missing clipboard
// is reported but does not fail the command.
func (d *diffRun) copyCommands(lines []command.CommandLine) {
	if len(lines) == 0 {
		fmt.Fprintln(d.errOut, RenderConditional(DimStyle, "Nothing to copy"))
		return
	}
	if err := d.copy(command.Commented(lines)); err != nil {
		d.logger.Warn("clipboard unavailable", "error", err)
		fmt.Fprintf(d.errOut, "%s could not copy to clipboard: %v\n", RenderConditional(WarningStyle, "Warning:"), err)
		return
	}
	msg := "Copied " + util.Plural(len(lines), "command") + " to the clipboard"
	if n := len(command.Degraded(lines)); n > 0 {
		msg += fmt.Sprintf(" (%d degraded, notes included as comments)", n)
	}
	fmt.Fprintf(d.errOut, "%s %s\n", RenderConditional(SuccessStyle, "✓"), msg)
}

// renderDocument highlights an exported document for the terminal.
func renderDocument(content, format string) string {
	switch format {
	case export.FormatShell:
		return highlight(content, "bash")
	case export.FormatJSON:
		return highlight(content, "json")
	case export.FormatYAML:
		return highlight(content, "yaml")
	case export.FormatMarkdown:
		return renderMarkdown(content, GetTerminalWidth())
	default:
		return content
	}
}

// promptEnter waits for Enter on stdin. Ctrl+C aborts; end of input counts
// as Enter when stdin is not a terminal, so that the command can be driven
// from a script.
func promptEnter(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	_, err := line.Prompt("[Enter] ")
	switch {
	case err == nil:
		return ctx.Err()
	case errors.Is(err, liner.ErrPromptAborted):
		return ErrCancelled
	case errors.Is(err, io.EOF):
		if IsTTY() {
			return ErrCancelled
		}
		return nil
	default:
		return fmt.Errorf("read input: %w", err)
	}
}
