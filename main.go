// prefdiff - Capture macOS preference changes as replayable defaults commands.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/prefdiff/internal/cli"
	"github.com/jeranaias/prefdiff/internal/config"
	"github.com/jeranaias/prefdiff/internal/logging"
	"github.com/jeranaias/prefdiff/internal/session"
	"github.com/jeranaias/prefdiff/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if args.NoColor {
		cli.DisableColors()
	}

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdDiff:
		cli.HandleDiff(args)
	case cli.CmdWatch:
		cli.HandleWatch(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdDoctor:
		cli.HandleDoctor(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		cli.HandleUnknown(args)
	}
}

// runTUI starts the interactive comparison. Logs go to a file in the config
// directory because the TUI owns the terminal.
func runTUI(args cli.Args) {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		cli.HandleErrorAndExit(cli.CmdTUI, err, args.JSON)
	}
	if err := cli.ApplyFlags(cfg, args); err != nil {
		cli.HandleErrorAndExit(cli.CmdTUI, err, args.JSON)
	}

	logger, closeLog := openLog(args)
	defer closeLog()

	s, err := session.FromConfig(cfg, logger)
	if err != nil {
		cli.HandleErrorAndExit(cli.CmdTUI, &cli.ConfigError{Err: err}, args.JSON)
	}

	m := app.New(app.Options{
		Session: s,
		Config:  cfg,
		Logger:  logger,
	})
	defer m.Close()

	logger.Info("tui started", "session", s.ID())

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running prefdiff: %v\n", err)
		os.Exit(1)
	}
}

// openLog opens the TUI log file. Without a config directory the TUI runs
// without logs.
func openLog(args cli.Args) (*slog.Logger, func()) {
	dir, err := config.ConfigDir()
	if err != nil {
		return logging.Discard(), func() {}
	}
	logger, f, err := logging.OpenFile(dir, logging.Level(args.Verbose, args.Debug))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return logging.Discard(), func() {}
	}
	return logger, func() { f.Close() }
}
