// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for prefdiff.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdDiff
	CmdWatch
	CmdConfig
	CmdDoctor
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdDiff:
		return "diff"
	case CmdWatch:
		return "watch"
	case CmdConfig:
		return "config"
	case CmdDoctor:
		return "doctor"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config FILE
	Verbose    bool
	Debug      bool
	NoColor    bool
	JSON       bool // Machine-readable output for version and config

	// diff / watch
	Copy        bool
	Format      string
	Output      string
	Filter      string
	Policy      string
	CurrentHost bool
	FromStart   bool // watch: compare against the first capture

	// config
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Force      bool

	// Name is the command word as typed (set for CmdUnknown).
	Name string

	// Unknown collects flags the command does not accept.
	Unknown []string

	// Raw args (remaining after the command word)
	Raw []string
}

const usageText = `prefdiff - find the defaults commands behind a settings change

prefdiff captures every macOS preference domain, waits while you change
something in System Settings, captures again and prints the
"defaults write" / "defaults delete" commands that reproduce the change.

Usage:
  prefdiff                        Start the interactive TUI (default)
  prefdiff diff [flags]           Capture, wait for Enter, capture, print commands
  prefdiff watch [flags]          Print commands whenever preference files change
  prefdiff config [subcommand]    Show or edit configuration
  prefdiff doctor                 Check that preferences can be captured
  prefdiff version                Show version information
  prefdiff help                   Show this help

Diff / watch flags:
  --format sh|json|yaml|md    Output format (default from config, "sh")
  --output FILE               Write the report to FILE instead of stdout
  --filter EXPR               Keep only changes matching an expr expression
  --policy annotate|fail      Nested values: write a plist literal, or skip
  --current-host              Read and write the by-host domains
  --copy                      Copy the generated commands to the clipboard
  --from-start                (watch) Compare against the first capture

Config subcommands:
  show                        Print the effective configuration (default)
  path                        Print the config file location
  init [--force]              Write a default config file
  get KEY                     Print one value, e.g. capture.concurrency
  set KEY VALUE               Change one value and save
  keys                        List all keys

Global Flags:
  --config FILE   Use this config file instead of ~/.prefdiff/config.toml
  -v, --verbose   Log progress to stderr
  --debug         Log per-domain detail to stderr
  --no-color      Disable colored output (also honours NO_COLOR)
  --json          JSON output for version, config and doctor

Filter expressions see: domain, key, kind, domainKind, type, value
  prefdiff diff --filter 'domain startsWith "com.apple.dock"'
  prefdiff diff --filter 'kind != "removed" && type == "bool"'

Examples:
  prefdiff diff                       Print commands for one change
  prefdiff diff --copy                ...and copy them to the clipboard
  prefdiff diff --format md -o x.md   Save a Markdown report
  prefdiff watch --filter 'domain != "com.apple.spaces"'
  prefdiff config set capture.exclude 'com.apple.spaces,*.savedState'

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("prefdiff version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go:         %s\n", runtime.Version())
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(argv)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "diff", "d":
		parseDiffArgs(&parsedArgs, remaining)
		return CmdDiff, parsedArgs

	case "watch", "w":
		parseDiffArgs(&parsedArgs, remaining)
		return CmdWatch, parsedArgs

	case "config", "cfg":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "doctor", "doc":
		parsedArgs.Unknown = remaining
		return CmdDoctor, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Name = cmd
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--debug":
			parsedArgs.Debug = true
		case "--no-color":
			parsedArgs.NoColor = true
		case "--json":
			parsedArgs.JSON = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// parseDiffArgs parses the flags shared by diff and watch.
func parseDiffArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "--copy", "-c":
			args.Copy = true
			continue
		case "--current-host":
			args.CurrentHost = true
			continue
		case "--from-start":
			args.FromStart = true
			continue
		}

		if v, ok := flagValue(remaining, &i, "--format", "-f"); ok {
			args.Format = v
		} else if v, ok := flagValue(remaining, &i, "--output", "-o"); ok {
			args.Output = v
		} else if v, ok := flagValue(remaining, &i, "--filter"); ok {
			args.Filter = v
		} else if v, ok := flagValue(remaining, &i, "--policy"); ok {
			args.Policy = v
		} else {
			args.Unknown = append(args.Unknown, arg)
		}
	}
}

// flagValue reads the value of the flag at remaining[*i] when it is one of
// names, given either as "--name=value" or "--name value". In the second form
// *i is advanced past the value.
func flagValue(remaining []string, i *int, names ...string) (string, bool) {
	arg := remaining[*i]
	for _, name := range names {
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, true
		}
		if arg == name && *i+1 < len(remaining) {
			*i++
			return remaining[*i], true
		}
	}
	return "", false
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	var positional []string
	for _, arg := range remaining {
		switch arg {
		case "--force":
			args.Force = true
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		args.Subcommand = strings.ToLower(positional[0])
	}
	if len(positional) > 1 {
		args.ConfigKey = positional[1]
	}
	if len(positional) > 2 {
		args.ConfigVal = strings.Join(positional[2:], " ")
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		if err := NewJSONResponse("version", data).Print(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitGeneralError)
		}
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}

// HandleUnknown reports an unknown command, with a suggestion when the
// name is close to a real one, and exits with a usage error.
func HandleUnknown(args Args) {
	err := UnknownCommandError(args.Name)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	fmt.Fprintln(os.Stderr, "Run 'prefdiff help' for usage.")
	os.Exit(GetExitCode(err))
}
