// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - The "config" command: show, locate, create and edit the
// configuration file.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/prefdiff/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) {
	if err := runConfig(args, os.Stdout); err != nil {
		HandleErrorAndExit(CmdConfig, err, args.JSON)
	}
}

func runConfig(args Args, out io.Writer) error {
	if err := unknownFlagsError(CmdConfig, args.Unknown); err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "show":
		return configShow(args, out)
	case "path":
		return configPath(args, out)
	case "init":
		return configInit(args, out)
	case "get":
		return configGet(args, out)
	case "set":
		return configSet(args, out)
	case "keys":
		return configKeys(args, out)
	default:
		example := "prefdiff config [show|path|init|get|set|keys]"
		if s := SuggestConfigSubcommand(args.Subcommand); s != "" {
			example = "did you mean 'prefdiff config " + s + "'?"
		}
		return NewValidationErrorWithExample("subcommand", args.Subcommand,
			"unknown config subcommand", example)
	}
}

// configFilePath returns --config or the default TOML location.
func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return path, nil
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func configShow(args Args, out io.Writer) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	path, err := configFilePath(args)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("config show", ConfigData{Path: path, Config: cfg}).Print()
	}

	fmt.Fprintln(out, RenderConditional(TitleStyle, "prefdiff configuration"))
	fmt.Fprintln(out, RenderSeparator(41))
	fmt.Fprint(out, highlight(cfg.String(), "toml"))
	fmt.Fprintln(out, RenderSeparator(41))

	status := "(not created, showing defaults)"
	if _, err := os.Stat(path); err == nil {
		status = ""
	}
	fmt.Fprintf(out, "%s%s %s\n", RenderLabel("Config file:"), path, RenderConditional(DimStyle, status))
	return nil
}

func configPath(args Args, out io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)

	if args.JSON {
		return NewJSONResponse("config path", ConfigPathData{Path: path, Exists: statErr == nil}).Print()
	}
	fmt.Fprintln(out, path)
	return nil
}

func configInit(args Args, out io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !args.Force {
		return NewValidationErrorWithExample("config", path,
			"file already exists", "prefdiff config init --force")
	}

	if args.ConfigPath == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	if args.JSON {
		return NewJSONResponse("config init", ConfigData{Path: path}).Print()
	}
	fmt.Fprintf(out, "%s Wrote default configuration to %s\n", RenderConditional(SuccessStyle, "✓"), path)
	return nil
}

func configGet(args Args, out io.Writer) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "prefdiff config get capture.concurrency")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	val, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return unknownKeyError(args.ConfigKey, err)
	}

	if args.JSON {
		path, _ := configFilePath(args)
		return NewJSONResponse("config get", ConfigData{Path: path, Key: args.ConfigKey, Value: val}).Print()
	}

	switch v := val.(type) {
	case []string:
		fmt.Fprintln(out, strings.Join(v, ","))
	default:
		fmt.Fprintln(out, v)
	}
	return nil
}

// configSet edits the file itself, without environment overrides, so that
// PREFDIFF_* variables are never written back.
func configSet(args Args, out io.Writer) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "prefdiff config set capture.concurrency 16")
	}

	path, err := configFilePath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		load := config.LoadTOML
		if strings.HasSuffix(path, ".json") {
			load = config.LoadJSON
		}
		if err := load(cfg, path); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return &ConfigError{Path: path, Err: statErr}
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return unknownKeyError(args.ConfigKey, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	if args.ConfigPath == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	}
	save := config.SaveTOML
	if strings.HasSuffix(path, ".json") {
		save = config.SaveJSON
	}
	if err := save(cfg, path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	val, _ := cfg.Get(args.ConfigKey)
	if args.JSON {
		return NewJSONResponse("config set", ConfigData{Path: path, Key: args.ConfigKey, Value: val}).Print()
	}
	fmt.Fprintf(out, "%s %s = %v\n", RenderConditional(SuccessStyle, "✓"), args.ConfigKey, val)
	return nil
}

func configKeys(args Args, out io.Writer) error {
	keys := config.GetAllKeys()
	if args.JSON {
		return NewJSONResponse("config keys", keys).Print()
	}
	for _, k := range keys {
		fmt.Fprintln(out, k)
	}
	return nil
}
