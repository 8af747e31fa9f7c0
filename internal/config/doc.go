// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates and saves prefdiff settings.
//
// A Config has one section per stage of a comparison: Capture (which
// domains to read and how), Commands (how changes become defaults
// commands, including the nested-value policy and the filter expression),
// Watch, Export and UI.
//
// Load starts from Default, reads ~/.prefdiff/config.toml (or config.json
// when no TOML file exists), then applies PREFDIFF_* environment overrides
// and validates the result. An invalid file is an error; a missing one is
// not. Keys are addressed in dot notation ("capture.concurrency") by Get,
// Set and GetAllKeys, which back "prefdiff config get/set/keys".
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	reader := capture.NewDefaultsReader(cfg.Capture.Program, cfg.Capture.Timeout(), cfg.Capture.CurrentHost)
package config
