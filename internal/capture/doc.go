// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package capture reads the user's preference domains into a snapshot.
//
// A Reader lists domains and exports each one as property list data.
// DefaultsReader shells out to the defaults command; StaticReader serves
// fixed data from memory. Capture exports domains in parallel, decodes
// them and records any domain that could not be read as unreadable.
//
// # Key Types
//
//   - Reader: Domain listing and export
//   - DefaultsReader: Reader backed by the defaults command
//   - StaticReader: In-memory Reader
//   - Options: Concurrency, domain globs, progress callback and logger
//
// # Usage
//
//	reader := capture.NewDefaultsReader("defaults", 10*time.Second, false)
//	snap, err := capture.Capture(ctx, reader, capture.Options{
//	    Exclude: []string{"com.apple.spaces"},
//	})
package capture
