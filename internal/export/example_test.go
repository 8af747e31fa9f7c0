// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export_test

import (
	"fmt"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/export"
	"github.com/jeranaias/prefdiff/internal/snapshot"
	"github.com/jeranaias/prefdiff/internal/value"
)

// ExampleShellExporter shows a script without the snapshot header.
func ExampleShellExporter() {
	after := snapshot.MustBuild([]snapshot.Entry{
		{Domain: "com.example.dock", Key: "autohide", Value: value.Bool(true)},
	}, nil)
	cs := diff.Compute(nil, after)
	lines, err := command.NewGenerator(command.Options{}).Generate(cs)

	report := export.NewReport(nil, after, cs, lines, err)
	out, _ := export.NewShellExporter(&export.Options{}).Export(report)
	fmt.Print(string(out))

	// Output:
	// #!/bin/sh
	// # Preference changes recorded by prefdiff
	// # 1 domain +1
	//
	// defaults write com.example.dock autohide -bool true
}
