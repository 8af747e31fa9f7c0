// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command_test

import (
	"fmt"

	"github.com/jeranaias/prefdiff/internal/command"
	"github.com/jeranaias/prefdiff/internal/diff"
	"github.com/jeranaias/prefdiff/internal/snapshot"
	"github.com/jeranaias/prefdiff/internal/value"
)

func ExampleGenerator_Generate() {
	before := snapshot.MustBuild([]snapshot.Entry{
		{Domain: "com.example.dock", Key: "tilesize", Value: value.Int(36)},
		{Domain: "com.example.dock", Key: "legacyFlag", Value: value.String("x")},
	}, nil)
	after := snapshot.MustBuild([]snapshot.Entry{
		{Domain: "com.example.dock", Key: "tilesize", Value: value.Int(48)},
		{Domain: "com.example.dock", Key: "autohide", Value: value.Bool(true)},
	}, nil)

	lines, _ := command.NewGenerator(command.Options{}).Generate(diff.Compute(before, after))
	for _, l := range lines {
		fmt.Println(l.Text)
	}

	// Output:
	// defaults write com.example.dock autohide -bool true
	// defaults delete com.example.dock legacyFlag
	// defaults write com.example.dock tilesize -int 48
}

func ExampleScript() {
	after := snapshot.MustBuild([]snapshot.Entry{
		{Domain: "com.example.app", Key: "Recent", Value: value.Array(value.Array(value.String("a")))},
	}, nil)

	lines, _ := command.NewGenerator(command.Options{}).Generate(diff.Compute(nil, after))
	fmt.Print(command.Script(lines))

	// Output:
	// #!/bin/sh
	// # degraded: nested array at $[0]; written as a property list literal, scalar types inside it become strings
	// defaults write com.example.app Recent '(("a"))'
}
