// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - "did you mean" hints for mistyped commands, flags and keys.
package cli

import (
	"slices"
	"strings"

	"github.com/jeranaias/prefdiff/internal/config"
)

// commandWords are the accepted command words, aliases included.
var commandWords = []string{
	"tui", "diff", "watch", "config", "doctor", "version", "help",
	"d", "w", "cfg", "doc",
}

// configSubcommands are the words accepted after "prefdiff config".
var configSubcommands = []string{"show", "path", "init", "get", "set", "keys"}

// diffFlags are the long flags of diff and watch.
var diffFlags = []string{
	"--copy", "--current-host", "--from-start",
	"--format", "--output", "--filter", "--policy",
	"--json", "--no-color", "--verbose", "--debug", "--config",
}

// SuggestCommand returns the command word closest to input, or "".
func SuggestCommand(input string) string {
	return closest(strings.ToLower(input), commandWords)
}

// SuggestConfigSubcommand returns the config subcommand closest to input.
func SuggestConfigSubcommand(input string) string {
	return closest(strings.ToLower(input), configSubcommands)
}

// SuggestConfigKey returns the dotted config key closest to input. Keys are
// compared in full and by their last segment, so "concurency" finds
// "capture.concurrency".
func SuggestConfigKey(input string) string {
	keys := config.GetAllKeys()
	input = strings.ToLower(input)
	if s := closest(input, keys); s != "" {
		return s
	}
	if strings.Contains(input, ".") {
		return ""
	}
	for _, k := range keys {
		leaf := k[strings.LastIndex(k, ".")+1:]
		if leaf != input && editDistance(input, leaf) <= allowedEdits(input) {
			return k
		}
	}
	return ""
}

// SuggestFlag returns the diff/watch flag closest to flag, ignoring any
// "=value" suffix.
func SuggestFlag(flag string) string {
	name, _, _ := strings.Cut(flag, "=")
	if !strings.HasPrefix(name, "--") {
		name = "--" + strings.TrimLeft(name, "-")
		if slices.Contains(diffFlags, name) {
			return name
		}
	}
	return closest(name, diffFlags)
}

// closest picks the candidate with the fewest edits from input, within the
// budget of allowedEdits. Exact matches and inputs shorter than two
// characters yield "".
func closest(input string, candidates []string) string {
	if len([]rune(input)) < 2 {
		return ""
	}
	budget := allowedEdits(input)
	best, bestDist := "", budget+1
	for _, c := range candidates {
		d := editDistance(input, c)
		if d == 0 {
			return ""
		}
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// allowedEdits grows with the input: one edit up to three characters, two
// up to eight, three beyond.
func allowedEdits(input string) int {
	switch n := len([]rune(input)); {
	case n <= 3:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// editDistance is the Levenshtein distance between a and b, in runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
