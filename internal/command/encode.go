// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/prefdiff/internal/value"
)

// shapeProblem describes why a value has no flat encoding.
type shapeProblem struct {
	path   string
	reason string
}

// encodeValue returns the type-tagged arguments for v, or a problem when v
// cannot be written with flat defaults syntax.
func encodeValue(v value.Value) ([]string, *shapeProblem) {
	switch x := v.(type) {
	case value.ArrayValue:
		args := []string{"-array"}
		for i := 0; i < x.Len(); i++ {
			item := x.At(i)
			if item.Kind().IsContainer() {
				return nil, &shapeProblem{path: "$[" + strconv.Itoa(i) + "]", reason: "nested " + item.Kind().String()}
			}
			scalar, problem := encodeScalar(item, "$["+strconv.Itoa(i)+"]")
			if problem != nil {
				return nil, problem
			}
			args = append(args, scalar...)
		}
		return args, nil

	case value.DictValue:
		args := []string{"-dict"}
		for _, k := range x.Keys() {
			item, _ := x.Get(k)
			if item.Kind().IsContainer() {
				return nil, &shapeProblem{path: "$." + k, reason: "nested " + item.Kind().String()}
			}
			scalar, problem := encodeScalar(item, "$."+k)
			if problem != nil {
				return nil, problem
			}
			args = append(args, k)
			args = append(args, scalar...)
		}
		return args, nil

	default:
		return encodeScalar(v, "$")
	}
}

// encodeScalar returns the tag and literal for a non-container value.
func encodeScalar(v value.Value, path string) ([]string, *shapeProblem) {
	switch x := v.(type) {
	case value.BoolValue:
		return []string{"-bool", strconv.FormatBool(bool(x))}, nil
	case value.IntValue:
		return []string{"-int", strconv.FormatInt(int64(x), 10)}, nil
	case value.FloatValue:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &shapeProblem{path: path, reason: "non-finite float"}
		}
		return []string{"-float", strconv.FormatFloat(f, 'f', -1, 64)}, nil
	case value.StringValue:
		return []string{"-string", string(x)}, nil
	case value.DataValue:
		return []string{"-data", hex.EncodeToString(x.Bytes())}, nil
	case value.DateValue:
		if x.Time().Nanosecond() != 0 {
			return nil, &shapeProblem{path: path, reason: "sub-second date"}
		}
		return []string{"-date", formatDate(x.Time())}, nil
	default:
		return nil, &shapeProblem{path: path, reason: "unsupported type"}
	}
}

// formatDate renders whole seconds, the precision -date accepts.
func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// annotated renders v for PolicyAnnotate after encodeValue reported p. A
// scalar at the root keeps a type tag; anything else becomes a property
// list literal. The note says what was lost.
func annotated(v value.Value, p *shapeProblem) (args []string, note string) {
	if p.path == "$" {
		switch x := v.(type) {
		case value.FloatValue:
			return []string{"-string", strconv.FormatFloat(float64(x), 'f', -1, 64)},
				p.reason + " at $; written as a string"
		case value.DateValue:
			exact := x.Time().UTC().Format(time.RFC3339Nano)
			return []string{"-date", formatDate(x.Time())},
				p.reason + " at $; " + exact + " truncated to whole seconds"
		}
	}
	return []string{plistLiteral(v)},
		p.reason + " at " + p.path + "; written as a property list literal, scalar types inside it become strings"
}

// =============================================================================
// PROPERTY LIST LITERAL
// =============================================================================

// plistLiteral renders v in old-style (OpenStep) property list syntax, which
// defaults accepts as a single value argument. The syntax has no numbers,
// booleans or dates, so those are written as their string forms.
func plistLiteral(v value.Value) string {
	var sb strings.Builder
	writeLiteral(&sb, v)
	return sb.String()
}

func writeLiteral(sb *strings.Builder, v value.Value) {
	switch x := v.(type) {
	case value.BoolValue:
		if x {
			sb.WriteString("1")
		} else {
			sb.WriteString("0")
		}
	case value.IntValue:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case value.FloatValue:
		writeQuoted(sb, strconv.FormatFloat(float64(x), 'f', -1, 64))
	case value.StringValue:
		writeQuoted(sb, string(x))
	case value.DataValue:
		sb.WriteString("<" + hex.EncodeToString(x.Bytes()) + ">")
	case value.DateValue:
		writeQuoted(sb, x.Time().UTC().Format(time.RFC3339Nano))
	case value.ArrayValue:
		sb.WriteString("(")
		for i := 0; i < x.Len(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeLiteral(sb, x.At(i))
		}
		sb.WriteString(")")
	case value.DictValue:
		sb.WriteString("{")
		for _, k := range x.Keys() {
			item, _ := x.Get(k)
			sb.WriteString(" ")
			writeQuoted(sb, k)
			sb.WriteString(" = ")
			writeLiteral(sb, item)
			sb.WriteString(";")
		}
		sb.WriteString(" }")
	}
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}
