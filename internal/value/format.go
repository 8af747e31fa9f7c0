// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package value

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxDataPreview is the number of bytes shown before a data value is elided.
const maxDataPreview = 16

// Format renders v in a compact, human-readable form for display. It is not
// a serialization format; use the command package for replayable output.
func Format(v Value) string {
	var sb strings.Builder
	writeFormatted(&sb, v)
	return sb.String()
}

func writeFormatted(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("<nil>")
	case BoolValue:
		sb.WriteString(strconv.FormatBool(bool(x)))
	case IntValue:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case FloatValue:
		sb.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 64))
	case StringValue:
		sb.WriteString(strconv.Quote(string(x)))
	case DataValue:
		if len(x.bytes) > maxDataPreview {
			fmt.Fprintf(sb, "<%s... (%d bytes)>", hex.EncodeToString(x.bytes[:maxDataPreview]), len(x.bytes))
		} else {
			sb.WriteString("<" + hex.EncodeToString(x.bytes) + ">")
		}
	case DateValue:
		sb.WriteString(x.t.UTC().Format(time.RFC3339))
	case ArrayValue:
		sb.WriteString("[")
		for i, item := range x.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeFormatted(sb, item)
		}
		sb.WriteString("]")
	case DictValue:
		sb.WriteString("{")
		for i, k := range x.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteString(": ")
			writeFormatted(sb, x.entries[k])
		}
		sb.WriteString("}")
	}
}
