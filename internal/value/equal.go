// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package value

import (
	"bytes"
	"math"
)

// Equal reports whether a and b are structurally equal.
//
// Floats are compared bit for bit: NaN equals a NaN with the same payload,
// and +0 differs from -0. Dates compare by instant, ignoring location.
// A nil Value only equals another nil Value.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case BoolValue:
		y, ok := b.(BoolValue)
		return ok && x == y
	case IntValue:
		y, ok := b.(IntValue)
		return ok && x == y
	case FloatValue:
		y, ok := b.(FloatValue)
		return ok && math.Float64bits(float64(x)) == math.Float64bits(float64(y))
	case StringValue:
		y, ok := b.(StringValue)
		return ok && x == y
	case DataValue:
		y, ok := b.(DataValue)
		return ok && bytes.Equal(x.bytes, y.bytes)
	case DateValue:
		y, ok := b.(DateValue)
		return ok && x.t.Equal(y.t)
	case ArrayValue:
		y, ok := b.(ArrayValue)
		if !ok || len(x.items) != len(y.items) {
			return false
		}
		for i := range x.items {
			if !Equal(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case DictValue:
		y, ok := b.(DictValue)
		if !ok || len(x.entries) != len(y.entries) {
			return false
		}
		for k, xv := range x.entries {
			yv, found := y.entries[k]
			if !found || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}
