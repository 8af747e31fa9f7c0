// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package value models the typed values stored in the preferences system.
package value

import (
	"sort"
	"time"
)

// =============================================================================
// KIND
// =============================================================================

// Kind identifies the variant of a Value.
type Kind int

const (
	// KindBool is a boolean value
	KindBool Kind = iota
	// KindInt is a signed 64-bit integer
	KindInt
	// KindFloat is a 64-bit float
	KindFloat
	// KindString is a UTF-8 string
	KindString
	// KindArray is an ordered list of values
	KindArray
	// KindDict is a string-keyed dictionary
	KindDict
	// KindData is an opaque byte sequence
	KindData
	// KindDate is an absolute timestamp
	KindDate
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindData:
		return "data"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// IsContainer reports whether values of this kind hold other values.
func (k Kind) IsContainer() bool {
	return k == KindArray || k == KindDict
}

// =============================================================================
// VALUE VARIANTS
// =============================================================================

// Value is a preferences value. The interface is sealed: only the types in
// this package implement it.
type Value interface {
	Kind() Kind
	sealed()
}

// BoolValue is a boolean.
type BoolValue bool

// IntValue is a signed 64-bit integer.
type IntValue int64

// FloatValue is a 64-bit float.
type FloatValue float64

// StringValue is a string.
type StringValue string

// ArrayValue is an ordered list of values.
type ArrayValue struct {
	items []Value
}

// DictValue is a dictionary keyed by string.
type DictValue struct {
	entries map[string]Value
}

// DataValue is an opaque byte sequence.
type DataValue struct {
	bytes []byte
}

// DateValue is an absolute point in time.
type DateValue struct {
	t time.Time
}

func (BoolValue) Kind() Kind   { return KindBool }
func (IntValue) Kind() Kind    { return KindInt }
func (FloatValue) Kind() Kind  { return KindFloat }
func (StringValue) Kind() Kind { return KindString }
func (ArrayValue) Kind() Kind  { return KindArray }
func (DictValue) Kind() Kind   { return KindDict }
func (DataValue) Kind() Kind   { return KindData }
func (DateValue) Kind() Kind   { return KindDate }

func (BoolValue) sealed()   {}
func (IntValue) sealed()    {}
func (FloatValue) sealed()  {}
func (StringValue) sealed() {}
func (ArrayValue) sealed()  {}
func (DictValue) sealed()   {}
func (DataValue) sealed()   {}
func (DateValue) sealed()   {}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// Bool returns a boolean value.
func Bool(b bool) Value { return BoolValue(b) }

// Int returns an integer value.
func Int(i int64) Value { return IntValue(i) }

// Float returns a float value.
func Float(f float64) Value { return FloatValue(f) }

// String returns a string value.
func String(s string) Value { return StringValue(s) }

// Array returns an array holding a copy of items.
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return ArrayValue{items: cp}
}

// Dict returns a dictionary holding a copy of entries.
func Dict(entries map[string]Value) Value {
	cp := make(map[string]Value, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	return DictValue{entries: cp}
}

// Data returns a data value holding a copy of b.
func Data(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return DataValue{bytes: cp}
}

// Date returns a date value. The location is kept as given; only the
// instant matters for equality.
func Date(t time.Time) Value { return DateValue{t: t} }

// =============================================================================
// ACCESSORS
// =============================================================================

// Len returns the number of elements.
func (a ArrayValue) Len() int { return len(a.items) }

// At returns the element at index i.
func (a ArrayValue) At(i int) Value { return a.items[i] }

// Items returns a copy of the elements.
func (a ArrayValue) Items() []Value {
	cp := make([]Value, len(a.items))
	copy(cp, a.items)
	return cp
}

// Len returns the number of entries.
func (d DictValue) Len() int { return len(d.entries) }

// Get returns the value stored under key.
func (d DictValue) Get(key string) (Value, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// Keys returns the dictionary keys in sorted order.
func (d DictValue) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bytes returns a copy of the data.
func (d DataValue) Bytes() []byte {
	cp := make([]byte, len(d.bytes))
	copy(cp, d.bytes)
	return cp
}

// Len returns the number of bytes.
func (d DataValue) Len() int { return len(d.bytes) }

// Time returns the timestamp.
func (d DateValue) Time() time.Time { return d.t }

// Depth returns how many container levels v has. Scalars have depth 0, a
// flat array or dictionary has depth 1, an array of dictionaries depth 2.
func Depth(v Value) int {
	switch x := v.(type) {
	case ArrayValue:
		deepest := 0
		for _, item := range x.items {
			if d := Depth(item); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	case DictValue:
		deepest := 0
		for _, item := range x.entries {
			if d := Depth(item); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	default:
		return 0
	}
}
