// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package capture

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"howett.net/plist"

	"github.com/jeranaias/prefdiff/internal/value"
)

// ErrNotDictionary is returned when exported data is not a dictionary at the
// top level.
var ErrNotDictionary = errors.New("property list root is not a dictionary")

// DecodeError reports a value in exported data that has no Value equivalent.
type DecodeError struct {
	Key    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %s", e.Key, e.Reason)
}

// Decode parses an exported domain (XML, binary or OpenStep plist) into its
// top-level keys and values.
func Decode(data []byte) (map[string]value.Value, error) {
	var root interface{}
	if _, err := plist.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse property list: %w", err)
	}

	dict, ok := root.(map[string]interface{})
	if !ok {
		return nil, ErrNotDictionary
	}

	out := make(map[string]value.Value, len(dict))
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := convert(dict[k])
		if err != nil {
			return nil, &DecodeError{Key: k, Reason: err.Error()}
		}
		out[k] = v
	}
	return out, nil
}

// convert maps a decoded plist node to a Value.
func convert(raw interface{}) (value.Value, error) {
	switch x := raw.(type) {
	case bool:
		return value.Bool(x), nil
	case int64:
		return value.Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", x)
		}
		return value.Int(int64(x)), nil
	case plist.UID:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("uid %d overflows int64", uint64(x))
		}
		return value.Int(int64(x)), nil
	case float64:
		return value.Float(x), nil
	case float32:
		return value.Float(float64(x)), nil
	case string:
		return value.String(x), nil
	case []byte:
		return value.Data(x), nil
	case time.Time:
		return value.Date(x), nil
	case []interface{}:
		items := make([]value.Value, len(x))
		for i, item := range x {
			v, err := convert(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = v
		}
		return value.Array(items...), nil
	case map[string]interface{}:
		entries := make(map[string]value.Value, len(x))
		for k, item := range x {
			v, err := convert(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			entries[k] = v
		}
		return value.Dict(entries), nil
	case nil:
		return nil, errors.New("null value")
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}
}
