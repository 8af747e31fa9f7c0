// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package value models the typed values stored in the preferences system.
//
// A Value is a closed set of variants mirroring property list types. Every
// consumer switches over the concrete types, so adding a variant means
// touching each switch.
//
// # Key Types
//
//   - Value: Sealed interface implemented by the variants below
//   - Bool, Int, Float, String: Scalar variants
//   - Array: Ordered sequence of Values
//   - Dict: String-keyed mapping, iterated in sorted key order
//   - Data: Opaque bytes
//   - Date: Absolute timestamp
//
// # Equality
//
// Equal is structural and exact. Arrays compare element-wise, dictionaries
// compare by key set and values, and floats compare by their IEEE-754 bit
// pattern. Values of different kinds are never equal, so Int(1) and
// Float(1) differ.
//
// # Usage
//
//	before := value.Int(36)
//	after := value.Int(48)
//	if !value.Equal(before, after) {
//	    fmt.Println(value.Format(after))
//	}
package value
