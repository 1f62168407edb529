/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import (
	"math"
	"strconv"
	"strings"
)

// Value represents a runtime value
type Value struct {
	typ    valueType
	intVal int64
	numVal float64
	items  []Value
}

type valueType int

const (
	typeInt   valueType = iota // Integer value
	typeFloat                  // Floating-point value
	typeList                   // List of values
	typeTuple                  // Tuple of values, valued like a list
)

// NewInt creates an integer value
func NewInt(n int64) Value {
	return Value{typ: typeInt, intVal: n}
}

// NewFloat creates a floating-point value
func NewFloat(n float64) Value {
	return Value{typ: typeFloat, numVal: n}
}

// NewList creates a list value
func NewList(items ...Value) Value {
	return Value{typ: typeList, items: items}
}

// NewTuple creates a tuple value
func NewTuple(items ...Value) Value {
	return Value{typ: typeTuple, items: items}
}

// IsInt checks if value is an integer
func (v Value) IsInt() bool { return v.typ == typeInt }

// IsFloat checks if value is a floating-point number
func (v Value) IsFloat() bool { return v.typ == typeFloat }

// IsNumeric checks if value is any numeric type (int or float)
func (v Value) IsNumeric() bool { return v.typ == typeInt || v.typ == typeFloat }

// IsSequence checks if value is a list or tuple
func (v Value) IsSequence() bool { return v.typ == typeList || v.typ == typeTuple }

// IsTuple checks if value is a tuple
func (v Value) IsTuple() bool { return v.typ == typeTuple }

// AsInt returns the integer value. Floats are truncated.
func (v Value) AsInt() int64 {
	switch v.typ {
	case typeInt:
		return v.intVal
	case typeFloat:
		return int64(v.numVal)
	default:
		return 0
	}
}

// AsFloat returns the floating-point value
func (v Value) AsFloat() float64 {
	switch v.typ {
	case typeFloat:
		return v.numVal
	case typeInt:
		return float64(v.intVal)
	default:
		return 0
	}
}

// Items returns the elements of a list or tuple
func (v Value) Items() []Value {
	return v.items
}

// TypeName returns a human-readable name for the value's type
func (v Value) TypeName() string {
	switch v.typ {
	case typeInt:
		return "int"
	case typeFloat:
		return "float"
	case typeList:
		return "list"
	case typeTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// Equal reports whether two values have the same kind and contents.
// Floats compare bitwise so that NaN payloads and signed zeros are stable.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case typeInt:
		return v.intVal == other.intVal
	case typeFloat:
		return math.Float64bits(v.numVal) == math.Float64bits(other.numVal)
	default:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	}
}

// Native converts the value to int64, float64 or []any for serialization.
func (v Value) Native() any {
	switch v.typ {
	case typeInt:
		return v.intVal
	case typeFloat:
		return v.numVal
	default:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Native()
		}
		return out
	}
}

// String renders the value the way a Python prompt would echo it:
// floats always carry a fraction or exponent, tuples use parentheses.
func (v Value) String() string {
	switch v.typ {
	case typeInt:
		return strconv.FormatInt(v.intVal, 10)
	case typeFloat:
		return formatFloat(v.numVal)
	case typeTuple:
		parts := v.itemStrings()
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "[" + strings.Join(v.itemStrings(), ", ") + "]"
	}
}

func (v Value) itemStrings() []string {
	parts := make([]string, len(v.items))
	for i, item := range v.items {
		parts[i] = item.String()
	}
	return parts
}

// formatFloat uses the shortest repr, switching to exponent notation below
// 1e-4 and from 1e16, matching repr(float).
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
