/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import (
	"math"
)

// checkFloat turns a non-finite float result into the matching error.
func checkFloat(op string, f float64) (Value, error) {
	if math.IsInf(f, 0) {
		return Value{}, &OverflowError{Op: op}
	}
	if math.IsNaN(f) {
		return Value{}, evalErrorf("math domain error")
	}
	return NewFloat(f), nil
}

// floatToInt converts an integral float to int64, failing outside its range.
func floatToInt(op string, f float64) (Value, error) {
	if math.IsNaN(f) {
		return Value{}, evalErrorf("cannot convert float NaN to integer")
	}
	if f >= math.MaxInt64 || f < math.MinInt64 || math.IsInf(f, 0) {
		return Value{}, &OverflowError{Op: op}
	}
	return NewInt(int64(f)), nil
}

func requireNumbers(op string, left, right Value) error {
	if left.IsNumeric() && right.IsNumeric() {
		return nil
	}
	return evalErrorf("unsupported operand type(s) for %s: '%s' and '%s'", op, left.TypeName(), right.TypeName())
}

func identity(v Value) (Value, error) {
	if !v.IsNumeric() {
		return Value{}, evalErrorf("bad operand type for unary +: '%s'", v.TypeName())
	}
	return v, nil
}

func negate(v Value) (Value, error) {
	switch {
	case v.IsInt():
		if v.AsInt() == math.MinInt64 {
			return Value{}, &OverflowError{Op: "-"}
		}
		return NewInt(-v.AsInt()), nil
	case v.IsFloat():
		return NewFloat(-v.AsFloat()), nil
	}
	return Value{}, evalErrorf("bad operand type for unary -: '%s'", v.TypeName())
}

func add(left, right Value) (Value, error) {
	if err := requireNumbers("+", left, right); err != nil {
		return Value{}, err
	}
	if left.IsInt() && right.IsInt() {
		a, b := left.AsInt(), right.AsInt()
		sum := a + b
		if (b > 0 && sum < a) || (b < 0 && sum > a) {
			return Value{}, &OverflowError{Op: "+"}
		}
		return NewInt(sum), nil
	}
	return checkFloat("+", left.AsFloat()+right.AsFloat())
}

func sub(left, right Value) (Value, error) {
	if err := requireNumbers("-", left, right); err != nil {
		return Value{}, err
	}
	if left.IsInt() && right.IsInt() {
		a, b := left.AsInt(), right.AsInt()
		diff := a - b
		if (b < 0 && diff < a) || (b > 0 && diff > a) {
			return Value{}, &OverflowError{Op: "-"}
		}
		return NewInt(diff), nil
	}
	return checkFloat("-", left.AsFloat()-right.AsFloat())
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

func mul(left, right Value) (Value, error) {
	if err := requireNumbers("*", left, right); err != nil {
		return Value{}, err
	}
	if left.IsInt() && right.IsInt() {
		p, ok := mulInt(left.AsInt(), right.AsInt())
		if !ok {
			return Value{}, &OverflowError{Op: "*"}
		}
		return NewInt(p), nil
	}
	return checkFloat("*", left.AsFloat()*right.AsFloat())
}

func trueDiv(left, right Value) (Value, error) {
	if err := requireNumbers("/", left, right); err != nil {
		return Value{}, err
	}
	// Division always returns float
	r := right.AsFloat()
	if r == 0 {
		return Value{}, &DivisionByZeroError{Op: "/"}
	}
	return checkFloat("/", left.AsFloat()/r)
}

// floatDivmod returns floor division and modulo with the sign of the divisor,
// keeping the two consistent the way float.__divmod__ does.
func floatDivmod(vx, wx float64) (float64, float64) {
	mod := math.Mod(vx, wx)
	div := (vx - mod) / wx
	if mod != 0 {
		if (wx < 0) != (mod < 0) {
			mod += wx
			div -= 1.0
		}
	} else {
		mod = math.Copysign(0, wx)
	}
	var floordiv float64
	if div != 0 {
		floordiv = math.Floor(div)
		if div-floordiv > 0.5 {
			floordiv += 1.0
		}
	} else {
		floordiv = math.Copysign(0, vx/wx)
	}
	return floordiv, mod
}

func floorDiv(left, right Value) (Value, error) {
	if err := requireNumbers("//", left, right); err != nil {
		return Value{}, err
	}
	if right.AsFloat() == 0 {
		return Value{}, &DivisionByZeroError{Op: "//"}
	}
	if left.IsInt() && right.IsInt() {
		a, b := left.AsInt(), right.AsInt()
		if a == math.MinInt64 && b == -1 {
			return Value{}, &OverflowError{Op: "//"}
		}
		q := a / b
		if a%b != 0 && (a < 0) != (b < 0) {
			q--
		}
		return NewInt(q), nil
	}
	q, _ := floatDivmod(left.AsFloat(), right.AsFloat())
	return checkFloat("//", q)
}

func mod(left, right Value) (Value, error) {
	if err := requireNumbers("%", left, right); err != nil {
		return Value{}, err
	}
	if right.AsFloat() == 0 {
		return Value{}, &DivisionByZeroError{Op: "%"}
	}
	if left.IsInt() && right.IsInt() {
		a, b := left.AsInt(), right.AsInt()
		r := a % b
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return NewInt(r), nil
	}
	_, m := floatDivmod(left.AsFloat(), right.AsFloat())
	return checkFloat("%", m)
}

// powInt raises base to a non-negative exponent by squaring.
func powInt(base, exp int64) (int64, bool) {
	switch base {
	case 0:
		if exp == 0 {
			return 1, true
		}
		return 0, true
	case 1:
		return 1, true
	case -1:
		if exp%2 == 0 {
			return 1, true
		}
		return -1, true
	}
	result := int64(1)
	for exp > 0 {
		var ok bool
		if exp&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

func power(left, right Value) (Value, error) {
	if err := requireNumbers("**", left, right); err != nil {
		return Value{}, err
	}
	if left.IsInt() && right.IsInt() && right.AsInt() >= 0 {
		p, ok := powInt(left.AsInt(), right.AsInt())
		if !ok {
			return Value{}, &OverflowError{Op: "**"}
		}
		return NewInt(p), nil
	}
	base, exp := left.AsFloat(), right.AsFloat()
	if base == 0 && exp < 0 {
		return Value{}, &DivisionByZeroError{Op: "**"}
	}
	if base < 0 && exp != math.Trunc(exp) {
		return Value{}, evalErrorf("negative number cannot be raised to a fractional power")
	}
	return checkFloat("**", math.Pow(base, exp))
}
