/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import (
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/c4wrd/canvas-chat/core/aggregates"
)

// maxRoundDigits is the largest useful precision for round(x, n) on a float64.
const maxRoundDigits = 323

func itoa(n int) string { return strconv.Itoa(n) }

func pluralArgs(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return itoa(n) + " arguments"
}

// builtinFunctions returns the default function whitelist.
func builtinFunctions() []Function {
	return []Function{
		{Name: "abs", MinArgs: 1, MaxArgs: 1, Doc: "abs(x)", Call: builtinAbs},
		{Name: "round", MinArgs: 1, MaxArgs: 2, Doc: "round(x[, n])", Call: builtinRound},
		{Name: "min", MinArgs: 1, MaxArgs: Variadic, Aggregate: true, Doc: "min(a, b, ...) or min([...])", Call: builtinMin},
		{Name: "max", MinArgs: 1, MaxArgs: Variadic, Aggregate: true, Doc: "max(a, b, ...) or max([...])", Call: builtinMax},
		{Name: "sum", MinArgs: 1, MaxArgs: Variadic, Aggregate: true, Doc: "sum(a, b, ...) or sum([...])", Call: builtinSum},
		{Name: "sqrt", MinArgs: 1, MaxArgs: 1, Doc: "sqrt(x)", Call: builtinSqrt},
		{Name: "sin", MinArgs: 1, MaxArgs: 1, Doc: "sin(x)", Call: floatFunc(math.Sin)},
		{Name: "cos", MinArgs: 1, MaxArgs: 1, Doc: "cos(x)", Call: floatFunc(math.Cos)},
		{Name: "tan", MinArgs: 1, MaxArgs: 1, Doc: "tan(x)", Call: floatFunc(math.Tan)},
		{Name: "log", MinArgs: 1, MaxArgs: 2, Doc: "log(x[, base])", Call: builtinLog},
		{Name: "log10", MinArgs: 1, MaxArgs: 1, Doc: "log10(x)", Call: positiveFunc(math.Log10)},
		{Name: "log2", MinArgs: 1, MaxArgs: 1, Doc: "log2(x)", Call: positiveFunc(math.Log2)},
		{Name: "exp", MinArgs: 1, MaxArgs: 1, Doc: "exp(x)", Call: builtinExp},
		{Name: "floor", MinArgs: 1, MaxArgs: 1, Doc: "floor(x)", Call: roundingFunc("floor", math.Floor)},
		{Name: "ceil", MinArgs: 1, MaxArgs: 1, Doc: "ceil(x)", Call: roundingFunc("ceil", math.Ceil)},
		{Name: "pow", MinArgs: 2, MaxArgs: 3, Doc: "pow(x, y[, m])", Call: builtinPow},
	}
}

func requireNumber(fn string, v Value) error {
	if v.IsNumeric() {
		return nil
	}
	return evalErrorf("%s() argument must be a number, not '%s'", fn, v.TypeName())
}

func domainError() error {
	return evalErrorf("math domain error")
}

func floatFunc(f func(float64) float64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		if !args[0].IsNumeric() {
			return Value{}, evalErrorf("must be real number, not %s", args[0].TypeName())
		}
		r := f(args[0].AsFloat())
		if math.IsNaN(r) {
			return Value{}, domainError()
		}
		return checkFloat("", r)
	}
}

// positiveFunc wraps a logarithm that is only defined for x > 0.
func positiveFunc(f func(float64) float64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		if !args[0].IsNumeric() {
			return Value{}, evalErrorf("must be real number, not %s", args[0].TypeName())
		}
		x := args[0].AsFloat()
		if x <= 0 {
			return Value{}, domainError()
		}
		return checkFloat("", f(x))
	}
}

// roundingFunc keeps integers and converts float results to int.
func roundingFunc(name string, f func(float64) float64) func([]Value) (Value, error) {
	return func(args []Value) (Value, error) {
		x := args[0]
		if err := requireNumber(name, x); err != nil {
			return Value{}, err
		}
		if x.IsInt() {
			return x, nil
		}
		return floatToInt(name, f(x.AsFloat()))
	}
}

func builtinAbs(args []Value) (Value, error) {
	x := args[0]
	if err := requireNumber("abs", x); err != nil {
		return Value{}, err
	}
	if x.IsInt() {
		if x.AsInt() < 0 {
			return negate(x)
		}
		return x, nil
	}
	return NewFloat(math.Abs(x.AsFloat())), nil
}

func builtinSqrt(args []Value) (Value, error) {
	if err := requireNumber("sqrt", args[0]); err != nil {
		return Value{}, err
	}
	x := args[0].AsFloat()
	if x < 0 {
		return Value{}, domainError()
	}
	return NewFloat(math.Sqrt(x)), nil
}

func builtinExp(args []Value) (Value, error) {
	if err := requireNumber("exp", args[0]); err != nil {
		return Value{}, err
	}
	return checkFloat("exp", math.Exp(args[0].AsFloat()))
}

func builtinLog(args []Value) (Value, error) {
	for _, a := range args {
		if err := requireNumber("log", a); err != nil {
			return Value{}, err
		}
	}
	x := args[0].AsFloat()
	if x <= 0 {
		return Value{}, domainError()
	}
	if len(args) == 1 {
		return checkFloat("log", math.Log(x))
	}
	base := args[1].AsFloat()
	if base <= 0 {
		return Value{}, domainError()
	}
	den := math.Log(base)
	if den == 0 {
		return Value{}, &DivisionByZeroError{Op: "log"}
	}
	return checkFloat("log", math.Log(x)/den)
}

func builtinRound(args []Value) (Value, error) {
	x := args[0]
	if err := requireNumber("round", x); err != nil {
		return Value{}, err
	}
	if len(args) == 1 {
		if x.IsInt() {
			return x, nil
		}
		return floatToInt("round", math.RoundToEven(x.AsFloat()))
	}
	if !args[1].IsInt() {
		return Value{}, evalErrorf("'%s' object cannot be interpreted as an integer", args[1].TypeName())
	}
	n := args[1].AsInt()
	if x.IsInt() {
		return roundInt(x.AsInt(), n)
	}
	return roundFloat(x.AsFloat(), n)
}

// roundInt rounds to a negative number of digits, half to even.
func roundInt(x, n int64) (Value, error) {
	if n >= 0 {
		return NewInt(x), nil
	}
	if n < -18 {
		// 10**19 and beyond leave int64: only results that round to zero fit.
		const half = 5_000_000_000_000_000_000
		if n == -19 && (x > half || x < -half) {
			return Value{}, &OverflowError{Op: "round"}
		}
		return NewInt(0), nil
	}
	p, _ := powInt(10, -n)
	q := x / p
	r := x % p
	if r < 0 {
		q--
		r += p
	}
	if 2*r > p || (2*r == p && q%2 != 0) {
		q++
	}
	out, ok := mulInt(q, p)
	if !ok {
		return Value{}, &OverflowError{Op: "round"}
	}
	return NewInt(out), nil
}

func roundFloat(x float64, n int64) (Value, error) {
	if math.IsInf(x, 0) || math.IsNaN(x) || n > maxRoundDigits {
		return NewFloat(x), nil
	}
	if n >= 0 {
		// Decimal formatting rounds the exact binary value half to even.
		f, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', int(n), 64), 64)
		if err != nil {
			return Value{}, &OverflowError{Op: "round"}
		}
		return checkFloat("round", f)
	}
	if n < -308 {
		return NewFloat(0 * x), nil
	}
	p := math.Pow(10, float64(-n))
	return checkFloat("round", math.RoundToEven(x/p)*p)
}

func builtinPow(args []Value) (Value, error) {
	if len(args) == 2 {
		return power(args[0], args[1])
	}
	for _, a := range args {
		if !a.IsInt() {
			return Value{}, evalErrorf("pow() 3rd argument not allowed unless all arguments are integers")
		}
	}
	m := args[2].AsInt()
	if m == 0 {
		return Value{}, evalErrorf("pow() 3rd argument cannot be 0")
	}
	x := big.NewInt(args[0].AsInt())
	y := big.NewInt(args[1].AsInt())
	mod := new(big.Int).Abs(big.NewInt(m))
	r := new(big.Int).Exp(x, y, mod)
	if r == nil {
		return Value{}, evalErrorf("base is not invertible for the given modulus")
	}
	// The result takes the sign of the modulus.
	if m < 0 && r.Sign() != 0 {
		r.Add(r, big.NewInt(m))
	}
	return NewInt(r.Int64()), nil
}

// aggregateInputs accepts either a single sequence or one or more numbers.
func aggregateInputs(fn string, args []Value) ([]Value, error) {
	items := args
	if len(args) == 1 && args[0].IsSequence() {
		items = args[0].Items()
	} else {
		for _, a := range args {
			if a.IsSequence() {
				return nil, evalErrorf("%s() takes either one sequence or numbers, not a mix", fn)
			}
		}
	}
	for _, item := range items {
		if !item.IsNumeric() {
			return nil, evalErrorf("%s() elements must be numbers, not '%s'", fn, item.TypeName())
		}
	}
	return items, nil
}

func accumulate(items []Value) *aggregates.NumericAggState {
	state := aggregates.NewNumericAggState()
	for _, item := range items {
		if item.IsInt() {
			state.AddInt(item.AsInt())
		} else {
			state.AddFloat(item.AsFloat())
		}
	}
	return state
}

func builtinSum(items []Value) (Value, error) {
	state := accumulate(items)
	if state.AllInt() {
		n, err := state.IntSum()
		if errors.Is(err, aggregates.ErrIntegerOverflow) {
			return Value{}, &OverflowError{Op: "sum"}
		}
		return NewInt(n), nil
	}
	return checkFloat("sum", state.FloatSum())
}

func builtinMin(items []Value) (Value, error) {
	if len(items) == 0 {
		return Value{}, evalErrorf("min() arg is an empty sequence")
	}
	return items[accumulate(items).MinIndex()], nil
}

func builtinMax(items []Value) (Value, error) {
	if len(items) == 0 {
		return Value{}, evalErrorf("max() arg is an empty sequence")
	}
	return items[accumulate(items).MaxIndex()], nil
}
