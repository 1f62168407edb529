/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import (
	"math"
	"sort"
	"strings"
	"sync"
)

// UnaryFunc implements a prefix operator.
type UnaryFunc func(operand Value) (Value, error)

// BinaryFunc implements an infix operator.
type BinaryFunc func(left, right Value) (Value, error)

// Variadic marks a Function without an upper argument bound.
const Variadic = -1

// Function is a whitelisted callable with a fixed arity contract.
type Function struct {
	Name    string
	MinArgs int
	MaxArgs int // Variadic for no upper bound

	// Aggregate functions accept one sequence or a run of numbers. Call
	// receives the flattened numbers.
	Aggregate bool

	// Doc is a one-line usage summary, e.g. "round(x[, n])".
	Doc string

	Call func(args []Value) (Value, error)
}

// acceptsArity reports whether n arguments satisfy the contract.
func (f *Function) acceptsArity(n int) bool {
	return n >= f.MinArgs && (f.MaxArgs == Variadic || n <= f.MaxArgs)
}

// arityText describes the accepted argument counts for error messages.
func (f *Function) arityText() string {
	switch {
	case f.MaxArgs == Variadic:
		return pluralArgs(f.MinArgs) + " or more"
	case f.MinArgs == f.MaxArgs:
		return pluralArgs(f.MinArgs)
	case f.MaxArgs == f.MinArgs+1:
		return itoa(f.MinArgs) + " or " + pluralArgs(f.MaxArgs)
	default:
		return "from " + itoa(f.MinArgs) + " to " + pluralArgs(f.MaxArgs)
	}
}

// Policy is the whitelist of operators, functions and constants an Evaluator
// may resolve. A Policy is immutable once built and safe for concurrent use.
type Policy struct {
	unary     map[string]UnaryFunc
	binary    map[string]BinaryFunc
	functions map[string]*Function
	constants map[string]Value
}

// Option customizes a Policy under construction.
type Option func(*Policy)

// WithoutFunctions removes functions from the whitelist.
func WithoutFunctions(names ...string) Option {
	return func(p *Policy) {
		for _, name := range names {
			delete(p.functions, strings.ToLower(name))
		}
	}
}

// WithoutOperators removes unary and binary operators by symbol.
func WithoutOperators(symbols ...string) Option {
	return func(p *Policy) {
		for _, sym := range symbols {
			delete(p.unary, sym)
			delete(p.binary, sym)
		}
	}
}

// WithFunction adds or replaces a function. The name is case-folded.
func WithFunction(fn Function) Option {
	return func(p *Policy) {
		fn.Name = strings.ToLower(fn.Name)
		p.functions[fn.Name] = &fn
	}
}

// WithConstant adds or replaces a named constant. The name is case-folded.
func WithConstant(name string, value float64) Option {
	return func(p *Policy) {
		p.constants[strings.ToLower(name)] = NewFloat(value)
	}
}

// NewPolicy builds a policy from the default whitelist and the given options.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		unary: map[string]UnaryFunc{
			"-": negate,
			"+": identity,
		},
		binary: map[string]BinaryFunc{
			"+":  add,
			"-":  sub,
			"*":  mul,
			"/":  trueDiv,
			"//": floorDiv,
			"%":  mod,
			"**": power,
		},
		functions: make(map[string]*Function),
		constants: map[string]Value{
			"pi":  NewFloat(math.Pi),
			"e":   NewFloat(math.E),
			"tau": NewFloat(2 * math.Pi),
		},
	}
	for _, fn := range builtinFunctions() {
		p.functions[fn.Name] = &fn
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var (
	defaultPolicy     *Policy
	defaultPolicyOnce sync.Once
)

// DefaultPolicy returns the shared default whitelist.
func DefaultPolicy() *Policy {
	defaultPolicyOnce.Do(func() {
		defaultPolicy = NewPolicy()
	})
	return defaultPolicy
}

// ResolveUnary looks up a prefix operator by symbol.
func (p *Policy) ResolveUnary(symbol string) (UnaryFunc, bool) {
	fn, ok := p.unary[symbol]
	return fn, ok
}

// ResolveBinary looks up an infix operator by symbol.
func (p *Policy) ResolveBinary(symbol string) (BinaryFunc, bool) {
	fn, ok := p.binary[symbol]
	return fn, ok
}

// ResolveFunction looks up a function, ignoring case.
func (p *Policy) ResolveFunction(name string) (*Function, bool) {
	fn, ok := p.functions[strings.ToLower(name)]
	return fn, ok
}

// ResolveConstant looks up a constant, ignoring case.
func (p *Policy) ResolveConstant(name string) (Value, bool) {
	v, ok := p.constants[strings.ToLower(name)]
	return v, ok
}

// Functions returns the whitelisted functions sorted by name.
func (p *Policy) Functions() []Function {
	out := make([]Function, 0, len(p.functions))
	for _, fn := range p.functions {
		out = append(out, *fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Constants returns the whitelisted constant names, sorted.
func (p *Policy) Constants() []string {
	out := make([]string, 0, len(p.constants))
	for name := range p.constants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Operators returns the whitelisted binary operator symbols in precedence order.
func (p *Policy) Operators() []string {
	var out []string
	for _, sym := range []string{"+", "-", "*", "/", "//", "%", "**"} {
		if _, ok := p.binary[sym]; ok {
			out = append(out, sym)
		}
	}
	return out
}
