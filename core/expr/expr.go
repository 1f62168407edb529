/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors

Package expr provides a sandboxed arithmetic expression interpreter.
It supports:
  - Number literals: 123, 3.14, .5, 1e10
  - Arithmetic operators: +, -, *, /, //, %, ** and unary -, +
  - List literals [1, 2] and tuples (1, 2)
  - Whitelisted functions: abs(), round(), min(), max(), sum(), sqrt(),
    sin(), cos(), tan(), log(), log10(), log2(), exp(), floor(), ceil(), pow()
  - Named constants: pi, e, tau

Names are resolved through a Policy. Anything the Policy does not list is an
error, never a lookup into the host.
*/
package expr

// Expression represents a compiled expression ready for evaluation
type Expression struct {
	source string
	ast    Node
}

// Compile parses an expression string. Errors match ErrSyntax.
func Compile(source string) (*Expression, error) {
	ast, err := ParseString(source)
	if err != nil {
		return nil, err
	}
	return &Expression{source: source, ast: ast}, nil
}

// Source returns the original expression source
func (e *Expression) Source() string {
	return e.source
}

// AST returns the parsed tree
func (e *Expression) AST() Node {
	return e.ast
}

// Eval evaluates the expression under policy, or DefaultPolicy when nil.
func (e *Expression) Eval(policy *Policy) (Value, error) {
	return NewEvaluator(policy).Eval(e.ast)
}

// Evaluate parses and evaluates text with the default policy.
func Evaluate(text string) (Value, error) {
	e, err := Compile(text)
	if err != nil {
		return Value{}, err
	}
	return e.Eval(nil)
}
