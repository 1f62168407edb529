/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by both LexError and ParseError.
var ErrSyntax = errors.New("invalid expression syntax")

// LexError reports a character outside the expression alphabet.
type LexError struct {
	Pos  int
	Char rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%v: unexpected character %q at position %d", ErrSyntax, e.Char, e.Pos)
}

func (e *LexError) Unwrap() error { return ErrSyntax }

// ParseError reports a token sequence that does not match the grammar.
type ParseError struct {
	Pos      int
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: expected %s at position %d, found %s", ErrSyntax, e.Expected, e.Pos, e.Found)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// UnknownVariableError reports an identifier that is not a whitelisted constant.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable: %s", e.Name)
}

// UnknownFunctionError reports a call to a function that is not whitelisted.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function: %s", e.Name)
}

// UnsupportedConstructError reports a node or operator the evaluator has no
// rule for. Only reachable when the grammar and the policy disagree.
type UnsupportedConstructError struct {
	Construct string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("unsupported expression construct: %s", e.Construct)
}

// DivisionByZeroError reports a zero divisor.
type DivisionByZeroError struct {
	Op string
}

func (e *DivisionByZeroError) Error() string {
	switch e.Op {
	case "%":
		return "modulo by zero"
	case "**":
		return "zero cannot be raised to a negative power"
	default:
		return "division by zero"
	}
}

// OverflowError reports a result outside the representable numeric range.
type OverflowError struct {
	Op string
}

func (e *OverflowError) Error() string {
	if e.Op == "" {
		return "numeric result out of range"
	}
	return fmt.Sprintf("numeric result out of range in %s", e.Op)
}

// EvaluationError covers arity mismatches and host arithmetic failures that
// have no dedicated type.
type EvaluationError struct {
	Msg string
}

func (e *EvaluationError) Error() string {
	return e.Msg
}

func evalErrorf(format string, args ...any) *EvaluationError {
	return &EvaluationError{Msg: fmt.Sprintf(format, args...)}
}
