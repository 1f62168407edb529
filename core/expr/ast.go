/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import (
	"fmt"
	"strings"
)

// Node is the interface for all AST nodes. The set of implementations is
// closed: only the types in this file satisfy it.
type Node interface {
	node()
	// Pos returns the byte offset of the node in the source.
	Pos() int
	// String renders the node as fully parenthesized source text that parses
	// back to an equivalent tree.
	String() string
}

// UnaryOperator identifies a prefix operator
type UnaryOperator int

const (
	OpNeg UnaryOperator = iota
	OpPos
)

// String returns the operator symbol
func (op UnaryOperator) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpPos:
		return "+"
	default:
		return fmt.Sprintf("unary(%d)", int(op))
	}
}

// BinaryOperator identifies an infix operator
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
)

// String returns the operator symbol
func (op BinaryOperator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpFloorDiv:
		return "//"
	case OpMod:
		return "%"
	case OpPow:
		return "**"
	default:
		return fmt.Sprintf("binary(%d)", int(op))
	}
}

// NumberLit represents a numeric literal. Exactly one of Int and Float is
// meaningful, selected by IsFloat.
type NumberLit struct {
	Text    string
	IsFloat bool
	Int     int64
	Float   float64
	At      int
}

func (n *NumberLit) node()          {}
func (n *NumberLit) Pos() int       { return n.At }
func (n *NumberLit) String() string { return n.Text }

// Ident represents a constant reference
type Ident struct {
	Name string
	At   int
}

func (n *Ident) node()          {}
func (n *Ident) Pos() int       { return n.At }
func (n *Ident) String() string { return n.Name }

// UnaryOp represents a unary operation
type UnaryOp struct {
	Op   UnaryOperator
	Expr Node
	At   int
}

func (n *UnaryOp) node()    {}
func (n *UnaryOp) Pos() int { return n.At }
func (n *UnaryOp) String() string {
	return "(" + n.Op.String() + n.Expr.String() + ")"
}

// BinaryOp represents a binary operation
type BinaryOp struct {
	Op    BinaryOperator
	Left  Node
	Right Node
	At    int
}

func (n *BinaryOp) node()    {}
func (n *BinaryOp) Pos() int { return n.At }
func (n *BinaryOp) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

// CallExpr represents a function call. Func is always the literal identifier
// that preceded the argument list.
type CallExpr struct {
	Func string
	Args []Node
	At   int
}

func (n *CallExpr) node()    {}
func (n *CallExpr) Pos() int { return n.At }
func (n *CallExpr) String() string {
	return n.Func + "(" + joinNodes(n.Args) + ")"
}

// ListLit represents a bracketed list literal
type ListLit struct {
	Elems []Node
	At    int
}

func (n *ListLit) node()          {}
func (n *ListLit) Pos() int       { return n.At }
func (n *ListLit) String() string { return "[" + joinNodes(n.Elems) + "]" }

// TupleLit represents a parenthesized tuple of two or more items
type TupleLit struct {
	Elems []Node
	At    int
}

func (n *TupleLit) node()          {}
func (n *TupleLit) Pos() int       { return n.At }
func (n *TupleLit) String() string { return "(" + joinNodes(n.Elems) + ")" }

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
