/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import "fmt"

// Evaluator evaluates an expression AST against a Policy
type Evaluator struct {
	policy *Policy
}

// NewEvaluator creates a new evaluator. A nil policy selects DefaultPolicy.
func NewEvaluator(policy *Policy) *Evaluator {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Evaluator{policy: policy}
}

// Eval evaluates the tree rooted at node
func (e *Evaluator) Eval(node Node) (Value, error) {
	switch n := node.(type) {
	case *NumberLit:
		if n.IsFloat {
			return NewFloat(n.Float), nil
		}
		return NewInt(n.Int), nil

	case *Ident:
		if v, ok := e.policy.ResolveConstant(n.Name); ok {
			return v, nil
		}
		return Value{}, &UnknownVariableError{Name: n.Name}

	case *UnaryOp:
		val, err := e.Eval(n.Expr)
		if err != nil {
			return Value{}, err
		}
		fn, ok := e.policy.ResolveUnary(n.Op.String())
		if !ok {
			return Value{}, &UnsupportedConstructError{Construct: "unary operator " + n.Op.String()}
		}
		return fn(val)

	case *BinaryOp:
		left, err := e.Eval(n.Left)
		if err != nil {
			return Value{}, err
		}
		right, err := e.Eval(n.Right)
		if err != nil {
			return Value{}, err
		}
		fn, ok := e.policy.ResolveBinary(n.Op.String())
		if !ok {
			return Value{}, &UnsupportedConstructError{Construct: "operator " + n.Op.String()}
		}
		return fn(left, right)

	case *CallExpr:
		return e.evalCall(n)

	case *ListLit:
		items, err := e.evalAll(n.Elems)
		if err != nil {
			return Value{}, err
		}
		return NewList(items...), nil

	case *TupleLit:
		items, err := e.evalAll(n.Elems)
		if err != nil {
			return Value{}, err
		}
		return NewTuple(items...), nil
	}

	return Value{}, &UnsupportedConstructError{Construct: fmt.Sprintf("%T", node)}
}

func (e *Evaluator) evalAll(nodes []Node) ([]Value, error) {
	out := make([]Value, 0, len(nodes))
	for _, n := range nodes {
		v, err := e.Eval(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *Evaluator) evalCall(call *CallExpr) (Value, error) {
	args, err := e.evalAll(call.Args)
	if err != nil {
		return Value{}, err
	}

	fn, ok := e.policy.ResolveFunction(call.Func)
	if !ok {
		return Value{}, &UnknownFunctionError{Name: call.Func}
	}
	if !fn.acceptsArity(len(args)) {
		exactly := ""
		if fn.MinArgs == fn.MaxArgs {
			exactly = "exactly "
		}
		return Value{}, evalErrorf("%s() takes %s%s (%d given)", fn.Name, exactly, fn.arityText(), len(args))
	}
	if fn.Aggregate {
		if args, err = aggregateInputs(fn.Name, args); err != nil {
			return Value{}, err
		}
	}
	return fn.Call(args)
}
