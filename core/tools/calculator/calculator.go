/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package calculator exposes the expression evaluator as an LLM tool.
package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/jcgregorio/logger"
	"github.com/jcgregorio/slog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xeipuuv/gojsonschema"

	"github.com/c4wrd/canvas-chat/core/expr"
	"github.com/c4wrd/canvas-chat/core/tools"
)

// ID is the registry id and tool name of the calculator.
const ID = "calculator"

// Arguments is the argument object the model sends.
type Arguments struct {
	Expression string `json:"expression" jsonschema:"description=Mathematical expression to evaluate. Examples: '2 + 2' or 'sqrt(16)' or 'sin(pi/2)' or '2**10'"`
}

// Options configures a calculator tool.
type Options struct {
	// MaxExpressionLength rejects longer expressions. Zero means no limit.
	MaxExpressionLength int

	// Policy defaults to expr.DefaultPolicy.
	Policy *expr.Policy

	Logger     slog.Logger
	Registerer prometheus.Registerer
}

// Tool evaluates arithmetic expressions.
type Tool struct {
	maxLen      int
	policy      *expr.Policy
	log         slog.Logger
	evaluations *prometheus.CounterVec

	description string
	parameters  map[string]any
	schema      *gojsonschema.Schema
}

var _ tools.Tool = (*Tool)(nil)

// New creates a calculator tool.
func New(opts Options) (*Tool, error) {
	t := &Tool{
		maxLen: opts.MaxExpressionLength,
		policy: opts.Policy,
		log:    opts.Logger,
	}
	if t.policy == nil {
		t.policy = expr.DefaultPolicy()
	}
	if t.log == nil {
		t.log = logger.NewNopLogger()
	}
	t.evaluations = tools.RegisterCounterVec(opts.Registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_chat_calculator_evaluations_total",
		Help: "Calculator evaluations by outcome.",
	}, []string{"outcome"}))

	params, err := reflectParameters()
	if err != nil {
		return nil, err
	}
	t.parameters = params
	t.schema, err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(params))
	if err != nil {
		return nil, fmt.Errorf("failed to compile argument schema: %w", err)
	}
	t.description = describe(t.policy)
	return t, nil
}

// Registration returns a registry entry serving a single calculator instance.
func Registration(opts Options, priority int, enabled bool) (tools.Registration, error) {
	t, err := New(opts)
	if err != nil {
		return tools.Registration{}, err
	}
	return tools.Registration{
		ID:       ID,
		Factory:  func() tools.Tool { return t },
		Priority: priority,
		Enabled:  enabled,
	}, nil
}

// reflectParameters derives the JSON Schema of Arguments as plain JSON values.
func reflectParameters() (map[string]any, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	b, err := json.Marshal(r.Reflect(&Arguments{}))
	if err != nil {
		return nil, fmt.Errorf("failed to encode argument schema: %w", err)
	}
	var params map[string]any
	if err := json.Unmarshal(b, &params); err != nil {
		return nil, fmt.Errorf("failed to decode argument schema: %w", err)
	}
	// Function-calling parameters are a bare object schema.
	delete(params, "$schema")
	delete(params, "$id")
	return params, nil
}

func describe(p *expr.Policy) string {
	var names []string
	for _, fn := range p.Functions() {
		names = append(names, fn.Name)
	}
	return fmt.Sprintf("Evaluate mathematical expressions. Supports basic arithmetic (%s), "+
		"math functions (%s), and constants (%s).",
		strings.Join(p.Operators(), ", "), strings.Join(names, ", "), strings.Join(p.Constants(), ", "))
}

// Name implements tools.Tool.
func (t *Tool) Name() string { return ID }

// Description implements tools.Tool.
func (t *Tool) Description() string { return t.description }

// Parameters implements tools.Tool.
func (t *Tool) Parameters() map[string]any { return t.parameters }

// Execute implements tools.Tool. Evaluation failures are reported in the
// "error" field, never as a Go error.
func (t *Tool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	raw, ok := args["expression"]
	if !ok || raw == "" {
		t.evaluations.WithLabelValues("empty").Inc()
		return map[string]any{"expression": "", "error": "No expression provided"}, nil
	}

	result, err := t.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return nil, fmt.Errorf("failed to validate arguments: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		t.evaluations.WithLabelValues("invalid_arguments").Inc()
		return map[string]any{"expression": "", "error": "Invalid arguments: " + strings.Join(msgs, "; ")}, nil
	}

	expression := raw.(string)
	var value expr.Value
	e, err := t.Compile(expression)
	if err == nil {
		t.log.Infof("[calculator] Evaluating: %s", expression)
		value, err = e.Eval(t.policy)
	}
	if err != nil {
		outcome, msg := classify(err)
		t.evaluations.WithLabelValues(outcome).Inc()
		if outcome == "failed" {
			t.log.Errorf("[calculator] Evaluation failed: %s", err)
		}
		return map[string]any{"expression": expression, "error": msg}, nil
	}
	t.evaluations.WithLabelValues("ok").Inc()
	return map[string]any{"expression": expression, "result": value.Native()}, nil
}

// LengthError reports an expression over the configured maximum length.
type LengthError struct {
	Length int
	Max    int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("Expression too long (%d characters, maximum %d)", e.Length, e.Max)
}

// Compile parses expression, rejecting it unparsed when it is longer than
// the tool's maximum.
func (t *Tool) Compile(expression string) (*expr.Expression, error) {
	if t.maxLen > 0 && len(expression) > t.maxLen {
		return nil, &LengthError{Length: len(expression), Max: t.maxLen}
	}
	return expr.Compile(expression)
}

// Policy returns the whitelist the tool evaluates under.
func (t *Tool) Policy() *expr.Policy { return t.policy }

// ErrorMessage returns the user-facing message for a Compile or Eval error.
func ErrorMessage(err error) string {
	_, msg := classify(err)
	return msg
}

// classify maps an evaluation error to a metric outcome and a user message.
func classify(err error) (string, string) {
	var (
		tooLong     *LengthError
		divZero     *expr.DivisionByZeroError
		overflow    *expr.OverflowError
		unknownVar  *expr.UnknownVariableError
		unknownFunc *expr.UnknownFunctionError
		unsupported *expr.UnsupportedConstructError
		evalErr     *expr.EvaluationError
	)
	switch {
	case errors.As(err, &tooLong):
		return "too_long", tooLong.Error()
	case errors.Is(err, expr.ErrSyntax):
		return "syntax", "Invalid expression syntax: " + strings.TrimPrefix(err.Error(), expr.ErrSyntax.Error()+": ")
	case errors.As(err, &divZero):
		return "division_by_zero", "Division by zero"
	case errors.As(err, &overflow):
		return "overflow", "Result too large"
	case errors.As(err, &unknownVar):
		return "unknown_name", "Unknown variable: " + unknownVar.Name
	case errors.As(err, &unknownFunc):
		return "unknown_name", "Unknown function: " + unknownFunc.Name
	case errors.As(err, &unsupported):
		return "unsupported", "Unsupported expression: " + unsupported.Construct
	case errors.As(err, &evalErr):
		return "evaluation", evalErr.Msg
	}
	return "failed", "Evaluation failed: " + err.Error()
}
