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

package calculator

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4wrd/canvas-chat/core/expr"
	"github.com/c4wrd/canvas-chat/core/tools"
)

func newTestTool(t *testing.T, opts Options) *Tool {
	t.Helper()
	tool, err := New(opts)
	require.NoError(t, err)
	return tool
}

func TestMetadata(t *testing.T) {
	tool := newTestTool(t, Options{})

	assert.Equal(t, "calculator", tool.Name())
	desc := strings.ToLower(tool.Description())
	assert.Contains(t, desc, "mathematical")
	assert.Contains(t, desc, "sqrt")
	assert.Contains(t, desc, "pi")

	params := tool.Parameters()
	assert.Equal(t, "object", params["type"])
	props, ok := params["properties"].(map[string]any)
	require.True(t, ok, "properties should be an object: %#v", params["properties"])
	assert.Contains(t, props, "expression")
	assert.Contains(t, params["required"], "expression")
	assert.NotContains(t, params, "$schema")
}

func TestOpenAITool(t *testing.T) {
	def, err := tools.OpenAITool(newTestTool(t, Options{}))
	require.NoError(t, err)

	m := def.AsMap()
	assert.Equal(t, "function", m["type"])
	fn := m["function"].(map[string]any)
	assert.Equal(t, "calculator", fn["name"])
	assert.Contains(t, fn, "parameters")
}

func TestExecute_Results(t *testing.T) {
	tool := newTestTool(t, Options{})

	tests := []struct {
		expression string
		want       any
	}{
		{"2 + 2", int64(4)},
		{"15 / 3", 5.0},
		{"17 // 5", int64(3)},
		{"max(1, 5, 3)", int64(5)},
		{"round(3.5)", int64(4)},
		{"[1, 2.5]", []any{int64(1), 2.5}},
	}
	for _, tc := range tests {
		t.Run(tc.expression, func(t *testing.T) {
			out, err := tool.Execute(context.Background(), map[string]any{"expression": tc.expression})
			require.NoError(t, err)
			assert.Equal(t, tc.expression, out["expression"])
			assert.Equal(t, tc.want, out["result"])
			assert.NotContains(t, out, "error")
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	tool := newTestTool(t, Options{})

	tests := []struct {
		expression string
		want       string
	}{
		{"1 / 0", "Division by zero"},
		{"10 % 0", "Division by zero"},
		{"2 ** 64", "Result too large"},
		{"exp(1000)", "Result too large"},
		{"x + 1", "Unknown variable: x"},
		{"evil(1)", "Unknown function: evil"},
		{"__import__(1)", "Unknown function: __import__"},
		{"sqrt(-1)", "math domain error"},
		{"sqrt(1, 2)", "sqrt() takes exactly 1 argument (2 given)"},
	}
	for _, tc := range tests {
		t.Run(tc.expression, func(t *testing.T) {
			out, err := tool.Execute(context.Background(), map[string]any{"expression": tc.expression})
			require.NoError(t, err)
			assert.Equal(t, tc.expression, out["expression"])
			assert.Equal(t, tc.want, out["error"])
			assert.NotContains(t, out, "result")
		})
	}

	for _, expression := range []string{"2 +", "(1).somefield", "1 $ 2", "__import__('os')"} {
		t.Run(expression, func(t *testing.T) {
			out, err := tool.Execute(context.Background(), map[string]any{"expression": expression})
			require.NoError(t, err)
			msg, _ := out["error"].(string)
			assert.True(t, strings.HasPrefix(msg, "Invalid expression syntax: "), "got %q", msg)
			assert.NotContains(t, msg, "invalid expression syntax")
		})
	}
}

func TestExecute_ArgumentChecks(t *testing.T) {
	tool := newTestTool(t, Options{MaxExpressionLength: 5})
	ctx := context.Background()

	for _, args := range []map[string]any{{}, {"expression": ""}} {
		out, err := tool.Execute(ctx, args)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"expression": "", "error": "No expression provided"}, out)
	}

	out, err := tool.Execute(ctx, map[string]any{"expression": 42})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out["error"].(string), "Invalid arguments: "), "got %v", out["error"])

	out, err = tool.Execute(ctx, map[string]any{"expression": "1+1+1+1"})
	require.NoError(t, err)
	assert.Equal(t, "Expression too long (7 characters, maximum 5)", out["error"])

	out, err = tool.Execute(ctx, map[string]any{"expression": "1+1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out["result"])
}

func TestCompile_LengthCap(t *testing.T) {
	tool := newTestTool(t, Options{MaxExpressionLength: 100})

	long := strings.Repeat("1+", 200) + "1"
	_, err := tool.Compile(long)
	var lengthErr *LengthError
	require.ErrorAs(t, err, &lengthErr)
	assert.Equal(t, LengthError{Length: 401, Max: 100}, *lengthErr)
	assert.Equal(t, "Expression too long (401 characters, maximum 100)", ErrorMessage(err))

	// Rejected before parsing, so unbalanced nesting never reaches the parser.
	_, err = tool.Compile(strings.Repeat("(", 1<<20))
	require.ErrorAs(t, err, &lengthErr)

	e, err := tool.Compile("2 ** 10")
	require.NoError(t, err)
	assert.Equal(t, "(2 ** 10)", e.AST().String())
	v, err := e.Eval(tool.Policy())
	require.NoError(t, err)
	assert.Equal(t, "1024", v.String())

	_, err = newTestTool(t, Options{}).Compile(long)
	assert.NoError(t, err)
}

func TestErrorMessage_Syntax(t *testing.T) {
	_, err := newTestTool(t, Options{}).Compile("1 +")
	require.Error(t, err)
	msg := ErrorMessage(err)
	assert.True(t, strings.HasPrefix(msg, "Invalid expression syntax: expected"), "got %q", msg)
}

func TestExecute_RestrictedPolicy(t *testing.T) {
	tool := newTestTool(t, Options{Policy: expr.NewPolicy(expr.WithoutFunctions("pow"))})

	assert.NotContains(t, tool.Description(), "pow")
	out, err := tool.Execute(context.Background(), map[string]any{"expression": "pow(2, 3)"})
	require.NoError(t, err)
	assert.Equal(t, "Unknown function: pow", out["error"])
}

func TestExecute_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	tool := newTestTool(t, Options{Registerer: reg})
	ctx := context.Background()

	for _, e := range []string{"1 + 1", "2 * 3", "1 / 0", ""} {
		_, err := tool.Execute(ctx, map[string]any{"expression": e})
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(tool.evaluations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tool.evaluations.WithLabelValues("division_by_zero")))
	assert.Equal(t, 1.0, testutil.ToFloat64(tool.evaluations.WithLabelValues("empty")))

	// A second tool on the same registry shares the collector.
	again := newTestTool(t, Options{Registerer: reg})
	assert.Same(t, tool.evaluations, again.evaluations)
}

func TestRegistration(t *testing.T) {
	r, err := Registration(Options{}, tools.PriorityBuiltin, true)
	require.NoError(t, err)
	assert.Equal(t, ID, r.ID)
	assert.Equal(t, tools.PriorityBuiltin, r.Priority)
	assert.True(t, r.Enabled)
	assert.Same(t, r.Factory(), r.Factory())
}
