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

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4wrd/canvas-chat/core/tools"
	"github.com/c4wrd/canvas-chat/core/tools/calculator"
)

func newTestRegistry(t *testing.T, enabled bool) (*tools.Registry, *calculator.Tool, *prometheus.Registry) {
	t.Helper()
	promReg := prometheus.NewRegistry()
	calc, err := calculator.New(calculator.Options{MaxExpressionLength: 100, Registerer: promReg})
	require.NoError(t, err)

	registry := tools.NewRegistry(nil, promReg)
	require.NoError(t, registry.Register(tools.Registration{
		ID:       calculator.ID,
		Factory:  func() tools.Tool { return calc },
		Priority: tools.PriorityBuiltin,
		Enabled:  enabled,
	}))
	return registry, calc, promReg
}

func newTestServer(t *testing.T, enabled bool) http.Handler {
	t.Helper()
	registry, calc, promReg := newTestRegistry(t, enabled)
	s, err := NewServer(Options{Registry: registry, Calculator: calc, Gatherer: promReg})
	require.NoError(t, err)
	return s.Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(Options{})
	assert.Error(t, err)

	registry, _, _ := newTestRegistry(t, true)
	_, err = NewServer(Options{Registry: registry})
	assert.Error(t, err)
}

func TestCalculatorPage(t *testing.T) {
	h := newTestServer(t, true)

	w := do(t, h, http.MethodGet, "/?expr=2**10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "1024")

	w = do(t, h, http.MethodGet, "/?expr=1%2F0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Division by zero")

	w = do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Examples")
}

func TestCalculatorPage_LengthCap(t *testing.T) {
	h := newTestServer(t, true)

	w := do(t, h, http.MethodGet, "/?expr="+url.QueryEscape(strings.Repeat("1+", 200)+"1"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Expression too long (401 characters, maximum 100)")
	assert.NotContains(t, w.Body.String(), `id="result"`)

	w = do(t, h, http.MethodGet, "/?ast=1&expr="+url.QueryEscape(strings.Repeat("(", 1<<16)), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Expression too long (65536 characters, maximum 100)")
	assert.NotContains(t, w.Body.String(), `id="ast"`)
}

func TestCalculatorPage_Disabled(t *testing.T) {
	h := newTestServer(t, false)

	w := do(t, h, http.MethodGet, "/?expr=1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	h := newTestServer(t, true)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code)

	do(t, h, http.MethodPost, "/tools/call", `{"tool":"calculator","arguments":{"expression":"1+1"}}`)
	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "canvas_chat_tool_executions_total")
	assert.Contains(t, w.Body.String(), "canvas_chat_calculator_evaluations_total")
}

func TestListTools(t *testing.T) {
	w := do(t, newTestServer(t, true), http.MethodGet, "/tools/list", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []ToolDescription
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "calculator", list[0].ID)
	assert.Equal(t, tools.PriorityBuiltin, list[0].Priority)
	assert.Equal(t, "object", list[0].Parameters["type"])

	w = do(t, newTestServer(t, false), http.MethodGet, "/tools/list", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestOpenAITools(t *testing.T) {
	w := do(t, newTestServer(t, true), http.MethodGet, "/tools/openai", "")
	require.Equal(t, http.StatusOK, w.Code)

	var defs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &defs))
	require.Len(t, defs, 1)
	assert.Equal(t, "function", defs[0]["type"])
	fn := defs[0]["function"].(map[string]any)
	assert.Equal(t, "calculator", fn["name"])
}

func TestCallTool(t *testing.T) {
	h := newTestServer(t, true)

	t.Run("Result", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/tools/call", `{"tool":"calculator","arguments":{"expression":"sqrt(16)"}}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp CallToolResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		_, err := uuid.Parse(resp.ID)
		assert.NoError(t, err)
		assert.Equal(t, "calculator", resp.Tool)
		assert.Equal(t, "sqrt(16)", resp.Output["expression"])
		assert.Equal(t, 4.0, resp.Output["result"])
	})

	t.Run("Evaluation error is output", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/tools/call", `{"tool":"calculator","arguments":{"expression":"x + 1"}}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp CallToolResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Unknown variable: x", resp.Output["error"])
	})

	t.Run("Missing arguments", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/tools/call", `{"tool":"calculator"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No expression provided")
	})

	t.Run("Unknown tool", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/tools/call", `{"tool":"weather","arguments":{}}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Bad JSON", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/tools/call", `{"tool":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Wrong method", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/tools/call", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestCallTool_Disabled(t *testing.T) {
	w := do(t, newTestServer(t, false), http.MethodPost, "/tools/call", `{"tool":"calculator","arguments":{"expression":"1"}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimingCollector(t *testing.T) {
	tc := NewTimingCollector()
	tc.Record("Parse Query", 1500)
	entries := tc.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Parse Query", entries[0].Operation)
	assert.Equal(t, "0.00", entries[0].DurationMs)
	assert.NotEmpty(t, tc.TotalMs())
}
