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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jcgregorio/logger"
	"github.com/jcgregorio/slog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/c4wrd/canvas-chat/core/query"
	"github.com/c4wrd/canvas-chat/core/rendering"
	"github.com/c4wrd/canvas-chat/core/tools"
	"github.com/c4wrd/canvas-chat/core/tools/calculator"
	"github.com/c4wrd/canvas-chat/core/views"
)

// Options configures a Server.
type Options struct {
	Registry   *tools.Registry
	Calculator *calculator.Tool // Backs the calculator page

	Logger slog.Logger

	// Gatherer serves /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server represents the application server with all its dependencies
type Server struct {
	registry   *tools.Registry
	calculator *calculator.Tool
	renderer   *rendering.CalculatorRenderer
	log        slog.Logger
	gatherer   prometheus.Gatherer
}

// NewServer creates a new server hosting the tools in opts.Registry
func NewServer(opts Options) (*Server, error) {
	if opts.Registry == nil {
		return nil, errors.New("server requires a tool registry")
	}
	if opts.Calculator == nil {
		return nil, errors.New("server requires a calculator")
	}
	renderer, err := rendering.NewCalculatorRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	s := &Server{
		registry:   opts.Registry,
		calculator: opts.Calculator,
		renderer:   renderer,
		log:        opts.Logger,
		gatherer:   opts.Gatherer,
	}
	if s.log == nil {
		s.log = logger.NewNopLogger()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	return s, nil
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Get("/", s.calculatorHandler)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	router.Get("/tools/list", s.listToolsHandler)
	router.Get("/tools/openai", s.openAIToolsHandler)
	router.Post("/tools/call", s.callToolHandler)

	return router
}

// HandlerResult represents a failed page request
type HandlerResult struct {
	Error      error
	StatusCode int
	Message    string
}

// TimingCollector collects timing measurements for various operations
type TimingCollector struct {
	entries []views.TimingEntry
	start   time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.entries = append(tc.entries, views.TimingEntry{
		Operation:  operation,
		DurationMs: fmt.Sprintf("%.2f", float64(duration.Microseconds())/1000.0),
	})
}

// GetEntries returns all timing entries
func (tc *TimingCollector) GetEntries() []views.TimingEntry {
	return tc.entries
}

// TotalMs returns total elapsed time in milliseconds as formatted string
func (tc *TimingCollector) TotalMs() string {
	return fmt.Sprintf("%.2f", float64(time.Since(tc.start).Microseconds())/1000.0)
}

// HandleCalculatorRequest renders the calculator page for requestURL.
// Returns an error result if the page could not be produced, nil on success
func (s *Server) HandleCalculatorRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *HandlerResult {
	timing := NewTimingCollector()

	parseStart := time.Now()
	q := query.NewQuery(requestURL)
	timing.Record("Parse Query", time.Since(parseStart))

	if q.Expression != "" {
		if reg, ok := s.registry.Get(calculator.ID); ok && !reg.Enabled {
			return &HandlerResult{StatusCode: http.StatusNotFound, Message: "Calculator is disabled"}
		}
	}

	evalStart := time.Now()
	viewModel := views.BuildCalculatorViewModel(q, s.calculator.Policy(), s.calculator.Compile, calculator.ErrorMessage)
	timing.Record("Evaluate", time.Since(evalStart))

	viewModel.RenderTimeMs = timing.TotalMs()
	viewModel.TimingBreakdown = timing.GetEntries()

	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, viewModel); err != nil {
		s.log.Errorf("Template rendering error: %v", err)
		return &HandlerResult{Error: err, StatusCode: http.StatusInternalServerError, Message: "Failed to render page"}
	}
	return nil
}

func (s *Server) calculatorHandler(w http.ResponseWriter, r *http.Request) {
	if result := s.HandleCalculatorRequest(w, r.URL, w.Header().Set); result != nil {
		http.Error(w, result.Message, result.StatusCode)
	}
}

// ToolDescription is a /tools/list entry.
type ToolDescription struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Priority    int            `json:"priority"`
	Parameters  map[string]any `json:"parameters"`
}

// CallToolRequest is the body of /tools/call.
type CallToolRequest struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// CallToolResponse is the reply of /tools/call.
type CallToolResponse struct {
	ID     string         `json:"id"`
	Tool   string         `json:"tool"`
	Output map[string]any `json:"output"`
}

// listToolsHandler returns the enabled tools, highest priority first.
func (s *Server) listToolsHandler(w http.ResponseWriter, r *http.Request) {
	list := []ToolDescription{}
	for _, reg := range s.registry.Enabled() {
		inst, ok := s.registry.Instance(reg.ID)
		if !ok {
			continue
		}
		list = append(list, ToolDescription{
			ID:          reg.ID,
			Name:        inst.Name(),
			Description: inst.Description(),
			Priority:    reg.Priority,
			Parameters:  inst.Parameters(),
		})
	}
	s.writeJSON(w, list)
}

// openAIToolsHandler returns the enabled tools as function-calling definitions.
func (s *Server) openAIToolsHandler(w http.ResponseWriter, r *http.Request) {
	defs, err := s.registry.OpenAITools(r.URL.Query()["id"]...)
	if err != nil {
		s.reportError(w, err, "Failed to build tool definitions.", http.StatusInternalServerError)
		return
	}
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(defs))}
	for _, def := range defs {
		list.Values = append(list.Values, structpb.NewStructValue(def))
	}
	b, err := protojson.Marshal(list)
	if err != nil {
		s.reportError(w, err, "Failed to encode tool definitions.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		s.log.Errorf("Error writing tool definitions: %v", err)
	}
}

// callToolHandler invokes the specified tool with the given arguments.
func (s *Server) callToolHandler(w http.ResponseWriter, r *http.Request) {
	var req CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.reportError(w, err, "Failed to decode JSON.", http.StatusBadRequest)
		return
	}
	if reg, ok := s.registry.Get(req.Tool); !ok || !reg.Enabled {
		s.reportError(w, fmt.Errorf("%w: %q", tools.ErrToolNotFound, req.Tool), "Unknown tool.", http.StatusNotFound)
		return
	}
	if req.Arguments == nil {
		req.Arguments = map[string]any{}
	}

	callID := uuid.New().String()
	s.log.Infof("[%s] Calling tool %s", callID, req.Tool)
	out, err := s.registry.Execute(r.Context(), req.Tool, req.Arguments)
	if err != nil {
		s.reportError(w, err, "Tool execution failed.", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, CallToolResponse{ID: callID, Tool: req.Tool, Output: out})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("Error writing JSON response: %v", err)
	}
}

// reportError logs err and replies with message, keeping internals out of
// the response body.
func (s *Server) reportError(w http.ResponseWriter, err error, message string, code int) {
	s.log.Warningf("%s: %v", message, err)
	http.Error(w, message, code)
}
