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

package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jcgregorio/logger"
	"github.com/jcgregorio/slog"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/protobuf/types/known/structpb"
)

// Priority levels for tools. Higher priority tools are listed first.
const (
	PriorityBuiltin   = 100
	PriorityOfficial  = 50
	PriorityCommunity = 10
)

// ErrToolNotFound is returned by Execute for an unregistered tool id.
var ErrToolNotFound = errors.New("tool not found")

// Factory creates a tool instance. It is called at most once per registration.
type Factory func() Tool

// Registration describes a registered tool.
type Registration struct {
	// ID is the unique tool identifier, normally equal to Tool.Name().
	ID string

	Factory  Factory
	Priority int

	// Enabled tools are offered to models by default.
	Enabled bool
}

// Info summarizes a registered tool for API responses.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	Priority    int    `json:"priority"`
}

// Registry manages tool registrations and their lazily created instances.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]*Registration
	instances map[string]Tool

	log        slog.Logger
	executions *prometheus.CounterVec
}

// NewRegistry creates an empty registry. Execution counts are registered with
// reg when it is non-nil.
func NewRegistry(log slog.Logger, reg prometheus.Registerer) *Registry {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Registry{
		tools:     make(map[string]*Registration),
		instances: make(map[string]Tool),
		log:       log,
		executions: RegisterCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canvas_chat_tool_executions_total",
			Help: "Tool executions by tool id and outcome.",
		}, []string{"tool", "outcome"})),
	}
}

// RegisterCounterVec registers c with reg, returning the already registered
// collector when an identical one exists.
func RegisterCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

// Register adds a tool. Registering an existing id replaces it and drops any
// cached instance.
func (r *Registry) Register(reg Registration) error {
	if reg.ID == "" {
		return fmt.Errorf("register: id is required")
	}
	if reg.Factory == nil {
		return fmt.Errorf("register: factory is required for %q", reg.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[reg.ID]; ok {
		r.log.Warningf("Overwriting existing tool %q", reg.ID)
	}
	r.tools[reg.ID] = &reg
	delete(r.instances, reg.ID)

	r.log.Infof("Registered tool: %s", reg.ID)
	return nil
}

// Instance returns the tool for id, creating it on first use.
func (r *Registry) Instance(id string) (Tool, bool) {
	r.mu.RLock()
	inst, ok := r.instances[id]
	r.mu.RUnlock()
	if ok {
		return inst, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.tools[id]
	if !ok {
		return nil, false
	}
	if inst, ok := r.instances[id]; ok {
		return inst, true
	}
	inst = reg.Factory()
	r.instances[id] = inst
	return inst, true
}

// Get returns a copy of the registration for id.
func (r *Registry) Get(id string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.tools[id]
	if !ok {
		return Registration{}, false
	}
	return *reg, true
}

// All returns every registration sorted by id.
func (r *Registry) All() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Registration, 0, len(r.tools))
	for _, reg := range r.tools {
		result = append(result, *reg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Enabled returns the enabled registrations, highest priority first.
func (r *Registry) Enabled() []Registration {
	var result []Registration
	for _, reg := range r.All() {
		if reg.Enabled {
			result = append(result, reg)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Priority > result[j].Priority })
	return result
}

// SetEnabled toggles a tool. It reports false when id is not registered.
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.tools[id]
	if !ok {
		return false
	}
	reg.Enabled = enabled
	return true
}

// Info lists every registered tool, highest priority first.
func (r *Registry) Info() []Info {
	all := r.All()
	result := make([]Info, 0, len(all))
	for _, reg := range all {
		inst, ok := r.Instance(reg.ID)
		if !ok {
			continue
		}
		result = append(result, Info{
			ID:          reg.ID,
			Name:        inst.Name(),
			Description: inst.Description(),
			Enabled:     reg.Enabled,
			Priority:    reg.Priority,
		})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Priority > result[j].Priority })
	return result
}

// OpenAITools returns function-calling definitions for the given ids, or for
// every enabled tool when no ids are given. Unknown ids are skipped.
func (r *Registry) OpenAITools(ids ...string) ([]*structpb.Struct, error) {
	if len(ids) == 0 {
		for _, reg := range r.Enabled() {
			ids = append(ids, reg.ID)
		}
	}
	var defs []*structpb.Struct
	for _, id := range ids {
		inst, ok := r.Instance(id)
		if !ok {
			continue
		}
		def, err := OpenAITool(inst)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Execute runs the tool registered under id.
func (r *Registry) Execute(ctx context.Context, id string, args map[string]any) (map[string]any, error) {
	inst, ok := r.Instance(id)
	if !ok {
		r.executions.WithLabelValues("unknown", "not_found").Inc()
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}
	out, err := inst.Execute(ctx, args)
	if err != nil {
		r.executions.WithLabelValues(id, "error").Inc()
		return nil, fmt.Errorf("tool %s failed: %w", id, err)
	}
	r.executions.WithLabelValues(id, "ok").Inc()
	return out, nil
}
