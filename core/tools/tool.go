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

// Package tools defines the contract between LLM-callable tools and the hosts
// that expose them, and a registry that owns tool instances.
package tools

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Tool is a function an LLM can call during a conversation.
type Tool interface {
	// Name is the identifier the model uses to invoke the tool.
	Name() string

	// Description is shown to the model to help it decide when to call the tool.
	Description() string

	// Parameters returns the JSON Schema of the arguments object. Values are
	// JSON-compatible (map[string]any, []any, string, float64, bool).
	Parameters() map[string]any

	// Execute runs the tool. Failures the model should see are reported in
	// the returned map; a Go error means the call itself could not be served.
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// OpenAITool renders a tool in the OpenAI function-calling format:
//
//	{"type": "function", "function": {"name": ..., "description": ..., "parameters": {...}}}
func OpenAITool(t Tool) (*structpb.Struct, error) {
	def, err := structpb.NewStruct(map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        t.Name(),
			"description": t.Description(),
			"parameters":  t.Parameters(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert tool %s: %w", t.Name(), err)
	}
	return def, nil
}
