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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jcgregorio/logger"
	"github.com/jcgregorio/slog"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/c4wrd/canvas-chat/core/tools"
)

// NewMCPServer exposes every enabled tool in registry over the Model Context
// Protocol. Tool output is returned as JSON text.
func NewMCPServer(registry *tools.Registry, name, version string, log slog.Logger) (*mcpserver.MCPServer, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := mcpserver.NewMCPServer(name, version, mcpserver.WithToolCapabilities(false))

	for _, reg := range registry.Enabled() {
		inst, ok := registry.Instance(reg.ID)
		if !ok {
			continue
		}
		schema, err := json.Marshal(inst.Parameters())
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema of tool %s: %w", reg.ID, err)
		}
		s.AddTool(mcp.NewToolWithRawSchema(reg.ID, inst.Description(), schema), toolHandler(registry, reg.ID, log))
		log.Infof("Registered MCP tool %s", reg.ID)
	}
	return s, nil
}

func toolHandler(registry *tools.Registry, id string, log slog.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		out, err := registry.Execute(ctx, id, args)
		if err != nil {
			log.Warningf("MCP call to %s failed: %v", id, err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		b, err := json.Marshal(out)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode output: %v", err)), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

// ServeMCPStdio serves s on stdin/stdout until the input is closed.
func ServeMCPStdio(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}

// ServeMCPSSE serves s over server-sent events on addr until ctx is done.
func ServeMCPSSE(ctx context.Context, s *mcpserver.MCPServer, addr string, log slog.Logger) error {
	sse := mcpserver.NewSSEServer(s)
	errc := make(chan error, 1)
	go func() {
		log.Infof("MCP SSE server listening on %s", addr)
		errc <- sse.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return sse.Shutdown(context.Background())
	}
}
