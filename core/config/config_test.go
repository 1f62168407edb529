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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.ToolEnabled("calculator", true))
	assert.Equal(t, 100, cfg.ToolPriority("calculator", 100))
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
listen: 0.0.0.0:9000
max_expression_length: 64
verbose: true
mcp:
  transport: sse
  sse_addr: ":9001"
tools:
  calculator:
    enabled: false
    priority: 50
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, 64, cfg.MaxExpressionLength)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, TransportSSE, cfg.MCP.Transport)
	// Unset keys keep their defaults.
	assert.Equal(t, "canvas-chat-tools", cfg.MCP.Name)
	assert.False(t, cfg.ToolEnabled("calculator", true))
	assert.Equal(t, 50, cfg.ToolPriority("calculator", 100))
	assert.True(t, cfg.ToolEnabled("other", true))
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("CANVAS_CHAT_LISTEN", "localhost:7000")
	t.Setenv("CANVAS_CHAT_MAX_EXPRESSION_LENGTH", "12")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:7000", cfg.Listen)
	assert.Equal(t, 12, cfg.MaxExpressionLength)

	t.Setenv("CANVAS_CHAT_MAX_EXPRESSION_LENGTH", "lots")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "listen: [unterminated"))
	assert.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Listen = "no-port"
	cfg.MaxExpressionLength = -1
	cfg.MCP.Name = ""
	cfg.MCP.Transport = "carrier-pigeon"
	negative := -5
	cfg.Tools["calculator"] = ToolConfig{Priority: &negative}

	err := cfg.Validate()
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "expected *multierror.Error, got %T", err)
	assert.Len(t, merr.Errors, 5)
}

func TestValidate_SSEAddress(t *testing.T) {
	cfg := Default()
	cfg.MCP.Transport = TransportSSE
	cfg.MCP.SSEAddr = "bad"
	assert.Error(t, cfg.Validate())

	cfg.MCP.SSEAddr = ":8098"
	assert.NoError(t, cfg.Validate())
}
