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

// Package config loads the tool host configuration from YAML.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Transports supported by the MCP host.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config is the host configuration.
type Config struct {
	// Listen is the HTTP address of the tool server.
	Listen string `yaml:"listen"`

	// MaxExpressionLength caps calculator input, in bytes.
	MaxExpressionLength int `yaml:"max_expression_length"`

	Verbose bool `yaml:"verbose"`

	MCP MCP `yaml:"mcp"`

	// Tools overrides registration defaults by tool id.
	Tools map[string]ToolConfig `yaml:"tools"`
}

// MCP configures the Model Context Protocol host.
type MCP struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	Transport string `yaml:"transport"`
	SSEAddr   string `yaml:"sse_addr"`
}

// ToolConfig overrides a tool's registration. Nil fields keep the default.
type ToolConfig struct {
	Enabled  *bool `yaml:"enabled"`
	Priority *int  `yaml:"priority"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:              "127.0.0.1:8097",
		MaxExpressionLength: 1000,
		MCP: MCP{
			Name:      "canvas-chat-tools",
			Version:   "0.1.0",
			Transport: TransportStdio,
			SSEAddr:   ":8098",
		},
		Tools: map[string]ToolConfig{},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from CANVAS_CHAT_* environment variables.
func (c *Config) applyEnv() error {
	if val := os.Getenv("CANVAS_CHAT_LISTEN"); val != "" {
		c.Listen = val
	}
	if val := os.Getenv("CANVAS_CHAT_MAX_EXPRESSION_LENGTH"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid CANVAS_CHAT_MAX_EXPRESSION_LENGTH %q: %w", val, err)
		}
		c.MaxExpressionLength = n
	}
	if val := os.Getenv("CANVAS_CHAT_MCP_TRANSPORT"); val != "" {
		c.MCP.Transport = val
	}
	return nil
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		result = multierror.Append(result, fmt.Errorf("listen: %w", err))
	}
	if c.MaxExpressionLength < 0 {
		result = multierror.Append(result, fmt.Errorf("max_expression_length must not be negative, got %d", c.MaxExpressionLength))
	}
	if c.MCP.Name == "" {
		result = multierror.Append(result, fmt.Errorf("mcp.name is required"))
	}
	switch c.MCP.Transport {
	case TransportStdio:
	case TransportSSE:
		if _, _, err := net.SplitHostPort(c.MCP.SSEAddr); err != nil {
			result = multierror.Append(result, fmt.Errorf("mcp.sse_addr: %w", err))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("mcp.transport must be %q or %q, got %q", TransportStdio, TransportSSE, c.MCP.Transport))
	}
	for id, tc := range c.Tools {
		if tc.Priority != nil && *tc.Priority < 0 {
			result = multierror.Append(result, fmt.Errorf("tools.%s.priority must not be negative", id))
		}
	}
	return result.ErrorOrNil()
}

// ToolEnabled returns the configured enabled flag for id, or fallback.
func (c *Config) ToolEnabled(id string, fallback bool) bool {
	if tc, ok := c.Tools[id]; ok && tc.Enabled != nil {
		return *tc.Enabled
	}
	return fallback
}

// ToolPriority returns the configured priority for id, or fallback.
func (c *Config) ToolPriority(id string, fallback int) int {
	if tc, ok := c.Tools[id]; ok && tc.Priority != nil {
		return *tc.Priority
	}
	return fallback
}
