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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jcgregorio/logger"
	"github.com/jcgregorio/slog"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/c4wrd/canvas-chat/core/config"
	"github.com/c4wrd/canvas-chat/core/expr"
	"github.com/c4wrd/canvas-chat/core/server"
	"github.com/c4wrd/canvas-chat/core/tools"
	"github.com/c4wrd/canvas-chat/core/tools/calculator"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %s\n", err.Error())
		os.Exit(2)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Usage:   "Path to a YAML configuration file.",
		EnvVars: []string{"CANVAS_CHAT_CONFIG"},
	}
	verboseFlag := &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log evaluations to stderr.",
	}

	return &cli.App{
		Name:      "canvas-chat",
		Usage:     "Sandboxed calculator tool for LLM chats.",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:      "eval",
				Usage:     "Evaluate expressions and print the results.",
				ArgsUsage: "EXPR...",
				Flags: []cli.Flag{
					configFlag,
					verboseFlag,
					&cli.BoolFlag{Name: "ast", Usage: "Print the parsed tree of each expression."},
				},
				Action: evalAction,
			},
			{
				Name:  "serve",
				Usage: "Run the HTTP tool host and calculator page.",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "listen", Usage: "Address to listen on, overrides the config file."},
				},
				Action: serveAction,
			},
			{
				Name:  "mcp",
				Usage: "Serve the tools over the Model Context Protocol.",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "transport", Usage: "stdio or sse, overrides the config file."},
				},
				Action: mcpAction,
			},
			{
				Name:   "tools",
				Usage:  "Print the OpenAI function definitions of the enabled tools.",
				Flags:  []cli.Flag{configFlag},
				Action: toolsAction,
			},
		},
	}
}

func newLogger(w io.Writer, enabled bool) slog.Logger {
	if !enabled {
		return logger.NewNopLogger()
	}
	return logger.NewFromOptions(&logger.Options{SyncWriter: syncWriter{w}})
}

// syncWriter adapts an io.Writer to the logger's SyncWriter.
type syncWriter struct {
	io.Writer
}

func (s syncWriter) Sync() error {
	if f, ok := s.Writer.(*os.File); ok {
		return f.Sync()
	}
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "loading configuration")
	}
	return cfg, nil
}

// buildRegistry registers the built-in tools according to cfg.
func buildRegistry(cfg *config.Config, log slog.Logger, reg prometheus.Registerer) (*tools.Registry, *calculator.Tool, error) {
	calc, err := calculator.New(calculator.Options{
		MaxExpressionLength: cfg.MaxExpressionLength,
		Logger:              log,
		Registerer:          reg,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "creating calculator")
	}

	registry := tools.NewRegistry(log, reg)
	err = registry.Register(tools.Registration{
		ID:       calculator.ID,
		Factory:  func() tools.Tool { return calc },
		Priority: cfg.ToolPriority(calculator.ID, tools.PriorityBuiltin),
		Enabled:  cfg.ToolEnabled(calculator.ID, true),
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "registering calculator")
	}
	return registry, calc, nil
}

func evalAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("eval requires at least one expression")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c.App.ErrWriter, c.Bool("verbose") || cfg.Verbose)
	_, calc, err := buildRegistry(cfg, log, nil)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for _, source := range c.Args().Slice() {
		log.Infof("Evaluating: %s", source)
		value, err := evalOne(c.App.Writer, calc, source, c.Bool("ast"))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %s", source, calculator.ErrorMessage(err)))
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s = %s\n", source, value)
	}
	return result.ErrorOrNil()
}

// evalOne compiles source with the calculator's length limit and evaluates it
// under the calculator's policy, printing the parsed tree first when showAST
// is set.
func evalOne(w io.Writer, calc *calculator.Tool, source string, showAST bool) (expr.Value, error) {
	e, err := calc.Compile(source)
	if err != nil {
		return expr.Value{}, err
	}
	if showAST {
		fmt.Fprintf(w, "%s\n", e.AST())
	}
	return e.Eval(calc.Policy())
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if listen := c.String("listen"); listen != "" {
		cfg.Listen = listen
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	log := newLogger(c.App.ErrWriter, true)

	registry, calc, err := buildRegistry(cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	srv, err := server.NewServer(server.Options{Registry: registry, Calculator: calc, Logger: log})
	if err != nil {
		return pkgerrors.Wrap(err, "creating server")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Shutdown: %v", err)
		}
	}()

	log.Infof("Server starting on http://%s", cfg.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return pkgerrors.Wrap(err, "serving HTTP")
	}
	return nil
}

func mcpAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if transport := c.String("transport"); transport != "" {
		cfg.MCP.Transport = transport
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	// Stdout carries the protocol, so logs go to stderr.
	log := newLogger(c.App.ErrWriter, true)

	registry, _, err := buildRegistry(cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	s, err := server.NewMCPServer(registry, cfg.MCP.Name, cfg.MCP.Version, log)
	if err != nil {
		return pkgerrors.Wrap(err, "creating MCP server")
	}

	switch cfg.MCP.Transport {
	case config.TransportSSE:
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return pkgerrors.Wrap(server.ServeMCPSSE(ctx, s, cfg.MCP.SSEAddr, log), "serving MCP over SSE")
	default:
		return pkgerrors.Wrap(server.ServeMCPStdio(s), "serving MCP over stdio")
	}
}

func toolsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	registry, _, err := buildRegistry(cfg, logger.NewNopLogger(), nil)
	if err != nil {
		return err
	}
	defs, err := registry.OpenAITools()
	if err != nil {
		return pkgerrors.Wrap(err, "building tool definitions")
	}
	opts := protojson.MarshalOptions{Multiline: true, Indent: "  "}
	for _, def := range defs {
		b, err := opts.Marshal(def)
		if err != nil {
			return pkgerrors.Wrap(err, "encoding tool definition")
		}
		fmt.Fprintln(c.App.Writer, string(b))
	}
	return nil
}
