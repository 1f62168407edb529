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

package views

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/c4wrd/canvas-chat/core/expr"
	"github.com/c4wrd/canvas-chat/core/query"
)

func errorText(err error) string { return "failed: " + err.Error() }

func build(t *testing.T, rawURL string) CalculatorViewModel {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", rawURL, err)
	}
	return BuildCalculatorViewModel(query.NewQuery(u), expr.DefaultPolicy(), expr.Compile, errorText)
}

func TestBuildCalculatorViewModel_Empty(t *testing.T) {
	vm := build(t, "/")

	if vm.Evaluated {
		t.Error("Expected nothing evaluated for an empty expression")
	}
	if len(vm.Examples) != len(Examples) {
		t.Errorf("Expected %d examples, got %d", len(Examples), len(vm.Examples))
	}
	if len(vm.History) != 0 {
		t.Errorf("Expected no history, got %v", vm.History)
	}
	if len(vm.Functions) == 0 || len(vm.Constants) == 0 || len(vm.Operators) == 0 {
		t.Error("Expected whitelist to be listed")
	}
	for _, fn := range vm.Functions {
		if fn.Doc == "" {
			t.Errorf("Function %s has no doc", fn.Name)
		}
	}
}

func TestBuildCalculatorViewModel_Result(t *testing.T) {
	vm := build(t, "/?expr=2**10&history=1%2B1")

	if !vm.Evaluated || vm.Error != "" {
		t.Fatalf("Expected successful evaluation, got error %q", vm.Error)
	}
	if vm.Result != "1024" || vm.ResultType != "int" {
		t.Errorf("Expected 1024 (int), got %s (%s)", vm.Result, vm.ResultType)
	}
	if vm.AST != "" {
		t.Errorf("Expected no tree unless requested, got %q", vm.AST)
	}
	if len(vm.History) != 1 || vm.History[0].Label != "1+1" {
		t.Errorf("Expected history [1+1], got %v", vm.History)
	}
	// Recalling a history entry pushes the current expression.
	if got := vm.History[0].URL.String(); !strings.Contains(got, "history=2") {
		t.Errorf("Expected history link to carry current expression, got %s", got)
	}
}

func TestBuildCalculatorViewModel_AST(t *testing.T) {
	vm := build(t, "/?expr=1%2B2*3&ast=1")

	if vm.AST != "(1 + (2 * 3))" {
		t.Errorf("Expected canonical tree, got %q", vm.AST)
	}
	if !strings.Contains(vm.ToggleASTURL.String(), "expr=") || strings.Contains(vm.ToggleASTURL.String(), "ast=") {
		t.Errorf("Expected toggle link to hide the tree, got %s", vm.ToggleASTURL.String())
	}
}

func TestBuildCalculatorViewModel_Error(t *testing.T) {
	vm := build(t, "/?expr=1%2F0")

	if vm.Result != "" {
		t.Errorf("Expected no result, got %q", vm.Result)
	}
	if !strings.HasPrefix(vm.Error, "failed: ") {
		t.Errorf("Expected formatted error, got %q", vm.Error)
	}
}

func TestBuildCalculatorViewModel_CompileError(t *testing.T) {
	u, err := url.Parse("/?expr=1%2B2%2B3&ast=1")
	if err != nil {
		t.Fatal(err)
	}
	reject := func(string) (*expr.Expression, error) { return nil, errors.New("too long") }
	vm := BuildCalculatorViewModel(query.NewQuery(u), expr.DefaultPolicy(), reject, errorText)

	if !vm.Evaluated || vm.Error != "failed: too long" {
		t.Errorf("Expected compile error to be shown, got %q", vm.Error)
	}
	if vm.Result != "" || vm.AST != "" {
		t.Errorf("Expected no result or tree, got %q / %q", vm.Result, vm.AST)
	}
}
