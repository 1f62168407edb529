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
	"github.com/google/safehtml"

	"github.com/c4wrd/canvas-chat/core/expr"
	"github.com/c4wrd/canvas-chat/core/query"
)

// Examples are offered as one-click links on an empty page.
var Examples = []string{
	"2 + 2",
	"sqrt(16)",
	"sin(pi / 2)",
	"2 ** 10",
	"17 // 5",
	"round(tau, 3)",
	"max([3, 1.5, 2])",
	"pow(2, -1, 7)",
}

// CalculatorViewModel contains the evaluation state formatted for template consumption
type CalculatorViewModel struct {
	Title      string
	Expression string // Expression as entered
	Evaluated  bool   // Whether an expression was evaluated

	Result     string // Rendered result, empty on error
	ResultType string // int, float, list or tuple
	Error      string // User-facing error message
	AST        string // Canonical parenthesized form, when ShowAST is set
	ShowAST    bool

	ToggleASTURL    safehtml.URL
	ClearHistoryURL safehtml.URL

	Examples []Link
	History  []Link

	// Whitelist listing
	Functions []FunctionInfo
	Constants []string
	Operators []string

	// Request timing
	RenderTimeMs    string
	TimingBreakdown []TimingEntry
}

// TimingEntry is one timed step of request handling
type TimingEntry struct {
	Operation  string
	DurationMs string
}

// Link is a labelled URL
type Link struct {
	Label string
	URL   safehtml.URL
}

// FunctionInfo describes a whitelisted function
type FunctionInfo struct {
	Name string
	Doc  string
}

// ErrorMessage formats evaluation errors for display.
type ErrorMessage func(err error) string

// Compiler parses an expression, applying any length limit.
type Compiler func(source string) (*expr.Expression, error)

// BuildCalculatorViewModel compiles the query's expression, evaluates it under
// policy and builds the page model. errorMessage turns failures into display
// text.
func BuildCalculatorViewModel(q *query.Query, policy *expr.Policy, compile Compiler, errorMessage ErrorMessage) CalculatorViewModel {
	vm := CalculatorViewModel{
		Title:           "Calculator",
		Expression:      q.Expression,
		ShowAST:         q.ShowAST,
		ToggleASTURL:    q.WithASTToggled(),
		ClearHistoryURL: q.WithoutHistory(),
		Constants:       policy.Constants(),
		Operators:       policy.Operators(),
	}

	for _, fn := range policy.Functions() {
		vm.Functions = append(vm.Functions, FunctionInfo{Name: fn.Name, Doc: fn.Doc})
	}
	for _, e := range Examples {
		vm.Examples = append(vm.Examples, Link{Label: e, URL: q.WithExpression(e)})
	}
	for _, h := range q.History {
		vm.History = append(vm.History, Link{Label: h, URL: q.WithExpression(h)})
	}

	if q.Expression == "" {
		return vm
	}
	vm.Evaluated = true

	e, err := compile(q.Expression)
	if err != nil {
		vm.Error = errorMessage(err)
		return vm
	}
	if q.ShowAST {
		vm.AST = e.AST().String()
	}

	value, err := e.Eval(policy)
	if err != nil {
		vm.Error = errorMessage(err)
		return vm
	}
	vm.Result = value.String()
	vm.ResultType = value.TypeName()
	return vm
}
