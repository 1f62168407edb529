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

package query

import (
	"net/url"
	"strings"

	"github.com/google/safehtml"
)

// MaxHistory is the number of previous expressions kept in the URL.
const MaxHistory = 10

// historySep cannot occur in a valid expression.
const historySep = ";"

// Query represents the parsed state of a calculator page URL
type Query struct {
	// Base path (e.g., "/")
	Path string

	Expression string   // Expression to evaluate, empty for a blank form
	History    []string // Previously evaluated expressions, most recent first
	ShowAST    bool     // Render the parsed tree next to the result
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL) *Query {
	state := &Query{
		Path:    u.Path,
		History: []string{},
	}

	q := u.Query()

	state.Expression = strings.TrimSpace(q.Get("expr"))

	// Extract history parameter (format: expr1;expr2;...)
	if historyStr := q.Get("history"); historyStr != "" {
		for _, h := range strings.Split(historyStr, historySep) {
			if h = strings.TrimSpace(h); h != "" && len(state.History) < MaxHistory {
				state.History = append(state.History, h)
			}
		}
	}

	switch q.Get("ast") {
	case "1", "true", "on":
		state.ShowAST = true
	}

	return state
}

// Clone returns a deep copy of the Query
func (s *Query) Clone() *Query {
	clone := *s
	clone.History = append([]string(nil), s.History...)
	return &clone
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{
		Path: s.Path,
	}

	q := u.Query()
	if s.Expression != "" {
		q.Set("expr", s.Expression)
	}
	if len(s.History) > 0 {
		q.Set("history", strings.Join(s.History, historySep))
	}
	if s.ShowAST {
		q.Set("ast", "1")
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.ToURL())
}

// WithExpression returns a URL evaluating expression, with the current
// expression moved to the front of the history.
func (s *Query) WithExpression(expression string) safehtml.URL {
	newState := s.Clone()
	newState.Expression = expression
	if s.Expression != "" && s.Expression != expression {
		history := []string{s.Expression}
		for _, h := range s.History {
			if h != s.Expression && len(history) < MaxHistory {
				history = append(history, h)
			}
		}
		newState.History = history
	}
	return newState.ToSafeURL()
}

// WithASTToggled returns a URL with the tree display toggled
func (s *Query) WithASTToggled() safehtml.URL {
	newState := s.Clone()
	newState.ShowAST = !s.ShowAST
	return newState.ToSafeURL()
}

// WithoutHistory returns a URL with the history cleared
func (s *Query) WithoutHistory() safehtml.URL {
	newState := s.Clone()
	newState.History = nil
	return newState.ToSafeURL()
}
