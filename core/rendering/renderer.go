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

package rendering

import (
	"embed"
	"io"

	"github.com/google/safehtml/template"

	"github.com/c4wrd/canvas-chat/core/views"
)

//go:embed templates/*
var templateFS embed.FS

// CalculatorRenderer handles rendering of calculator view models to HTML
type CalculatorRenderer struct {
	calculatorTemplate *template.Template
}

// NewCalculatorRenderer creates a new calculator renderer
func NewCalculatorRenderer() (*CalculatorRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	calculatorTemplate, err := template.New("calculator.html").ParseFS(trustedFS, "templates/calculator.html")
	if err != nil {
		return nil, err
	}

	return &CalculatorRenderer{
		calculatorTemplate: calculatorTemplate,
	}, nil
}

// Render renders a CalculatorViewModel to the provided writer
func (r *CalculatorRenderer) Render(w io.Writer, vm views.CalculatorViewModel) error {
	return r.calculatorTemplate.Execute(w, vm)
}
