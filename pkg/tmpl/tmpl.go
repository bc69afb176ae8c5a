// Package tmpl provides template rendering utilities for notice text.
package tmpl

import (
	"bytes"
	"fmt"
	"text/template"
)

// trunc shortens s to at most n runes, marking the cut with an ellipsis.
func trunc(n int, s string) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// orDefault returns s, or def when s is empty.
func orDefault(def, s string) string {
	if s == "" {
		return def
	}
	return s
}

var funcs = template.FuncMap{
	"trunc":   trunc,
	"default": orDefault,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - trunc: Shorten a string to n runes, e.g. {{ trunc 12 .Name }}
//   - default: Fall back when a string is empty, e.g. {{ .Name | default "shop" }}
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
