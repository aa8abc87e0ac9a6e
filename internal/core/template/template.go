// SPDX-License-Identifier: Apache-2.0

// Package template renders list items through user supplied Go templates,
// e.g. --template '{{.id}} {{.status}}'.
package template

import (
	"bytes"
	"fmt"
	"io"
	"text/template"
)

// Line is a compiled per-item template.
type Line struct {
	tmpl *template.Template
}

// Compile parses text. Referencing a field an item does not have is an error.
func Compile(text string) (*Line, error) {
	tmpl, err := template.New("item").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("error parsing template: %w", err)
	}
	return &Line{tmpl: tmpl}, nil
}

// Render executes the template against one item.
func (l *Line) Render(item map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := l.tmpl.Execute(&buf, item); err != nil {
		return nil, fmt.Errorf("error executing template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderEach writes one line per item. Nothing is written for an item that
// fails, and rendering stops there.
func RenderEach(w io.Writer, text string, items []map[string]interface{}) error {
	line, err := Compile(text)
	if err != nil {
		return err
	}
	for i, item := range items {
		data, err := line.Render(item)
		if err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}

// ProcessString executes text against a single item.
func ProcessString(text string, item map[string]interface{}) ([]byte, error) {
	line, err := Compile(text)
	if err != nil {
		return nil, err
	}
	return line.Render(item)
}
