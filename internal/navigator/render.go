// SPDX-License-Identifier: Apache-2.0

package navigator

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	summaryWidth = 50
	rcaWidth     = 40
	titleWidth   = 100

	iconOK   = "✓"
	iconFail = "✗"
	iconWarn = "⚠"
)

// Colour palette, ANSI 256.
const (
	colorCyan    = lipgloss.Color("39")
	colorGreen   = lipgloss.Color("42")
	colorYellow  = lipgloss.Color("214")
	colorRed     = lipgloss.Color("196")
	colorMagenta = lipgloss.Color("170")
	colorBlue    = lipgloss.Color("33")
	colorDim     = lipgloss.Color("245")
)

// styles are bound to the output's renderer so colour is only emitted for terminals.
type styles struct {
	r *lipgloss.Renderer

	panel   lipgloss.Style
	title   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	info    lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	dim     lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Style
}

func newStyles(out io.Writer) *styles {
	r := lipgloss.NewRenderer(out)
	return &styles{
		r:       r,
		panel:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorCyan).Padding(0, 2),
		title:   r.NewStyle().Bold(true).Foreground(colorCyan),
		heading: r.NewStyle().Bold(true).Foreground(colorYellow),
		label:   r.NewStyle().Bold(true),
		info:    r.NewStyle().Foreground(colorBlue),
		ok:      r.NewStyle().Foreground(colorGreen),
		warn:    r.NewStyle().Foreground(colorYellow),
		fail:    r.NewStyle().Foreground(colorRed),
		dim:     r.NewStyle().Foreground(colorDim),
		header:  r.NewStyle().Bold(true).Foreground(colorMagenta).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		border:  r.NewStyle().Foreground(colorDim),
	}
}

// Panel renders the boxed screen header.
func (s *styles) Panel(title string, lines ...string) string {
	body := []string{s.title.Render(title)}
	if len(lines) > 0 {
		body = append(body, "")
		body = append(body, lines...)
	}
	return s.panel.Render(strings.Join(body, "\n"))
}

// Table renders rows under headers with a rounded border.
func (s *styles) Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			return s.cell
		})
	return t.Render()
}

func (s *styles) field(label, value string) string {
	if value == "" {
		value = "N/A"
	}
	return fmt.Sprintf("  %s %s", s.label.Render(label+":"), value)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
