// SPDX-License-Identifier: Apache-2.0

package format

import (
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table writes rows as a rounded table. Headers are upper-cased and coloured
// only when w is a terminal.
func Table(w io.Writer, headers []string, rows [][]string) {
	color := IsTerminal(w)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(headers))
	for i, col := range headers {
		col = strings.ToUpper(col)
		if color {
			col = text.FgHiCyan.Sprint(col)
		}
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		t.AppendRow(r)
	}
	t.Render()
}

// Colorize wraps s in c when w is a terminal.
func Colorize(w io.Writer, c text.Color, s string) string {
	if !IsTerminal(w) {
		return s
	}
	return c.Sprint(s)
}

// IsTerminal reports whether w is an interactive character device.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
