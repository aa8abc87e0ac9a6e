// SPDX-License-Identifier: Apache-2.0

package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"Defect ID", "Status"}, [][]string{
		{"265744", "open"},
		{"265745", "close"},
	})

	out := buf.String()
	assert.Contains(t, out, "DEFECT ID")
	assert.Contains(t, out, "265744")
	assert.Contains(t, out, "close")
	assert.NotContains(t, out, "\x1b[", "no colour codes when writing to a buffer")
	assert.Equal(t, 6, strings.Count(out, "\n"), "top border, header, separator, two rows, bottom border")
}

func TestColorize(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "ok", Colorize(&buf, text.FgGreen, "ok"))
	assert.False(t, IsTerminal(&buf))
}
