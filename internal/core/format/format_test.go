// SPDX-License-Identifier: Apache-2.0

package format

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Token     string `json:"token" yaml:"token"`
	ProjectID int    `json:"project_id" yaml:"project_id"`
}

func TestParseData(t *testing.T) {
	want := sampleConfig{Token: "abcd1234efgh", ProjectID: 27433}

	t.Run("ParseValidYAML", func(t *testing.T) {
		var got sampleConfig
		err := ParseData([]byte("token: abcd1234efgh\nproject_id: 27433\n"), &got)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("ParseValidJSON", func(t *testing.T) {
		var got sampleConfig
		err := ParseData([]byte(`{"token": "abcd1234efgh", "project_id": 27433}`), &got)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("ParseTabIndentedJSON", func(t *testing.T) {
		var got sampleConfig
		err := ParseData([]byte("{\n\t\"token\": \"abcd1234efgh\",\n\t\"project_id\": 27433\n}"), &got)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("ParseInvalidData", func(t *testing.T) {
		var got sampleConfig
		err := ParseData([]byte(`this is not valid yaml or json`), &got)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse as YAML")
		assert.Contains(t, err.Error(), "JSON")
	})
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token": "tok", "project_id": 1}`), 0644))

	var got sampleConfig
	require.NoError(t, ParseFile(path, &got))
	assert.Equal(t, sampleConfig{Token: "tok", ProjectID: 1}, got)

	err := ParseFile(filepath.Join(t.TempDir(), "missing.json"), &got)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error reading file")
}

func TestFormatData(t *testing.T) {
	v := map[string]interface{}{"id": 42, "status": "open"}

	out, err := FormatData(v, OutputYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "status: open")

	out, err = FormatData(v, "JSON")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": 42`)

	_, err = FormatData(v, "xml")
	assert.Error(t, err)
}

func TestValidOutput(t *testing.T) {
	assert.True(t, ValidOutput("text"))
	assert.True(t, ValidOutput("YAML"))
	assert.False(t, ValidOutput("csv"))
}
