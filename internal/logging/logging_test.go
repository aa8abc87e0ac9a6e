// SPDX-License-Identifier: Apache-2.0

package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nischay/kualitee-cli/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "twelve characters", token: "abcd1234efgh", want: "abcd...efgh"},
		{name: "exactly eight", token: "abcd1234", want: "****"},
		{name: "short", token: "abc", want: "****"},
		{name: "empty", token: "", want: "****"},
		{name: "nine characters", token: "abcd12345", want: "abcd...2345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.MaskToken(tt.token))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", logging.Truncate("short", 10))

	long := strings.Repeat("x", 25)
	got := logging.Truncate(long, 10)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 10)+"..."))
	assert.Contains(t, got, "25 total chars")
}

func TestParseLevel(t *testing.T) {
	level, err := logging.ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, level)

	level, err = logging.ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, level)

	_, err = logging.ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNewWritesModuleFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, closer, err := logging.New(logging.Options{Dir: dir, Module: "defect", Level: logging.LevelDebug})
	require.NoError(t, err)

	logger.Info("hello from the defect module")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "defect.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the defect module")
	assert.Contains(t, string(data), "module=defect")
}

func TestNewRequiresModule(t *testing.T) {
	_, _, err := logging.New(logging.Options{Dir: t.TempDir()})
	assert.Error(t, err)
}

func TestNewWithWriterHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, logging.LevelWarn)

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
