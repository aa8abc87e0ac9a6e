// SPDX-License-Identifier: Apache-2.0

package format

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestMiddleTruncate(t *testing.T) {
	assert.Equal(t, "short summary", MiddleTruncate("short summary", 50))

	long := strings.Repeat("a", 30) + strings.Repeat("z", 30)
	got := MiddleTruncate(long, 50)
	assert.LessOrEqual(t, len(got), 50)
	assert.True(t, strings.HasPrefix(got, "aaaa"))
	assert.True(t, strings.HasSuffix(got, "zzzz"))
	assert.Contains(t, got, "...")

	wide := strings.Repeat("测", 40)
	got = MiddleTruncate(wide, 50)
	assert.Contains(t, got, "...")
	assert.Less(t, len([]rune(got)), 40)
	assert.LessOrEqual(t, runewidth.StringWidth(got), 50)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "测试", Truncate("测试数据", 5))
}
