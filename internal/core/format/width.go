// SPDX-License-Identifier: Apache-2.0

package format

import "github.com/mattn/go-runewidth"

// MiddleTruncate shortens s to at most width display columns by cutting out its
// middle.
func MiddleTruncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	const ellipsis = "..."
	side := (width - len(ellipsis)) / 2
	if side <= 0 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, side, "") + ellipsis + tail(s, side)
}

// Truncate shortens s to at most width display columns.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "")
}

// tail returns the longest suffix of s that fits in width columns.
func tail(s string, width int) string {
	runes := []rune(s)
	used := 0
	i := len(runes)
	for i > 0 {
		w := runewidth.RuneWidth(runes[i-1])
		if used+w > width {
			break
		}
		used += w
		i--
	}
	return string(runes[i:])
}
