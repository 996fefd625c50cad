// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"github.com/mattn/go-runewidth"
)

// UNICODE: Rune-aware truncation preserves multi-byte characters.

// TruncateString truncates a string to a maximum number of runes.
// Counts characters, not bytes, so UTF-8 strings are never split
// mid-character. If the string is truncated, "..." is appended.
func TruncateString(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// PadRight pads a string with spaces to the given display width.
// Double-width characters (CJK) are counted as two columns; strings
// already at or past the width are returned unchanged.
func PadRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	pad := make([]byte, width-w)
	for i := range pad {
		pad[i] = ' '
	}
	return s + string(pad)
}

// StringWidth returns the display width of a string, counting
// double-width characters as two columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}
