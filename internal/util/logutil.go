package util

import "strings"

// TruncateForLog flattens s onto a single line and cuts it to limit runes, appending an
// ellipsis when truncated. Multi-line prompts and replies stay readable in console logs.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
