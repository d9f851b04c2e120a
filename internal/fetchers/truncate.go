package fetchers

import "strings"

// TruncateString truncates a string to maxLength runes and adds "..." if truncated
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return strings.TrimSpace(string(runes[:maxLength-3])) + "..."
}
