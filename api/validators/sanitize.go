package validators

import "strings"

// SanitizeString trims surrounding whitespace, drops NUL bytes (postgres
// rejects them in text columns) and truncates to maxLen runes so multi-byte
// addresses are never cut mid-character. maxLen <= 0 means no cap.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(input, "\x00", ""))
	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return cleaned
}
