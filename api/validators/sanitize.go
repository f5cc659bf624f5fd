package validators

import "strings"

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// NormalizePhone strips interior whitespace and dashes so the same number
// always rate-limits and authorizes the same way.
func NormalizePhone(input string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(input) {
		switch r {
		case ' ', '-', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
