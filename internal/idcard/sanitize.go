package idcard

import "strings"

const fallbackName = "Unknown_Student"

// SanitizeName makes a student name safe for filenames: only letters,
// digits, underscore and hyphen survive, runs of underscores collapse,
// and the result is capped at 50 characters.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackName
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	sanitized := b.String()
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_")

	if len(sanitized) > 50 {
		sanitized = sanitized[:50]
	}
	if sanitized == "" {
		return fallbackName
	}
	return sanitized
}
