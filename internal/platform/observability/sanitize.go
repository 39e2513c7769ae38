package observability

import "unicode"

const defaultStringLimit = 256

// sanitizeString trims unwanted characters and limits string length to avoid log injection.
func sanitizeString(value string, limit int) string {
	if limit <= 0 {
		limit = defaultStringLimit
	}

	cleaned := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		cleaned = append(cleaned, r)
	}
	if len(cleaned) > limit {
		cleaned = cleaned[:limit]
	}
	return string(cleaned)
}

// SanitizePageID removes control characters from remote page identifiers
// before they reach log output.
func SanitizePageID(id string) string {
	if len(id) == 0 {
		return ""
	}
	return sanitizeString(id, 80)
}

// SanitizeSnippet bounds externally-sourced text (response bodies, error
// strings) logged alongside page updates.
func SanitizeSnippet(text string) string {
	return sanitizeString(text, defaultStringLimit)
}
