package util

import "strings"

// SanitizeText strips invalid UTF-8 sequences and NUL bytes so a value is
// safe both as a Postgres text column and as a published triple value.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
