package internal

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID creates a short unique ID for a batch run
// Format: first 8 chars of a random UUID
func GenerateRunID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	result := ""
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			result += string(r)
		} else {
			result += "_"
		}
	}
	return result
}

// isAlphaNumeric checks if a rune is an ASCII letter or digit
func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
