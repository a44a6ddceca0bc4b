package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a standard v4 UUID.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID returns a v4 UUID without dashes.
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateID returns a short prefixed identifier, e.g. GenerateID("Q") -> "Q3f0a...".
func GenerateID(prefix string) string {
	return prefix + GenerateShortUUID()[:12]
}

// Truncate cuts s to at most n bytes without panicking on short strings.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
