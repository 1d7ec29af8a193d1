// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"regexp"
	"strings"
)

// nonAlphanumeric matches every run of characters outside [a-z0-9].
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Generate lowercases s, collapses each run of non-alphanumeric characters
// into a single hyphen and trims leading and trailing hyphens.
// Example: "Stop Motion Button!" -> "stop-motion-button"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s is already in generated form.
func Valid(s string) bool {
	return s != "" && Generate(s) == s
}
