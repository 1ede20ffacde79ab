package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePNR upper-cases and trims a PNR taken from a URL or form.
func NormalizePNR(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
