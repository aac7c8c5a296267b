package fiscal

import (
	"regexp"
	"strings"
)

// RNC lengths: 9 digits for companies, 11 for persons (cédula). A 10-digit
// value is never valid; the gap separates the two registry forms.
var rncRe = regexp.MustCompile(`^(\d{9}|\d{11})$`)

var rncSepRe = regexp.MustCompile(`[-\s]`)

// NormalizeRNC strips hyphens and whitespace from a candidate RNC.
func NormalizeRNC(rnc string) string {
	return rncSepRe.ReplaceAllString(strings.TrimSpace(rnc), "")
}

// ValidateRNC reports whether rnc normalizes to exactly 9 or 11 digits.
func ValidateRNC(rnc string) bool {
	if rnc == "" {
		return false
	}
	return rncRe.MatchString(NormalizeRNC(rnc))
}
