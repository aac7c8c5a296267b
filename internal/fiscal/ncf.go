// Package fiscal implements the Dominican Republic fiscal numbering rules
// (DGII conventions) used to validate extracted NCF and RNC values.
package fiscal

import (
	"regexp"
	"strings"
)

// NCF format: one fiscal-type letter (A, B or E) followed by 10 digits.
// The two digits after the letter are the series number.
var ncfRe = regexp.MustCompile(`^[ABE]\d{10}$`)

var ncfSpaceRe = regexp.MustCompile(`\s+`)

// NormalizeNCF uppercases and strips internal whitespace from a candidate NCF.
func NormalizeNCF(ncf string) string {
	return ncfSpaceRe.ReplaceAllString(strings.ToUpper(strings.TrimSpace(ncf)), "")
}

// ValidateNCF reports whether ncf is a well-formed fiscal receipt number with
// a series accepted by the DGII (01-16 and 31-47).
func ValidateNCF(ncf string) bool {
	if ncf == "" {
		return false
	}
	ncf = NormalizeNCF(ncf)
	if !ncfRe.MatchString(ncf) {
		return false
	}
	series := int(ncf[1]-'0')*10 + int(ncf[2]-'0')
	return ValidNCFSeries(series)
}

// ValidNCFSeries reports whether series is in the DGII-accepted ranges.
func ValidNCFSeries(series int) bool {
	return (series >= 1 && series <= 16) || (series >= 31 && series <= 47)
}
