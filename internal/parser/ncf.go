package parser

import (
	"regexp"
	"strings"

	"github.com/lectorncf/lector-ncf/internal/fiscal"
)

// Candidate NCFs: type letter, two series digits, eight sequence digits.
// OCR frequently inserts whitespace between the groups, so the pattern
// tolerates it; normalization strips it before validation.
var ncfCandidateRe = regexp.MustCompile(`[ABE]\s*\d{2}\s*\d{8}`)

// extractNCF returns the first candidate in document order that passes both
// format and series validation, or nil.
func (p *Parser) extractNCF(text string) *string {
	if text == "" {
		return nil
	}
	for _, candidate := range ncfCandidateRe.FindAllString(strings.ToUpper(text), -1) {
		ncf := fiscal.NormalizeNCF(candidate)
		if fiscal.ValidateNCF(ncf) {
			p.logger.Debug("parser.ncf", "value", ncf)
			return &ncf
		}
	}
	return nil
}
