package parser

import (
	"regexp"

	"github.com/lectorncf/lector-ncf/internal/fiscal"
)

// rncStrategy is one way of locating an RNC candidate in the text. Strategies
// are tried in priority order; within a strategy the first candidate in
// document order that validates wins.
type rncStrategy struct {
	name  string
	re    *regexp.Regexp
	group int
}

// Labeled matches ("RNC: ...") outrank bare digit runs. The bare-run fallback
// trades precision for recall: any 9/11-digit run in the text qualifies, which
// can pick up unrelated numbers on busy invoices.
var rncStrategies = []rncStrategy{
	{
		name:  "labeled-plain",
		re:    regexp.MustCompile(`(?i)\bR\.?\s?N\.?\s?C\.?\s*[.:]?\s*(\d{9,11})\b`),
		group: 1,
	},
	{
		name:  "labeled-grouped",
		re:    regexp.MustCompile(`(?i)\bR\.?\s?N\.?\s?C\.?\s*[.:]?\s*(\d{1,3}(?:[-\s]\d{1,7}){1,3})\b`),
		group: 1,
	},
	{
		name: "grouped-11",
		re:   regexp.MustCompile(`\b\d{3}[-\s]\d{3}[-\s]\d{3}[-\s]\d{2}\b`),
	},
	{
		name: "grouped-9",
		re:   regexp.MustCompile(`\b\d{3}[-\s]\d{3}[-\s]\d{3}\b`),
	},
	{
		name: "cedula",
		re:   regexp.MustCompile(`\b\d{1,3}[-\s]\d{7}[-\s]\d\b`),
	},
	{
		name: "bare-11",
		re:   regexp.MustCompile(`\b\d{11}\b`),
	},
	{
		name: "bare-9",
		re:   regexp.MustCompile(`\b\d{9}\b`),
	},
}

// extractRNC returns the first valid taxpayer registry number, preferring
// labeled occurrences over unlabeled digit runs.
func (p *Parser) extractRNC(text string) *string {
	if text == "" {
		return nil
	}
	for _, s := range rncStrategies {
		for _, m := range s.re.FindAllStringSubmatch(text, -1) {
			candidate := m[0]
			if s.group > 0 {
				candidate = m[s.group]
			}
			rnc := fiscal.NormalizeRNC(candidate)
			if fiscal.ValidateRNC(rnc) {
				p.logger.Debug("parser.rnc", "value", rnc, "strategy", s.name)
				return &rnc
			}
		}
	}
	return nil
}
