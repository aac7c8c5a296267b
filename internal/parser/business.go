package parser

import (
	"strings"
	"unicode"
)

// extractBusinessName looks for a labeled line ("Razón Social: ...", "Nombre:
// ...", etc.). The name may follow a colon on the same line or sit on the next
// line. When no label yields a name, the first of the first five lines that is
// long enough and digit-free is taken as the company masthead.
func (p *Parser) extractBusinessName(text string) *string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, label := range p.cfg.BusinessLabels {
			if !strings.Contains(lower, label) {
				continue
			}
			if idx := strings.Index(line, ":"); idx >= 0 {
				name := strings.TrimSpace(line[idx+1:])
				if len(name) > 3 {
					p.logger.Debug("parser.business_name", "value", name, "label", label)
					return &name
				}
			} else if i+1 < len(lines) {
				name := strings.TrimSpace(lines[i+1])
				if len(name) > 3 {
					p.logger.Debug("parser.business_name", "value", name, "label", label)
					return &name
				}
			}
		}
	}

	// Masthead fallback: company names rarely carry digits.
	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if len(line) > 5 && !strings.ContainsFunc(line, unicode.IsDigit) {
			p.logger.Debug("parser.business_name", "value", line, "label", "masthead")
			return &line
		}
	}
	return nil
}
