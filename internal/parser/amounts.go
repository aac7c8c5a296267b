package parser

import (
	"regexp"
	"strings"

	"github.com/lectorncf/lector-ncf/constants"
	"github.com/lectorncf/lector-ncf/internal/entity"
)

// keywordMatcher matches one amount keyword with word boundaries, so "total"
// never fires inside "subtotal".
type keywordMatcher struct {
	keyword string
	re      *regexp.Regexp
}

func compileKeywordMatchers(keywords []string) []keywordMatcher {
	out := make([]keywordMatcher, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, keywordMatcher{
			keyword: k,
			re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(k)) + `\b`),
		})
	}
	return out
}

// extractAmounts resolves subtotal, itbis and total independently. A keyword
// match for one field never blocks another field from matching the same line.
func (p *Parser) extractAmounts(text string) entity.InvoiceAmounts {
	amounts := entity.InvoiceAmounts{Currency: constants.DefaultCurrency}
	if text == "" {
		return amounts
	}

	lines := strings.Split(text, "\n")
	linesLower := strings.Split(strings.ToLower(text), "\n")

	amounts.Subtotal = p.findAmountNearKeyword(lines, linesLower, p.subtotalMatchers)
	amounts.Tax = p.findAmountNearKeyword(lines, linesLower, p.taxMatchers)
	amounts.Total = p.findAmountNearKeyword(lines, linesLower, p.totalMatchers)
	return amounts
}

// findAmountNearKeyword scans keywords in priority order; for each matching
// line the amount is sought on that line, then on the immediately following
// one. The first strictly positive parse wins.
func (p *Parser) findAmountNearKeyword(lines, linesLower []string, matchers []keywordMatcher) *float64 {
	for _, m := range matchers {
		for i, lower := range linesLower {
			if !m.re.MatchString(lower) {
				continue
			}
			if v := p.parseAmount(lines[i]); v != nil && *v > 0 {
				p.logger.Debug("parser.amount", "keyword", m.keyword, "value", *v, "line", i)
				return v
			}
			if i+1 < len(lines) {
				if v := p.parseAmount(lines[i+1]); v != nil && *v > 0 {
					p.logger.Debug("parser.amount", "keyword", m.keyword, "value", *v, "line", i+1)
					return v
				}
			}
		}
	}
	return nil
}
