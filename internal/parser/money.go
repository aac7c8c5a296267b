package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Numeric shapes, tried in order. The plain-decimal shape is capped below one
// million so a fragment of a long identifier never reads as an amount.
var (
	groupedUSRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+\.\d{2}`)
	plainRe     = regexp.MustCompile(`\b\d+\.\d{2}\b`)
	groupedEURe = regexp.MustCompile(`\d{1,3}(?:\.\d{3})+,\d{2}`)
)

const plainAmountCap = 1_000_000

type currencyStripper struct {
	re *regexp.Regexp
}

func newCurrencyStripper(markers []string) *currencyStripper {
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return &currencyStripper{re: regexp.MustCompile(strings.Join(quoted, "|"))}
}

func (c *currencyStripper) strip(s string) string {
	return c.re.ReplaceAllString(s, "")
}

// parseAmount extracts the first monetary value from a short line fragment.
// Currency markers are stripped first; then the three shapes are attempted:
// "1,234.56", "1234.56" and "1.234,56". Nil when no shape matches.
func (p *Parser) parseAmount(fragment string) *float64 {
	s := p.currencyStripper.strip(fragment)

	if m := groupedUSRe.FindString(s); m != "" {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64); err == nil {
			return &v
		}
	}

	if m := plainRe.FindString(s); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil && v > 0 && v < plainAmountCap {
			return &v
		}
	}

	if m := groupedEURe.FindString(s); m != "" {
		normalized := strings.ReplaceAll(m, ".", "")
		normalized = strings.ReplaceAll(normalized, ",", ".")
		if v, err := strconv.ParseFloat(normalized, 64); err == nil {
			return &v
		}
	}

	return nil
}
