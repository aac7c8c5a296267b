package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Two structural shapes: day-month-year (1-2 digit day/month, 2-4 digit year)
// and year-first ISO-like. Candidates are tried in document order per shape;
// the first one that survives calendar validation wins.
var dateShapes = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`),
}

// extractDate returns the first parseable date as YYYY-MM-DD.
//
// Ambiguous D/M order is resolved day-first, which matches local convention
// but is a known source of misparses for month-first sources (e.g. 03/04/2026
// reads as April 3rd). Kept as documented behavior.
func (p *Parser) extractDate(text string) *string {
	if text == "" {
		return nil
	}
	for _, shape := range dateShapes {
		for _, candidate := range shape.FindAllString(text, -1) {
			if iso, ok := parseCalendarDate(candidate); ok {
				p.logger.Debug("parser.date", "value", iso, "raw", candidate)
				return &iso
			}
		}
	}
	return nil
}

// parseCalendarDate parses a D-M-Y or Y-M-D fragment into an ISO date string.
// Day-first is preferred; when the day-first reading is not a real calendar
// date the month-first reading is tried before giving up.
func parseCalendarDate(s string) (string, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) != 3 {
		return "", false
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return "", false
		}
		nums[i] = n
	}

	if len(parts[0]) == 4 {
		return isoIfValid(nums[0], nums[1], nums[2])
	}

	year := nums[2]
	if len(parts[2]) <= 2 {
		year += 2000
	}
	if iso, ok := isoIfValid(year, nums[1], nums[0]); ok {
		return iso, true
	}
	return isoIfValid(year, nums[0], nums[1])
}

func isoIfValid(year, month, day int) (string, bool) {
	if year < 1900 || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
