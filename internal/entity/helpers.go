package entity

import "strconv"

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func amountOrEmpty(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

// Float64Ptr returns a pointer to v. Convenience for optional amounts.
func Float64Ptr(v float64) *float64 { return &v }

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
