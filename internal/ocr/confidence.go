package ocr

import (
	"regexp"
	"strings"
)

var (
	reNCF    = regexp.MustCompile(`\b[abe]\d{10}\b`)
	reRNCTag = regexp.MustCompile(`\br\.?\s?n\.?\s?c\.?\b`)
	reCurr   = regexp.MustCompile(`\brd\$|\bdop\b|\$`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(,\d{3})*\.\d{2}\b|\b\d+\.\d{2}\b`)
	reDate   = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b|\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`)
)

// HeuristicConfidence scores decoded text by the fiscal artifacts it shows
// when the engine reported no word-level scores.
func HeuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reNCF.MatchString(txtL) {
		score += 0.2
	}
	if reRNCTag.MatchString(txtL) {
		score += 0.1
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if reDate.MatchString(txtL) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
