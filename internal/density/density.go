// Package density computes keyword density against a body of text.
package density

import (
	"regexp"
	"strings"
)

// Percentage returns how often keyword appears in text as a percentage of
// the total word count. Matching is case-insensitive and whole-word; words
// are whitespace-delimited. Empty text or keyword yields 0.
func Percentage(text, keyword string) float64 {
	keyword = strings.TrimSpace(keyword)
	if text == "" || keyword == "" {
		return 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	matches := re.FindAllStringIndex(text, -1)

	return float64(len(matches)) / float64(len(words)) * 100
}
