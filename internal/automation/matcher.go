package automation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// interestKeywords mark a comment as a candidate showing interest in the
// job. Matching is accent-folded and case-insensitive so "Intéressé" and
// "INTERESTED" both land.
var interestKeywords = []string{
	"interested",
	"hire me",
	"i am interested",
	"i'm interested",
	"looking for job",
	"need job",
	"available",
	"apply",
	"contact me",
	"dm me",
	"message me",
}

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}

// IsInterested reports whether a comment reads like a job inquiry.
func IsInterested(comment string) bool {
	text := normalizeText(comment)
	for _, keyword := range interestKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
