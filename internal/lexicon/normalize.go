package lexicon

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	punctuationRegex    = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
)

// Normalize lowercases s, folds diacritics, replaces punctuation with spaces
// and collapses whitespace. "¡Añade 2 leches!" becomes "anade 2 leches".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(foldDiacritics(s))
	s = punctuationRegex.ReplaceAllString(s, " ")
	s = multipleSpacesRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens splits a normalized string into fields
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// foldDiacritics strips combining marks. Chained transformers carry state,
// so a fresh chain is built per call.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
