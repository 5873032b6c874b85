package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Turkish dotless/dotted i does not fold to ASCII "i" under plain
// lowercasing, so it is mapped before the generic transform runs.
var turkishI = strings.NewReplacer("ı", "i", "İ", "i", "I", "i")

var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds a Turkish or English phrase into a canonical matching
// form: lowercase, diacritics stripped, punctuation removed, whitespace
// collapsed to single spaces.
func Normalize(s string) string {
	s = turkishI.Replace(s)
	s = strings.ToLower(s)
	if folded, _, err := transform.String(foldTransform, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// padded wraps a normalized phrase in spaces so substring checks only match
// on word boundaries.
func padded(s string) string {
	return " " + s + " "
}

// containsWord reports whether the normalized haystack contains the
// normalized needle as a whole-word phrase.
func containsWord(haystack, needle string) bool {
	return strings.Contains(padded(haystack), padded(needle))
}
