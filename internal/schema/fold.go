package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks after NFD decomposition, so that
// accented header variants compare equal to their plain forms.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes a header or cell value for matching: diacritics removed,
// case folded, surrounding whitespace trimmed. Matching on folded values is
// how every column lookup tolerates the spacing/casing/diacritic variance
// between export versions.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// foldContains reports whether the folded form of s contains the folded
// form of substr.
func foldContains(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}
