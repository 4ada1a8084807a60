package classifier

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// stopwords are dropped before stemming. Matching happens on the lowercased
// raw token, before any stemming.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "he": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"to": {}, "was": {}, "were": {}, "will": {}, "with": {}, "this": {},
	"i": {}, "you": {}, "your": {}, "my": {}, "we": {}, "our": {}, "they": {},
	"their": {}, "not": {}, "no": {}, "but": {}, "if": {}, "so": {}, "than": {},
}

// Normalize reduces free text to a canonical token string: lowercase,
// punctuation and digits stripped, stopwords removed, each remaining word
// stemmed. Identical input always yields identical output, and empty or
// malformed input yields an empty string rather than an error.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var out []string
	for _, tok := range strings.Fields(b.String()) {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		out = append(out, english.Stem(tok, false))
	}
	return strings.Join(out, " ")
}
