package evidence

import (
	"strings"
	"unicode"
)

// stopWords filters common English words that add noise to term matching.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "for": true, "with": true,
	"you": true, "are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true, "of": true,
	"to": true, "in": true, "on": true, "at": true, "by": true, "is": true, "be": true,
	"as": true, "or": true, "we": true, "it": true, "its": true, "was": true,
	"were": true, "been": true, "can": true, "not": true, "but": true, "all": true,
	"also": true, "more": true, "than": true, "into": true, "has": true, "about": true,
	"which": true, "what": true, "who": true, "how": true, "such": true, "i": true,
	"my": true, "me": true, "us": true, "etc": true,
}

// Tokenize lower-cases text and splits it into word tokens, dropping stop words.
// Letters, digits and the characters '+', '#' and '.' form words, so that
// terms like "c++", "c#" and "node.js" survive; trailing dots are trimmed.
func Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/6)

	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if w == "" || stopWords[w] || !hasAlnum(w) {
			return
		}
		tokens = append(tokens, w)
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
