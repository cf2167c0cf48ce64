// Package text holds the tokenization and similarity primitives shared by the
// intent classifier and the clustering engine.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "nor": {}, "if": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {},
	"from": {}, "into": {}, "about": {}, "as": {}, "than": {}, "then": {}, "so": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "me": {}, "my": {}, "we": {}, "our": {}, "you": {}, "your": {},
	"he": {}, "she": {}, "they": {}, "them": {}, "their": {},
	"do": {}, "does": {}, "did": {}, "has": {}, "have": {}, "had": {},
	"can": {}, "could": {}, "should": {}, "would": {}, "will": {}, "shall": {},
	"may": {}, "might": {}, "must": {}, "just": {}, "also": {}, "very": {}, "too": {},
}

// Normalize lowercases s, folds accented characters to their base letters and
// trims surrounding whitespace.
func Normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// Tokenize splits text into lowercase word tokens in order. Punctuation acts
// as a separator and single-character tokens are dropped.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 1 {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// RemoveStopWords drops function words but keeps question words such as
// "how" and "what", which carry intent.
func RemoveStopWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !IsStopWord(t) {
			out = append(out, t)
		}
	}
	return out
}

// Stem returns the English Snowball stem of token, or the token itself when
// the stemmer rejects it.
func Stem(token string) string {
	stemmed, err := snowball.Stem(token, "english", true)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// Terms is the vocabulary view of s: tokens without stop words, stemmed.
func Terms(s string) []string {
	tokens := RemoveStopWords(Tokenize(s))
	for i, t := range tokens {
		tokens[i] = Stem(t)
	}
	return tokens
}

// NGrams returns the contiguous windows of size n over tokens, joined by a
// single space.
func NGrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return []string{}
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}
