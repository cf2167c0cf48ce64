package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Tokenization
// ==========================

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"lowercases and splits", "How To Improve SEO", []string{"how", "to", "improve", "seo"}},
		{"strips punctuation", "best seo-tools, 2024!", []string{"best", "seo", "tools", "2024"}},
		{"drops single characters", "a b seo x", []string{"seo"}},
		{"folds accents", "Café Ñandú", []string{"cafe", "nandu"}},
		{"empty", "", []string{}},
		{"punctuation only", "?!...", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestRemoveStopWords_KeepsQuestionWords(t *testing.T) {
	got := RemoveStopWords([]string{"what", "is", "the", "best", "seo", "tool", "for", "me"})
	assert.Equal(t, []string{"what", "best", "seo", "tool"}, got)
}

func TestTerms_StemsConsistently(t *testing.T) {
	assert.Equal(t, Terms("buying seo tools"), Terms("buy seo tool"))
	assert.Equal(t, []string{"review"}, Terms("the reviews"))
}

func TestNGrams(t *testing.T) {
	tokens := []string{"best", "seo", "tools"}

	assert.Equal(t, []string{"best seo", "seo tools"}, NGrams(tokens, 2))
	assert.Equal(t, []string{"best seo tools"}, NGrams(tokens, 3))
	assert.Empty(t, NGrams(tokens, 4))
	assert.Empty(t, NGrams(tokens, 0))
	assert.Empty(t, NGrams(nil, 1))
}

// ==========================
// Similarity
// ==========================

func TestJaccardSimilarity(t *testing.T) {
	assert.InDelta(t, 0.5, JaccardSimilarity("best seo tools", "top seo tools"), 1e-9)
	assert.InDelta(t, 1.0/3.0, JaccardSimilarity("buy domain", "cheap domain"), 1e-9)
	assert.Equal(t, 0.0, JaccardSimilarity("seo", "domain"))
	assert.Equal(t, 1.0, JaccardSimilarity("", ""))
	assert.Equal(t, 0.0, JaccardSimilarity("?", "!"))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 4, LevenshteinDistance("", "seo!"))
	assert.Equal(t, 1.0, LevenshteinSimilarity("", ""))
	assert.InDelta(t, 1-3.0/7.0, LevenshteinSimilarity("kitten", "sitting"), 1e-9)
	assert.Equal(t, 1.0, LevenshteinSimilarity("SEO", "seo"))
}

func TestCombinedSimilarity_Weights(t *testing.T) {
	a, b := "best seo tools", "top seo tools"
	expected := 0.7*0.5 + 0.3*(1-4.0/14.0)
	assert.InDelta(t, expected, CombinedSimilarity(a, b), 1e-9)
}

func TestCombinedSimilarity_SymmetricAndReflexive(t *testing.T) {
	keywords := []string{
		"", "seo", "best seo tools", "top seo tools", "buy domain", "cheap domain",
		"how to improve seo", "café near me", "?!", "seo vs sem",
	}
	for _, a := range keywords {
		assert.Equal(t, 1.0, CombinedSimilarity(a, a), "reflexive for %q", a)
		for _, b := range keywords {
			assert.Equal(t, CombinedSimilarity(a, b), CombinedSimilarity(b, a), "symmetric for %q/%q", a, b)
		}
	}
}

func TestSetJaccard(t *testing.T) {
	assert.InDelta(t, 2.0/3.0, SetJaccard([]string{"/a", "/b"}, []string{"/a", "/b", "/c"}), 1e-9)
	assert.Equal(t, 0.0, SetJaccard(nil, nil))
	assert.Equal(t, 1.0, SetJaccard([]string{"/a", "/a"}, []string{"/a"}))
}
