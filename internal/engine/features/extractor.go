// Package features derives the fixed-shape feature bundle the intent
// classifier scores: lexical markers, pattern scores and SERP boosts.
package features

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"

	"keyword-intelligence/internal/engine/text"
	"keyword-intelligence/internal/models"
)

type intentWeight struct {
	intent models.Intent
	weight float64
}

type phrase struct {
	text    string
	intents []intentWeight
	markers []markerKind
}

// Extractor matches every lexicon and marker phrase in a single Aho-Corasick
// pass over the space-padded token stream.
type Extractor struct {
	phrases []phrase

	// ahocorasick.Matcher keeps per-scan state, so scans are serialized.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

func NewExtractor() *Extractor {
	return NewExtractorWithLexicon(DefaultLexicon())
}

func NewExtractorWithLexicon(lex Lexicon) *Extractor {
	index := make(map[string]int)
	var phrases []phrase

	lookup := func(raw string) *phrase {
		key := strings.Join(text.Tokenize(raw), " ")
		if key == "" {
			return nil
		}
		if i, ok := index[key]; ok {
			return &phrases[i]
		}
		index[key] = len(phrases)
		phrases = append(phrases, phrase{text: key})
		return &phrases[len(phrases)-1]
	}

	for _, intent := range models.Intents {
		for _, p := range lex[intent] {
			if ph := lookup(p.Text); ph != nil {
				ph.intents = append(ph.intents, intentWeight{intent: intent, weight: p.Weight})
			}
		}
	}
	for kind := markerQuestion; kind <= markerBrand; kind++ {
		for _, m := range markerPhrases[kind] {
			if ph := lookup(m); ph != nil {
				ph.markers = append(ph.markers, kind)
			}
		}
	}

	dict := make([]string, len(phrases))
	for i, ph := range phrases {
		dict[i] = " " + ph.text + " "
	}

	return &Extractor{
		phrases: phrases,
		matcher: ahocorasick.NewStringMatcher(dict),
	}
}

func (e *Extractor) match(tokens []string) []int {
	if len(tokens) == 0 {
		return nil
	}
	padded := " " + strings.Join(tokens, " ") + " "

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matcher.Match([]byte(padded))
}

// Extract builds the feature bundle for keyword. serp may be nil.
func (e *Extractor) Extract(keyword string, serp *models.SERPSignals) *models.KeywordFeatures {
	tokens := text.Tokenize(keyword)
	f := &models.KeywordFeatures{
		Tokens:        tokens,
		WordCount:     len(tokens),
		CharCount:     utf8.RuneCountInString(strings.TrimSpace(keyword)),
		QuestionWords: []string{},
		ActionWords:   []string{},
		Modifiers:     []string{},
		PatternScores: emptyScores(),
		SERPSignals:   serp,
	}

	if len(tokens) > 0 {
		if _, ok := leadingQuestionWords[tokens[0]]; ok {
			f.QuestionWords = append(f.QuestionWords, tokens[0])
		}
	}

	for _, idx := range e.match(tokens) {
		ph := e.phrases[idx]
		for _, iw := range ph.intents {
			f.PatternScores[iw.intent] += iw.weight
		}
		for _, m := range ph.markers {
			switch m {
			case markerQuestion:
				f.QuestionWords = appendUnique(f.QuestionWords, ph.text)
			case markerAction:
				f.ActionWords = appendUnique(f.ActionWords, ph.text)
			case markerModifier:
				f.Modifiers = appendUnique(f.Modifiers, ph.text)
			case markerComparison:
				f.HasComparison = true
			case markerSuperlative:
				f.HasSuperlative = true
			case markerLocal:
				f.HasLocalIntent = true
			case markerBrand:
				f.HasBrandMarker = true
			}
		}
	}

	for _, t := range tokens {
		if strings.IndexFunc(t, unicode.IsDigit) >= 0 {
			f.HasNumbers = true
			break
		}
	}

	f.HasQuestion = len(f.QuestionWords) > 0
	f.HasAction = len(f.ActionWords) > 0
	applySERPBoosts(f.PatternScores, serp)
	return f
}

// applySERPBoosts nudges pattern scores with what the result page shows.
func applySERPBoosts(scores map[models.Intent]float64, serp *models.SERPSignals) {
	if serp == nil {
		return
	}
	if serp.HasFeaturedSnippet {
		scores[models.IntentInformational] += 1.0
	}
	if serp.HasPeopleAlsoAsk {
		scores[models.IntentInformational] += 0.75
	}
	if serp.HasShoppingResults {
		scores[models.IntentTransactional] += 1.5
	}
	switch {
	case serp.AdCount >= 3:
		scores[models.IntentTransactional] += 1.0
		scores[models.IntentCommercial] += 0.5
	case serp.AdCount > 0:
		scores[models.IntentCommercial] += 0.5
	}
	if serp.HasLocalPack {
		scores[models.IntentNavigational] += 0.5
		scores[models.IntentTransactional] += 0.5
	}
	if serp.HasKnowledgePanel {
		scores[models.IntentNavigational] += 0.75
		scores[models.IntentInformational] += 0.25
	}
	if serp.HasSitelinks {
		scores[models.IntentNavigational] += 1.5
	}
}

// PatternIntent is the rule-pattern-only intent of keyword: the highest raw
// pattern score, ties resolved by the fixed intent order, informational when
// nothing matches.
func (e *Extractor) PatternIntent(keyword string) models.Intent {
	return DominantIntent(e.Extract(keyword, nil).PatternScores)
}

func DominantIntent(scores map[models.Intent]float64) models.Intent {
	best := models.IntentInformational
	bestScore := 0.0
	for _, intent := range models.Intents {
		if scores[intent] > bestScore {
			best, bestScore = intent, scores[intent]
		}
	}
	return best
}

func emptyScores() map[models.Intent]float64 {
	scores := make(map[models.Intent]float64, len(models.Intents))
	for _, intent := range models.Intents {
		scores[intent] = 0
	}
	return scores
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
