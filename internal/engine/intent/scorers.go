package intent

import (
	"math"

	"keyword-intelligence/internal/models"
)

// Ensemble weights.
const (
	patternWeight = 0.4
	tfidfWeight   = 0.3
	bayesWeight   = 0.3
)

func zeroScores() map[models.Intent]float64 {
	out := make(map[models.Intent]float64, len(models.Intents))
	for _, intent := range models.Intents {
		out[intent] = 0
	}
	return out
}

// normalize scales non-negative scores to sum to 1. All-zero input stays zero.
func normalize(scores map[models.Intent]float64) map[models.Intent]float64 {
	out := zeroScores()
	total := 0.0
	for _, intent := range models.Intents {
		if s := scores[intent]; s > 0 {
			total += s
		}
	}
	if total == 0 {
		return out
	}
	for _, intent := range models.Intents {
		if s := scores[intent]; s > 0 {
			out[intent] = s / total
		}
	}
	return out
}

func patternScores(raw map[models.Intent]float64) map[models.Intent]float64 {
	return normalize(raw)
}

func (m *Model) tfidfScores(terms []string) map[models.Intent]float64 {
	raw := zeroScores()
	for _, term := range terms {
		for intent, w := range m.tfidf[term] {
			raw[intent] += w
		}
	}
	return normalize(raw)
}

// bayesScores returns the Naive Bayes posterior over intents. Terms outside
// the vocabulary get the smoothed likelihood of an unseen term, so a keyword
// made only of unknown terms scores close to the priors.
func (m *Model) bayesScores(terms []string) map[models.Intent]float64 {
	out := zeroScores()
	if len(terms) == 0 || m.vocabularySize == 0 {
		return out
	}

	logScores := make(map[models.Intent]float64, len(models.Intents))
	maxLog := math.Inf(-1)
	for _, intent := range models.Intents {
		prior := m.priors[intent]
		if prior <= 0 {
			continue
		}
		score := math.Log(prior)
		unseen := 1.0 / float64(m.classTermTotals[intent]+m.vocabularySize)
		for _, term := range terms {
			if row, ok := m.likelihoods[term]; ok {
				score += math.Log(row[intent])
			} else {
				score += math.Log(unseen)
			}
		}
		logScores[intent] = score
		if score > maxLog {
			maxLog = score
		}
	}

	total := 0.0
	for intent, s := range logScores {
		e := math.Exp(s - maxLog)
		out[intent] = e
		total += e
	}
	if total == 0 {
		return zeroScores()
	}
	for intent := range logScores {
		out[intent] /= total
	}
	return out
}

// fuse combines the three scorer distributions with the ensemble weights and
// renormalizes. With no evidence at all the result is uniform.
func fuse(pattern, tfidf, bayes map[models.Intent]float64) map[models.Intent]float64 {
	combined := make(map[models.Intent]float64, len(models.Intents))
	total := 0.0
	for _, intent := range models.Intents {
		v := patternWeight*pattern[intent] + tfidfWeight*tfidf[intent] + bayesWeight*bayes[intent]
		combined[intent] = v
		total += v
	}
	if total <= 0 {
		uniform := 1.0 / float64(len(models.Intents))
		for _, intent := range models.Intents {
			combined[intent] = uniform
		}
		return combined
	}
	for _, intent := range models.Intents {
		combined[intent] /= total
	}
	return combined
}

// argmax picks the most probable intent, resolving ties by the fixed order.
func argmax(probs map[models.Intent]float64) models.Intent {
	best := models.Intents[0]
	for _, intent := range models.Intents[1:] {
		if probs[intent] > probs[best] {
			best = intent
		}
	}
	return best
}
