package intent

import (
	"fmt"
	"math"
	"time"

	"keyword-intelligence/internal/engine/text"
	"keyword-intelligence/internal/models"
)

// Model is an immutable trained model. Classifiers swap whole models and
// never mutate one in place.
type Model struct {
	version         string
	priors          map[models.Intent]float64
	likelihoods     map[string]map[models.Intent]float64
	tfidf           map[string]map[models.Intent]float64
	classTermTotals map[models.Intent]int
	vocabularySize  int
	trainingSize    int
	trainedAt       time.Time
}

// Snapshot is the checkpoint form of a Model.
type Snapshot struct {
	Version         string                               `json:"version"`
	Priors          map[models.Intent]float64            `json:"priors"`
	Likelihoods     map[string]map[models.Intent]float64 `json:"likelihoods"`
	TFIDF           map[string]map[models.Intent]float64 `json:"tfidf"`
	ClassTermTotals map[models.Intent]int                `json:"classTermTotals"`
	VocabularySize  int                                  `json:"vocabularySize"`
	TrainingSize    int                                  `json:"trainingSize"`
	TrainedAt       time.Time                            `json:"trainedAt"`
}

func (m *Model) Version() string      { return m.version }
func (m *Model) VocabularySize() int  { return m.vocabularySize }
func (m *Model) TrainingSize() int    { return m.trainingSize }
func (m *Model) TrainedAt() time.Time { return m.trainedAt }

// Snapshot returns a deep copy suitable for serialization.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Version:         m.version,
		Priors:          copyIntentFloats(m.priors),
		Likelihoods:     copyTable(m.likelihoods),
		TFIDF:           copyTable(m.tfidf),
		ClassTermTotals: copyIntentInts(m.classTermTotals),
		VocabularySize:  m.vocabularySize,
		TrainingSize:    m.trainingSize,
		TrainedAt:       m.trainedAt,
	}
}

// NewModelFromSnapshot validates a checkpoint and builds a model from a copy of it.
func NewModelFromSnapshot(s Snapshot) (*Model, error) {
	if s.Version == "" {
		return nil, fmt.Errorf("snapshot has no version")
	}
	for intent, p := range s.Priors {
		if !intent.Valid() {
			return nil, fmt.Errorf("snapshot prior for unknown intent %q", intent)
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("snapshot prior for %s out of range: %v", intent, p)
		}
	}
	if len(s.Likelihoods) > 0 && s.VocabularySize <= 0 {
		return nil, fmt.Errorf("snapshot has likelihoods but no vocabulary size")
	}

	return &Model{
		version:         s.Version,
		priors:          copyIntentFloats(s.Priors),
		likelihoods:     copyTable(s.Likelihoods),
		tfidf:           copyTable(s.TFIDF),
		classTermTotals: copyIntentInts(s.ClassTermTotals),
		vocabularySize:  s.VocabularySize,
		trainingSize:    s.TrainingSize,
		trainedAt:       s.TrainedAt,
	}, nil
}

// fit builds a model from labelled examples. Priors are class frequencies,
// likelihoods are Laplace smoothed and TF-IDF treats each training example as
// a document.
func fit(data []models.TrainingDataPoint, version string, trainedAt time.Time) *Model {
	m := &Model{
		version:         version,
		priors:          make(map[models.Intent]float64, len(models.Intents)),
		likelihoods:     make(map[string]map[models.Intent]float64),
		tfidf:           make(map[string]map[models.Intent]float64),
		classTermTotals: make(map[models.Intent]int, len(models.Intents)),
		trainingSize:    len(data),
		trainedAt:       trainedAt,
	}
	if len(data) == 0 {
		return m
	}

	classDocs := make(map[models.Intent]int)
	termCounts := make(map[string]map[models.Intent]int)
	docFreq := make(map[string]int)
	var vocabulary []string

	for _, dp := range data {
		classDocs[dp.Intent]++
		seen := make(map[string]struct{})
		for _, term := range text.Terms(dp.Keyword) {
			counts, ok := termCounts[term]
			if !ok {
				counts = make(map[models.Intent]int)
				termCounts[term] = counts
				vocabulary = append(vocabulary, term)
			}
			counts[dp.Intent]++
			m.classTermTotals[dp.Intent]++
			if _, dup := seen[term]; !dup {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	n := float64(len(data))
	m.vocabularySize = len(vocabulary)
	for _, intent := range models.Intents {
		m.priors[intent] = float64(classDocs[intent]) / n
	}

	for _, term := range vocabulary {
		counts := termCounts[term]
		idf := math.Log(n / float64(docFreq[term]+1))
		if idf < 0 {
			idf = 0
		}

		lik := make(map[models.Intent]float64, len(models.Intents))
		weights := make(map[models.Intent]float64, len(models.Intents))
		for _, intent := range models.Intents {
			total := m.classTermTotals[intent]
			lik[intent] = float64(counts[intent]+1) / float64(total+m.vocabularySize)
			if total > 0 {
				weights[intent] = float64(counts[intent]) / float64(total) * idf
			}
		}
		m.likelihoods[term] = lik
		m.tfidf[term] = weights
	}
	return m
}

func copyIntentFloats(in map[models.Intent]float64) map[models.Intent]float64 {
	out := make(map[models.Intent]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyIntentInts(in map[models.Intent]int) map[models.Intent]int {
	out := make(map[models.Intent]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyTable(in map[string]map[models.Intent]float64) map[string]map[models.Intent]float64 {
	out := make(map[string]map[models.Intent]float64, len(in))
	for term, row := range in {
		out[term] = copyIntentFloats(row)
	}
	return out
}
