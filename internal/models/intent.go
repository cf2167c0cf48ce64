// internal/models/intent.go
package models

import "time"

type Intent string

const (
	IntentInformational Intent = "informational"
	IntentNavigational  Intent = "navigational"
	IntentCommercial    Intent = "commercial"
	IntentTransactional Intent = "transactional"
)

// Intents is the fixed ordering used for tie-breaks and confusion matrices.
var Intents = []Intent{
	IntentInformational,
	IntentNavigational,
	IntentCommercial,
	IntentTransactional,
}

func (i Intent) Valid() bool {
	switch i {
	case IntentInformational, IntentNavigational, IntentCommercial, IntentTransactional:
		return true
	}
	return false
}

// Index returns the position of i in Intents, or -1.
func (i Intent) Index() int {
	for idx, v := range Intents {
		if v == i {
			return idx
		}
	}
	return -1
}

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

const (
	HighConfidenceThreshold   = 0.8
	MediumConfidenceThreshold = 0.5
)

func ConfidenceLevelFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= HighConfidenceThreshold:
		return ConfidenceHigh
	case confidence >= MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

type IntentClassification struct {
	ID                  string             `json:"id"`
	ProjectID           string             `json:"projectId"`
	Keyword             string             `json:"keyword"`
	Intent              Intent             `json:"intent"`
	Confidence          float64            `json:"confidence"`
	ConfidenceLevel     ConfidenceLevel    `json:"confidenceLevel"`
	IntentProbabilities map[Intent]float64 `json:"intentProbabilities"`
	Features            *KeywordFeatures   `json:"features,omitempty"`
	Recommendations     []string           `json:"recommendations"`
	ModelVersion        string             `json:"modelVersion"`
	ManuallyVerified    bool               `json:"manuallyVerified"`
	VerifiedBy          string             `json:"verifiedBy,omitempty"`
	VerifiedAt          *time.Time         `json:"verifiedAt,omitempty"`
	SearchVolume        *int               `json:"searchVolume,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

type TrainingDataPoint struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Intent  Intent `json:"intent" yaml:"intent"`
}

type IntentMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

type ModelMetrics struct {
	Accuracy        float64                  `json:"accuracy"`
	PerIntent       map[Intent]IntentMetrics `json:"perIntent"`
	Labels          []Intent                 `json:"labels"`
	ConfusionMatrix [][]int                  `json:"confusionMatrix"`
	TrainSize       int                      `json:"trainSize"`
	TestSize        int                      `json:"testSize"`
	ModelVersion    string                   `json:"modelVersion"`
}

type IntentDistribution struct {
	Total       int                `json:"total"`
	Counts      map[Intent]int     `json:"counts"`
	Percentages map[Intent]float64 `json:"percentages"`
}
