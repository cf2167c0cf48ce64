package classifykeywordbatch

import (
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
)

type Input struct {
	ProjectID string             `json:"projectId"`
	Keywords  []intent.BatchItem `json:"keywords"`
}

type Output struct {
	Total           int                            `json:"total"`
	IntentCounts    map[models.Intent]int          `json:"intentCounts"`
	LowConfidence   int                            `json:"lowConfidenceCount"`
	Classifications []*models.IntentClassification `json:"classifications"`
}
