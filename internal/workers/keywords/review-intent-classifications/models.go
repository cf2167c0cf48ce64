package reviewintentclassifications

import "keyword-intelligence/internal/models"

type Input struct {
	ProjectID string `json:"projectId"`
	// Intent optionally lists every classification with that intent.
	Intent models.Intent `json:"intent,omitempty"`
	Limit  int           `json:"limit,omitempty"`
}

type Output struct {
	Distribution       *models.IntentDistribution     `json:"distribution"`
	LowConfidence      []*models.IntentClassification `json:"lowConfidence"`
	LowConfidenceCount int                            `json:"lowConfidenceCount"`
	NeedsReview        bool                           `json:"needsReview"`
	ByIntent           []*models.IntentClassification `json:"byIntent,omitempty"`
}
