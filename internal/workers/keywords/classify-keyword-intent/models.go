package classifykeywordintent

import "keyword-intelligence/internal/models"

type Input struct {
	ProjectID    string              `json:"projectId"`
	Keyword      string              `json:"keyword"`
	SearchVolume *int                `json:"searchVolume,omitempty"`
	SERPSignals  *models.SERPSignals `json:"serpSignals,omitempty"`
	// UseCache defaults to true. False recomputes unless the stored record
	// was manually verified.
	UseCache *bool `json:"useCache,omitempty"`
}

type Output struct {
	ClassificationID string                       `json:"classificationId"`
	Intent           models.Intent                `json:"intent"`
	Confidence       float64                      `json:"confidence"`
	ConfidenceLevel  models.ConfidenceLevel       `json:"confidenceLevel"`
	Recommendations  []string                     `json:"recommendations"`
	Classification   *models.IntentClassification `json:"classification"`
}
