package verifyintentclassification

import "keyword-intelligence/internal/models"

type Input struct {
	ClassificationID string        `json:"classificationId"`
	CorrectIntent    models.Intent `json:"correctIntent"`
	VerifiedBy       string        `json:"verifiedBy"`
}

type Output struct {
	ClassificationID string                       `json:"classificationId"`
	Keyword          string                       `json:"keyword"`
	PreviousIntent   models.Intent                `json:"previousIntent"`
	Intent           models.Intent                `json:"intent"`
	Changed          bool                         `json:"changed"`
	Classification   *models.IntentClassification `json:"classification"`
}
