package detectcannibalization

import "keyword-intelligence/internal/models"

type Input struct {
	ProjectID string `json:"projectId"`
	// Rankings overrides the project's keyword source when non-empty.
	Rankings            []models.KeywordRanking `json:"rankings,omitempty"`
	SimilarityThreshold float64                 `json:"similarityThreshold,omitempty"`
	URLOverlapThreshold float64                 `json:"urlOverlapThreshold,omitempty"`
	// Notify defaults to true.
	Notify *bool `json:"notify,omitempty"`
}

type Output struct {
	Source        string                         `json:"source"`
	Groups        []models.CannibalizationGroup  `json:"groups"`
	PairCount     int                            `json:"pairCount"`
	Severity      models.CannibalizationSeverity `json:"severity"`
	AlertSent     bool                           `json:"alertSent"`
	AlertChannels []string                       `json:"alertChannels"`
	AlertErrors   []string                       `json:"alertErrors,omitempty"`
}

const (
	SourcePayload       = "payload"
	SourceKeywordSource = "keyword_source"
)
