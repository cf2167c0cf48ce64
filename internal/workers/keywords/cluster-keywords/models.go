package clusterkeywords

import "keyword-intelligence/internal/models"

type Input struct {
	ProjectID string `json:"projectId"`
	// Keywords overrides the project's keyword source when non-empty.
	Keywords       []string `json:"keywords,omitempty"`
	Method         string   `json:"method,omitempty"`
	Threshold      float64  `json:"threshold,omitempty"`
	MinClusterSize int      `json:"minClusterSize,omitempty"`
	MaxClusterSize int      `json:"maxClusterSize,omitempty"`
	NumTopics      int      `json:"numTopics,omitempty"`
}

type Output struct {
	Source         string                   `json:"source"`
	Clusters       []models.Cluster         `json:"clusters"`
	OrphanKeywords []string                 `json:"orphanKeywords"`
	Statistics     models.ClusterStatistics `json:"statistics"`
}

const (
	SourcePayload       = "payload"
	SourceKeywordSource = "keyword_source"
)
