// internal/models/cluster.go
package models

type Cluster struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Keywords          []string `json:"keywords"`
	PrimaryKeyword    string   `json:"primaryKeyword"`
	Intent            Intent   `json:"intent"`
	TopicScore        float64  `json:"topicScore"`
	Size              int      `json:"size"`
	TotalSearchVolume int      `json:"totalSearchVolume"`
}

type ClusterStatistics struct {
	Method             string  `json:"method"`
	Threshold          float64 `json:"threshold"`
	TotalKeywords      int     `json:"totalKeywords"`
	ClusteredKeywords  int     `json:"clusteredKeywords"`
	OrphanCount        int     `json:"orphanCount"`
	ClusterCount       int     `json:"clusterCount"`
	AverageClusterSize float64 `json:"averageClusterSize"`
	AverageTopicScore  float64 `json:"averageTopicScore"`
	LargestCluster     int     `json:"largestCluster"`
}

type ClusterResult struct {
	Clusters       []Cluster         `json:"clusters"`
	OrphanKeywords []string          `json:"orphanKeywords"`
	Statistics     ClusterStatistics `json:"statistics"`
}

type CannibalizationSeverity string

const (
	SeverityNone   CannibalizationSeverity = "none"
	SeverityLow    CannibalizationSeverity = "low"
	SeverityMedium CannibalizationSeverity = "medium"
	SeverityHigh   CannibalizationSeverity = "high"
)

// Rank orders severities so callers can compare against a minimum.
func (s CannibalizationSeverity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

type CannibalizationGroup struct {
	Keywords       []string `json:"keywords"`
	Similarity     float64  `json:"similarity"`
	URLOverlap     float64  `json:"urlOverlap"`
	URLs           []string `json:"urls"`
	Recommendation string   `json:"recommendation"`
}

type CannibalizationReport struct {
	Groups    []CannibalizationGroup  `json:"groups"`
	PairCount int                     `json:"pairCount"`
	Severity  CannibalizationSeverity `json:"severity"`
}
