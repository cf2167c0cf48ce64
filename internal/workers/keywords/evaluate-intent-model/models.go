package evaluateintentmodel

import "keyword-intelligence/internal/models"

type Input struct {
	TestData []models.TrainingDataPoint `json:"testData"`
}

type Output struct {
	ModelVersion    string                                 `json:"modelVersion"`
	Trained         bool                                   `json:"trained"`
	Accuracy        float64                                `json:"accuracy"`
	TestSize        int                                    `json:"testSize"`
	PerIntent       map[models.Intent]models.IntentMetrics `json:"perIntent"`
	Labels          []models.Intent                        `json:"labels"`
	ConfusionMatrix [][]int                                `json:"confusionMatrix"`
}
