package trainintentmodel

import "keyword-intelligence/internal/models"

type Input struct {
	TrainingData []models.TrainingDataPoint `json:"trainingData"`
}

type Output struct {
	ModelVersion    string                                 `json:"modelVersion"`
	Accuracy        float64                                `json:"accuracy"`
	TrainSize       int                                    `json:"trainSize"`
	TestSize        int                                    `json:"testSize"`
	PerIntent       map[models.Intent]models.IntentMetrics `json:"perIntent"`
	Labels          []models.Intent                        `json:"labels"`
	ConfusionMatrix [][]int                                `json:"confusionMatrix"`
	CheckpointSaved bool                                   `json:"checkpointSaved"`
}
