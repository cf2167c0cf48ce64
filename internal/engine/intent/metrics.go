package intent

import "keyword-intelligence/internal/models"

// computeMetrics compares predictions with gold labels. Precision, recall and
// F1 are 0 whenever their denominator is 0.
func computeMetrics(gold, predicted []models.Intent) *models.ModelMetrics {
	k := len(models.Intents)
	matrix := make([][]int, k)
	for i := range matrix {
		matrix[i] = make([]int, k)
	}

	correct := 0
	for i := range gold {
		a, p := gold[i].Index(), predicted[i].Index()
		if a < 0 || p < 0 {
			continue
		}
		matrix[a][p]++
		if a == p {
			correct++
		}
	}

	metrics := &models.ModelMetrics{
		PerIntent:       make(map[models.Intent]models.IntentMetrics, k),
		Labels:          append([]models.Intent(nil), models.Intents...),
		ConfusionMatrix: matrix,
		TestSize:        len(gold),
	}
	if len(gold) > 0 {
		metrics.Accuracy = float64(correct) / float64(len(gold))
	}

	for idx, intent := range models.Intents {
		tp := matrix[idx][idx]
		actual, predictedCount := 0, 0
		for j := 0; j < k; j++ {
			actual += matrix[idx][j]
			predictedCount += matrix[j][idx]
		}

		var m models.IntentMetrics
		m.Support = actual
		if predictedCount > 0 {
			m.Precision = float64(tp) / float64(predictedCount)
		}
		if actual > 0 {
			m.Recall = float64(tp) / float64(actual)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		metrics.PerIntent[intent] = m
	}
	return metrics
}
