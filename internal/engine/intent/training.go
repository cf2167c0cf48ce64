package intent

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"keyword-intelligence/internal/models"
)

const trainFraction = 0.8

// datasetFingerprint hashes the labelled examples in order. It seeds the
// shuffle and names the model, so identical input trains an identical model.
func datasetFingerprint(data []models.TrainingDataPoint) uint64 {
	h := fnv.New64a()
	for _, dp := range data {
		_, _ = h.Write([]byte(dp.Keyword))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(dp.Intent))
		_, _ = h.Write([]byte{'\n'})
	}
	return h.Sum64()
}

func shuffled(data []models.TrainingDataPoint, seed uint64) []models.TrainingDataPoint {
	out := make([]models.TrainingDataPoint, len(data))
	copy(out, data)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// splitTrainTest holds out roughly 20% of the data, keeping at least one test
// example whenever there are two or more examples.
func splitTrainTest(data []models.TrainingDataPoint) (train, test []models.TrainingDataPoint) {
	n := len(data)
	cut := int(math.Round(float64(n) * trainFraction))
	if cut >= n && n > 1 {
		cut = n - 1
	}
	if cut < 1 {
		cut = n
	}
	return data[:cut], data[cut:]
}

func modelVersion(fingerprint uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], fingerprint)
	return fmt.Sprintf("model-%x", buf[:6])
}

func validateTrainingData(data []models.TrainingDataPoint) error {
	if len(data) == 0 {
		return fmt.Errorf("training data is empty")
	}
	for i, dp := range data {
		if !dp.Intent.Valid() {
			return fmt.Errorf("training example %d (%q) has unknown intent %q", i, dp.Keyword, dp.Intent)
		}
	}
	return nil
}
