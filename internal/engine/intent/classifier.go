// Package intent implements the search-intent ensemble: a rule-pattern scorer,
// a TF-IDF scorer and a Naive Bayes scorer fused into a distribution over the
// four intents.
package intent

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/engine/features"
	"keyword-intelligence/internal/engine/text"
	"keyword-intelligence/internal/models"
)

// UntrainedModelVersion marks classifications made without any learned model.
const UntrainedModelVersion = "untrained"

// LowConfidenceThreshold bounds the review queue returned by
// GetLowConfidenceClassifications.
const LowConfidenceThreshold = models.MediumConfidenceThreshold

type ClassifyOptions struct {
	SearchVolume *int
	SERPSignals  *models.SERPSignals
	// SkipCache recomputes even when a stored classification exists. A
	// manually verified record is still returned unchanged.
	SkipCache bool
}

type BatchItem struct {
	Keyword      string              `json:"keyword"`
	SearchVolume *int                `json:"searchVolume,omitempty"`
	SERPSignals  *models.SERPSignals `json:"serpSignals,omitempty"`
}

// Prediction is a store-free classification result.
type Prediction struct {
	Intent          models.Intent
	Confidence      float64
	ConfidenceLevel models.ConfidenceLevel
	Probabilities   map[models.Intent]float64
	Features        *models.KeywordFeatures
	ModelVersion    string
}

type Classifier struct {
	store     Store
	extractor *features.Extractor
	logger    logger.Logger
	model     atomic.Pointer[Model]
	now       func() time.Time
	newID     func() string
}

type Option func(*Classifier)

// WithModel starts the classifier from m instead of the bootstrap model.
// A nil model leaves the classifier untrained.
func WithModel(m *Model) Option {
	return func(c *Classifier) { c.model.Store(m) }
}

// WithClock overrides time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

func NewClassifier(store Store, extractor *features.Extractor, log logger.Logger, opts ...Option) *Classifier {
	if extractor == nil {
		extractor = features.NewExtractor()
	}
	c := &Classifier{
		store:     store,
		extractor: extractor,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
	c.model.Store(DefaultModel())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the current model, or nil when untrained.
func (c *Classifier) Model() *Model {
	return c.model.Load()
}

// SetModel atomically publishes m to all subsequent classifications.
func (c *Classifier) SetModel(m *Model) {
	c.model.Store(m)
	version := UntrainedModelVersion
	if m != nil {
		version = m.Version()
	}
	c.logger.Info("Intent model published", map[string]interface{}{"modelVersion": version})
}

// LoadSnapshot validates and publishes a checkpointed model.
func (c *Classifier) LoadSnapshot(s Snapshot) error {
	m, err := NewModelFromSnapshot(s)
	if err != nil {
		return apperrors.NewInvalidInputError(err.Error())
	}
	c.SetModel(m)
	return nil
}

// Snapshot checkpoints the current model. It fails with ModelNotTrained when
// no model is loaded.
func (c *Classifier) Snapshot() (Snapshot, error) {
	m := c.model.Load()
	if m == nil {
		return Snapshot{}, apperrors.NewModelNotTrainedError("no model loaded")
	}
	return m.Snapshot(), nil
}

func normalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(text.Normalize(keyword)), " ")
}

// Predict runs the ensemble against the current model without touching the store.
func (c *Classifier) Predict(keyword string, serp *models.SERPSignals) Prediction {
	return c.predict(c.model.Load(), normalizeKeyword(keyword), serp)
}

func (c *Classifier) predict(m *Model, keyword string, serp *models.SERPSignals) Prediction {
	f := c.extractor.Extract(keyword, serp)

	pattern := patternScores(f.PatternScores)
	tfidf, bayes := zeroScores(), zeroScores()
	version := UntrainedModelVersion
	if m != nil {
		terms := text.Terms(keyword)
		tfidf = m.tfidfScores(terms)
		bayes = m.bayesScores(terms)
		version = m.Version()
	}

	probs := fuse(pattern, tfidf, bayes)
	best := argmax(probs)
	level := models.ConfidenceLevelFor(probs[best])
	if m == nil {
		level = models.ConfidenceLow
	}

	return Prediction{
		Intent:          best,
		Confidence:      probs[best],
		ConfidenceLevel: level,
		Probabilities:   probs,
		Features:        f,
		ModelVersion:    version,
	}
}

// Classify returns the stored classification for (scope, keyword) when one
// exists, and otherwise computes, persists and returns a new one.
func (c *Classifier) Classify(ctx context.Context, scope, keyword string, opts ClassifyOptions) (*models.IntentClassification, error) {
	kw := normalizeKeyword(keyword)
	log := c.logger.WithFields(map[string]interface{}{"projectId": scope, "keyword": kw})

	existing, err := c.store.Get(ctx, scope, kw)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !opts.SkipCache {
			log.Debug("Classification cache hit", nil)
			return existing, nil
		}
		if existing.ManuallyVerified {
			log.Debug("Keeping manually verified classification", map[string]interface{}{
				"verifiedBy": existing.VerifiedBy,
			})
			return existing, nil
		}
	}

	p := c.predict(c.model.Load(), kw, opts.SERPSignals)
	now := c.now()
	record := &models.IntentClassification{
		ID:                  c.newID(),
		ProjectID:           scope,
		Keyword:             kw,
		Intent:              p.Intent,
		Confidence:          p.Confidence,
		ConfidenceLevel:     p.ConfidenceLevel,
		IntentProbabilities: p.Probabilities,
		Features:            p.Features,
		Recommendations:     Recommendations(p.Intent),
		ModelVersion:        p.ModelVersion,
		SearchVolume:        opts.SearchVolume,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		if record.SearchVolume == nil {
			record.SearchVolume = existing.SearchVolume
		}
	}

	saved, err := c.store.Save(ctx, record)
	if err != nil {
		return nil, err
	}
	log.Debug("Keyword classified", map[string]interface{}{
		"intent":          saved.Intent,
		"confidence":      saved.Confidence,
		"confidenceLevel": saved.ConfidenceLevel,
		"modelVersion":    saved.ModelVersion,
	})
	return saved, nil
}

// ClassifyBatch classifies items in order, bypassing the cache. The result is
// positionally aligned with items.
func (c *Classifier) ClassifyBatch(ctx context.Context, scope string, items []BatchItem) ([]*models.IntentClassification, error) {
	out := make([]*models.IntentClassification, len(items))
	for i, item := range items {
		res, err := c.Classify(ctx, scope, item.Keyword, ClassifyOptions{
			SearchVolume: item.SearchVolume,
			SERPSignals:  item.SERPSignals,
			SkipCache:    true,
		})
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

// Train fits a new model on a deterministic 80% shuffle of data, evaluates it
// on the remaining 20% and publishes it, replacing all previous weights.
func (c *Classifier) Train(ctx context.Context, data []models.TrainingDataPoint) (*models.ModelMetrics, error) {
	_, metrics, err := c.TrainModel(ctx, data)
	return metrics, err
}

// TrainModel is Train that also returns the fitted model. Callers that
// checkpoint must use it rather than Snapshot, since another training run may
// publish its own model in between.
func (c *Classifier) TrainModel(ctx context.Context, data []models.TrainingDataPoint) (*Model, *models.ModelMetrics, error) {
	if err := validateTrainingData(data); err != nil {
		return nil, nil, apperrors.NewInvalidInputError(err.Error())
	}

	normalized := make([]models.TrainingDataPoint, len(data))
	for i, dp := range data {
		normalized[i] = models.TrainingDataPoint{Keyword: normalizeKeyword(dp.Keyword), Intent: dp.Intent}
	}

	fingerprint := datasetFingerprint(normalized)
	train, test := splitTrainTest(shuffled(normalized, fingerprint))

	m := fit(train, modelVersion(fingerprint), c.now())
	metrics := c.evaluateWith(m, test)
	metrics.TrainSize = len(train)
	metrics.ModelVersion = m.Version()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	c.SetModel(m)

	c.logger.Info("Intent model trained", map[string]interface{}{
		"modelVersion":   m.Version(),
		"trainSize":      len(train),
		"testSize":       len(test),
		"vocabularySize": m.VocabularySize(),
		"accuracy":       metrics.Accuracy,
	})
	return m, metrics, nil
}

// Evaluate scores the current model against labelled data. It never writes
// to the store.
func (c *Classifier) Evaluate(ctx context.Context, data []models.TrainingDataPoint) (*models.ModelMetrics, error) {
	if err := validateTrainingData(data); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	m := c.model.Load()
	metrics := c.evaluateWith(m, data)
	if m != nil {
		metrics.ModelVersion = m.Version()
		metrics.TrainSize = m.TrainingSize()
	} else {
		metrics.ModelVersion = UntrainedModelVersion
	}
	return metrics, nil
}

func (c *Classifier) evaluateWith(m *Model, data []models.TrainingDataPoint) *models.ModelMetrics {
	gold := make([]models.Intent, len(data))
	predicted := make([]models.Intent, len(data))
	for i, dp := range data {
		gold[i] = dp.Intent
		predicted[i] = c.predict(m, normalizeKeyword(dp.Keyword), nil).Intent
	}
	return computeMetrics(gold, predicted)
}

// VerifyClassification records a human correction. The probabilities collapse
// onto the verified intent so the record stays internally consistent.
func (c *Classifier) VerifyClassification(ctx context.Context, id string, correct models.Intent, verifiedBy string) (*models.IntentClassification, error) {
	if !correct.Valid() {
		return nil, apperrors.NewInvalidInputError("unknown intent: " + string(correct))
	}
	if strings.TrimSpace(verifiedBy) == "" {
		return nil, apperrors.NewInvalidInputError("verifiedBy is required")
	}

	record, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NewNotFoundError(id)
	}

	previous := record.Intent
	now := c.now()
	probs := zeroScores()
	probs[correct] = 1

	updated := *record
	updated.Intent = correct
	updated.Confidence = 1
	updated.ConfidenceLevel = models.ConfidenceHigh
	updated.IntentProbabilities = probs
	updated.Recommendations = Recommendations(correct)
	updated.ManuallyVerified = true
	updated.VerifiedBy = verifiedBy
	updated.VerifiedAt = &now
	updated.UpdatedAt = now

	saved, err := c.store.Save(ctx, &updated)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Classification verified", map[string]interface{}{
		"classificationId": id,
		"previousIntent":   previous,
		"intent":           correct,
		"verifiedBy":       verifiedBy,
	})
	return saved, nil
}

func (c *Classifier) GetIntentDistribution(ctx context.Context, scope string) (*models.IntentDistribution, error) {
	records, err := c.store.Query(ctx, scope, Filter{})
	if err != nil {
		return nil, err
	}

	dist := &models.IntentDistribution{
		Total:       len(records),
		Counts:      make(map[models.Intent]int, len(models.Intents)),
		Percentages: make(map[models.Intent]float64, len(models.Intents)),
	}
	for _, intent := range models.Intents {
		dist.Counts[intent] = 0
		dist.Percentages[intent] = 0
	}
	for _, r := range records {
		dist.Counts[r.Intent]++
	}
	if dist.Total > 0 {
		for _, intent := range models.Intents {
			dist.Percentages[intent] = 100 * float64(dist.Counts[intent]) / float64(dist.Total)
		}
	}
	return dist, nil
}

func (c *Classifier) GetByIntent(ctx context.Context, scope string, intent models.Intent) ([]*models.IntentClassification, error) {
	if !intent.Valid() {
		return nil, apperrors.NewInvalidInputError("unknown intent: " + string(intent))
	}
	return c.store.Query(ctx, scope, Filter{Intents: []models.Intent{intent}})
}

// GetLowConfidenceClassifications lists unverified records below medium
// confidence, least confident first.
func (c *Classifier) GetLowConfidenceClassifications(ctx context.Context, scope string, limit int) ([]*models.IntentClassification, error) {
	maxConfidence := LowConfidenceThreshold
	verified := false
	return c.store.Query(ctx, scope, Filter{
		MaxConfidence:    &maxConfidence,
		Verified:         &verified,
		SortByConfidence: true,
		Limit:            limit,
	})
}
