package trainintentmodel

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/internal/store"
)

// ==========================
// Mock Model Repository
// ==========================

type fakeModelRepository struct {
	saved []store.ModelCheckpoint
	err   error
}

func (f *fakeModelRepository) Save(_ context.Context, s intent.Snapshot, accuracy float64) (*store.ModelCheckpoint, error) {
	if f.err != nil {
		return nil, errors.NewModelSnapshotFailedError(f.err)
	}
	cp := store.ModelCheckpoint{Version: s.Version, Snapshot: s, Accuracy: accuracy, CreatedAt: time.Now()}
	f.saved = append(f.saved, cp)
	return &cp, nil
}

func (f *fakeModelRepository) Latest(context.Context) (*store.ModelCheckpoint, error) {
	if len(f.saved) == 0 {
		return nil, nil
	}
	return &f.saved[len(f.saved)-1], nil
}

// publishOnTrainedLogger publishes a rival model right after the first
// training run logs completion, the way a concurrent train job would.
type publishOnTrainedLogger struct {
	logger.Logger
	once  sync.Once
	rival func()
}

func (l *publishOnTrainedLogger) Info(msg string, fields map[string]interface{}) {
	l.Logger.Info(msg, fields)
	if msg == "Intent model trained" {
		l.once.Do(l.rival)
	}
}

// ==========================
// Test Helpers
// ==========================

func labelled() []models.TrainingDataPoint {
	add := func(intentName models.Intent, keywords ...string) []models.TrainingDataPoint {
		out := make([]models.TrainingDataPoint, len(keywords))
		for i, k := range keywords {
			out[i] = models.TrainingDataPoint{Keyword: k, Intent: intentName}
		}
		return out
	}
	var data []models.TrainingDataPoint
	data = append(data, add(models.IntentInformational,
		"how to bake bread", "what is sourdough", "why does dough rise", "guide to yeast", "how to knead dough")...)
	data = append(data, add(models.IntentNavigational,
		"king arthur login", "bakery website", "breadtalk official site", "paul bakery homepage", "gail's account")...)
	data = append(data, add(models.IntentCommercial,
		"best bread maker", "bread maker reviews", "top stand mixers", "kitchenaid vs kenwood", "best flour brand")...)
	data = append(data, add(models.IntentTransactional,
		"buy bread maker", "order sourdough starter", "flour discount code", "cheap stand mixer deal", "purchase banneton")...)
	return data
}

func newTestHandler(t *testing.T, repo store.ModelRepository) (*Handler, *intent.Classifier) {
	t.Helper()
	log := logger.NewTestLogger(t)
	classifier := intent.NewClassifier(store.NewMemoryStore(), nil, log)
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Classifier:   classifier,
		Models:       repo,
		Logger:       log,
	})
	require.NoError(t, err)
	return h, classifier
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_TrainsAndCheckpoints(t *testing.T) {
	repo := &fakeModelRepository{}
	h, classifier := newTestHandler(t, repo)

	out, err := h.Execute(context.Background(), &Input{TrainingData: labelled()})
	require.NoError(t, err)

	assert.Equal(t, 16, out.TrainSize)
	assert.Equal(t, 4, out.TestSize)
	assert.True(t, out.CheckpointSaved)
	assert.NotEqual(t, intent.DefaultModelVersion, out.ModelVersion)
	assert.Equal(t, out.ModelVersion, classifier.Model().Version())
	assert.GreaterOrEqual(t, out.Accuracy, 0.0)
	assert.LessOrEqual(t, out.Accuracy, 1.0)

	rowTotal := 0
	for _, row := range out.ConfusionMatrix {
		for _, n := range row {
			rowTotal += n
		}
	}
	assert.Equal(t, out.TestSize, rowTotal)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, out.ModelVersion, repo.saved[0].Version)
	assert.Equal(t, out.Accuracy, repo.saved[0].Accuracy)
}

func TestHandler_Execute_CheckpointsOwnModelWhenAnotherIsPublished(t *testing.T) {
	repo := &fakeModelRepository{}
	log := &publishOnTrainedLogger{Logger: logger.NewTestLogger(t)}
	classifier := intent.NewClassifier(store.NewMemoryStore(), nil, log)
	log.rival = func() { classifier.SetModel(intent.DefaultModel()) }

	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Classifier:   classifier,
		Models:       repo,
		Logger:       log,
	})
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), &Input{TrainingData: labelled()})
	require.NoError(t, err)

	assert.Equal(t, intent.DefaultModelVersion, classifier.Model().Version(), "rival model is live")
	require.Len(t, repo.saved, 1)
	assert.Equal(t, out.ModelVersion, repo.saved[0].Version)
	assert.Equal(t, out.ModelVersion, repo.saved[0].Snapshot.Version)
	assert.NotEqual(t, intent.DefaultModelVersion, repo.saved[0].Version)
}

func TestHandler_Execute_CheckpointDisabled(t *testing.T) {
	repo := &fakeModelRepository{}
	log := logger.NewTestLogger(t)
	cfg := DefaultConfig()
	cfg.Checkpoint = false
	h, err := NewHandler(HandlerOptions{
		CustomConfig: cfg,
		Classifier:   intent.NewClassifier(store.NewMemoryStore(), nil, log),
		Models:       repo,
		Logger:       log,
	})
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), &Input{TrainingData: labelled()})
	require.NoError(t, err)
	assert.False(t, out.CheckpointSaved)
	assert.Empty(t, repo.saved)
}

func TestHandler_Execute_NoRepository(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{TrainingData: labelled()})
	require.NoError(t, err)
	assert.False(t, out.CheckpointSaved)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		repo     *fakeModelRepository
		data     []models.TrainingDataPoint
		wantCode errors.ErrorCode
	}{
		{
			name:     "empty training data",
			repo:     &fakeModelRepository{},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "unknown label",
			repo:     &fakeModelRepository{},
			data:     []models.TrainingDataPoint{{Keyword: "x", Intent: "curious"}},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "checkpoint failure",
			repo:     &fakeModelRepository{err: stderrors.New("relation does not exist")},
			data:     labelled(),
			wantCode: errors.ErrCodeModelSnapshotFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, tt.repo)
			out, err := h.Execute(context.Background(), &Input{TrainingData: tt.data})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.wantCode, errors.AsStandardError(err).Code)
		})
	}
}

func TestHandler_ParseVariables(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	_, err := h.runner.ParseVariables(`{"trainingData":[{"keyword":"buy bread","intent":"shopping"}]}`)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSchemaValidationFailed, errors.AsStandardError(err).Code)

	_, err = h.runner.ParseVariables(`{"trainingData":[]}`)
	require.Error(t, err)
}
