package classifykeywordintent

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/internal/store"
)

// ==========================
// Test Helpers
// ==========================

type failingStore struct {
	intent.Store
	err error
}

func (f *failingStore) Get(context.Context, string, string) (*models.IntentClassification, error) {
	return nil, f.err
}

func newTestHandler(t *testing.T, st intent.Store) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Classifier:   intent.NewClassifier(st, nil, log),
		Logger:       log,
	})
	require.NoError(t, err)
	return h
}

func boolPtr(b bool) *bool { return &b }

// ==========================
// Handler Creation Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	classifier := intent.NewClassifier(store.NewMemoryStore(), nil, logger.NewNoOpLogger())

	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr string
	}{
		{
			name: "valid configuration",
			opts: HandlerOptions{CustomConfig: DefaultConfig(), Classifier: classifier},
		},
		{
			name:    "missing classifier",
			opts:    HandlerOptions{CustomConfig: DefaultConfig()},
			wantErr: "requires a classifier",
		},
		{
			name: "invalid timeout",
			opts: HandlerOptions{
				CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: -time.Second, Concurrency: 1},
				Classifier:   classifier,
			},
			wantErr: "timeout must be positive",
		},
		{
			name: "invalid concurrency",
			opts: HandlerOptions{
				CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: time.Second},
				Classifier:   classifier,
			},
			wantErr: "concurrency must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandler(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TaskType, h.GetTaskType())
			assert.True(t, h.IsEnabled())
		})
	}
}

func TestHandler_ConfigFromAppConfig(t *testing.T) {
	appCfg := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: false, MaxJobsActive: 20, Timeout: 2500, Concurrency: 8},
	}}
	h, err := NewHandler(HandlerOptions{
		AppConfig:  appCfg,
		Classifier: intent.NewClassifier(store.NewMemoryStore(), nil, logger.NewNoOpLogger()),
	})
	require.NoError(t, err)

	assert.False(t, h.IsEnabled())
	opts := h.WorkerOptions()
	assert.Equal(t, 20, opts.MaxJobsActive)
	assert.Equal(t, 2500*time.Millisecond, opts.Timeout)
	assert.Equal(t, 8, opts.Concurrency)
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h := newTestHandler(t, store.NewMemoryStore())
	volume := 1200

	out, err := h.Execute(context.Background(), &Input{
		ProjectID:    "proj-1",
		Keyword:      "Buy cheap SEO tools",
		SearchVolume: &volume,
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntentTransactional, out.Intent)
	assert.NotEmpty(t, out.ClassificationID)
	assert.NotEmpty(t, out.Recommendations)
	require.NotNil(t, out.Classification)
	assert.Equal(t, "buy cheap seo tools", out.Classification.Keyword)
	assert.Equal(t, &volume, out.Classification.SearchVolume)

	sum := 0.0
	for _, p := range out.Classification.IntentProbabilities {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestHandler_Execute_CacheBehaviour(t *testing.T) {
	st := store.NewMemoryStore()
	h := newTestHandler(t, st)
	ctx := context.Background()

	first, err := h.Execute(ctx, &Input{ProjectID: "proj-1", Keyword: "how to improve seo"})
	require.NoError(t, err)

	cached, err := h.Execute(ctx, &Input{ProjectID: "proj-1", Keyword: "how to improve seo", UseCache: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, first.ClassificationID, cached.ClassificationID)
	assert.Equal(t, first.Classification.CreatedAt, cached.Classification.CreatedAt)

	recomputed, err := h.Execute(ctx, &Input{ProjectID: "proj-1", Keyword: "how to improve seo", UseCache: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, first.ClassificationID, recomputed.ClassificationID)
	assert.Equal(t, models.IntentInformational, recomputed.Intent)
	assert.Equal(t, 1, st.Len())
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	h := newTestHandler(t, &failingStore{Store: store.NewMemoryStore(), err: stderrors.New("connection refused")})

	out, err := h.Execute(context.Background(), &Input{ProjectID: "proj-1", Keyword: "best crm"})
	require.Error(t, err)
	assert.Nil(t, out)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeStoreOperationFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

// ==========================
// Variable Handling Tests
// ==========================

func TestHandler_ExecuteFromVariables(t *testing.T) {
	h := newTestHandler(t, store.NewMemoryStore())

	vars, err := h.runner.ParseVariables(`{"projectId":"proj-1","keyword":"facebook login","serpSignals":{"hasSitelinks":true}}`)
	require.NoError(t, err)

	out, err := h.execute(context.Background(), vars)
	require.NoError(t, err)
	assert.Equal(t, string(models.IntentNavigational), out["intent"])
	assert.NotEmpty(t, out["classificationId"])
	assert.Contains(t, out, "classification")

	_, err = h.runner.ParseVariables(`{"projectId":"proj-1","keyword":"x","serpSignals":{"adCount":-1}}`)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSchemaValidationFailed, errors.AsStandardError(err).Code)
}
