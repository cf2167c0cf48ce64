package classifykeywordbatch

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/internal/store"
)

// ==========================
// Test Helpers
// ==========================

// flakyStore fails every save after the first n.
type flakyStore struct {
	*store.MemoryStore
	allowed int32
	saves   atomic.Int32
}

func (f *flakyStore) Save(ctx context.Context, c *models.IntentClassification) (*models.IntentClassification, error) {
	if f.saves.Add(1) > f.allowed {
		return nil, stderrors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, c)
}

func newTestHandler(t *testing.T, st intent.Store, concurrency int) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	cfg := DefaultConfig()
	cfg.Concurrency = concurrency
	h, err := NewHandler(HandlerOptions{
		CustomConfig: cfg,
		Classifier:   intent.NewClassifier(st, nil, log),
		Logger:       log,
	})
	require.NoError(t, err)
	return h
}

func batchInput() *Input {
	volume := 900
	return &Input{
		ProjectID: "proj-1",
		Keywords: []intent.BatchItem{
			{Keyword: "how to improve seo"},
			{Keyword: "buy cheap seo tools", SearchVolume: &volume},
			{Keyword: "facebook login"},
			{Keyword: "best crm vs hubspot"},
			{Keyword: "how to write meta descriptions"},
		},
	}
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_PreservesOrder(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		h := newTestHandler(t, store.NewMemoryStore(), concurrency)
		input := batchInput()

		out, err := h.Execute(context.Background(), input)
		require.NoError(t, err)
		require.Len(t, out.Classifications, len(input.Keywords))

		for i, item := range input.Keywords {
			assert.Equal(t, item.Keyword, out.Classifications[i].Keyword, "concurrency %d", concurrency)
		}
		assert.Equal(t, models.IntentInformational, out.Classifications[0].Intent)
		assert.Equal(t, models.IntentTransactional, out.Classifications[1].Intent)
		assert.Equal(t, 900, *out.Classifications[1].SearchVolume)
	}
}

func TestHandler_Execute_Counts(t *testing.T) {
	h := newTestHandler(t, store.NewMemoryStore(), 2)

	out, err := h.Execute(context.Background(), batchInput())
	require.NoError(t, err)

	assert.Equal(t, 5, out.Total)
	total := 0
	for _, intentName := range models.Intents {
		assert.Contains(t, out.IntentCounts, intentName)
		total += out.IntentCounts[intentName]
	}
	assert.Equal(t, out.Total, total)
	assert.GreaterOrEqual(t, out.IntentCounts[models.IntentInformational], 2)
}

func TestHandler_Execute_RecomputesStoredRecords(t *testing.T) {
	st := store.NewMemoryStore()
	h := newTestHandler(t, st, 3)
	ctx := context.Background()

	first, err := h.Execute(ctx, batchInput())
	require.NoError(t, err)
	second, err := h.Execute(ctx, batchInput())
	require.NoError(t, err)

	for i := range first.Classifications {
		assert.Equal(t, first.Classifications[i].ID, second.Classifications[i].ID)
	}
	assert.Equal(t, 5, st.Len())
}

func TestHandler_Execute_Empty(t *testing.T) {
	h := newTestHandler(t, store.NewMemoryStore(), 4)

	out, err := h.Execute(context.Background(), &Input{ProjectID: "proj-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Total)
	assert.Empty(t, out.Classifications)
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		st := &flakyStore{MemoryStore: store.NewMemoryStore(), allowed: 2}
		h := newTestHandler(t, st, concurrency)

		out, err := h.Execute(context.Background(), batchInput())
		require.Error(t, err)
		assert.Nil(t, out)
		assert.Equal(t, errors.ErrCodeStoreOperationFailed, errors.AsStandardError(err).Code)
	}
}

func TestHandler_ParseVariables(t *testing.T) {
	h := newTestHandler(t, store.NewMemoryStore(), 2)

	vars, err := h.runner.ParseVariables(`{"projectId":"p","keywords":[{"keyword":"a"},{"keyword":"b","searchVolume":10}]}`)
	require.NoError(t, err)
	out, err := h.execute(context.Background(), vars)
	require.NoError(t, err)
	assert.Equal(t, float64(2), out["total"])

	_, err = h.runner.ParseVariables(`{"projectId":"p","keywords":[{"searchVolume":10}]}`)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSchemaValidationFailed, errors.AsStandardError(err).Code)
}
