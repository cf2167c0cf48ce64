package clusterkeywords

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/engine/clustering"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/internal/store"
)

// ==========================
// Test Helpers
// ==========================

type failingSource struct{ err error }

func (f failingSource) ListKeywords(context.Context, string) ([]models.Keyword, error) {
	return nil, f.err
}

func (f failingSource) ListRankings(context.Context, string) ([]models.KeywordRanking, error) {
	return nil, f.err
}

func intPtr(v int) *int { return &v }

func newTestHandler(t *testing.T, source store.KeywordSource) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Engine:       clustering.NewEngine(nil, log),
		Source:       source,
		Logger:       log,
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_PayloadKeywords(t *testing.T) {
	h := newTestHandler(t, nil)
	input := &Input{
		ProjectID: "proj-1",
		Keywords:  []string{"best seo tools", "top seo tools", "seo tools", "buy domain", "cheap domain"},
		Threshold: 0.5,
	}

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, SourcePayload, out.Source)
	require.Len(t, out.Clusters, 1)
	assert.Equal(t, []string{"best seo tools", "top seo tools", "seo tools"}, out.Clusters[0].Keywords)
	assert.ElementsMatch(t, []string{"buy domain", "cheap domain"}, out.OrphanKeywords)
	assert.Equal(t, "semantic", out.Statistics.Method)
	assert.Equal(t, 5, out.Statistics.TotalKeywords)
}

func TestHandler_Execute_JobOptionsOverrideDefaults(t *testing.T) {
	h := newTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{
		ProjectID:      "proj-1",
		Keywords:       []string{"best seo tools", "top seo tools", "buy domain", "cheap domain"},
		Threshold:      0.4,
		MinClusterSize: 2,
	})
	require.NoError(t, err)
	assert.Len(t, out.Clusters, 2)
	assert.Empty(t, out.OrphanKeywords)
	assert.Equal(t, 0.4, out.Statistics.Threshold)
}

func TestHandler_Execute_FromKeywordSource(t *testing.T) {
	source := &store.StaticKeywordSource{Keywords: []models.Keyword{
		{Text: "best seo tools", SearchVolume: intPtr(100)},
		{Text: "top seo tools", SearchVolume: intPtr(50)},
		{Text: "seo tools", SearchVolume: intPtr(400)},
		{Text: "sourdough starter"},
	}}
	h := newTestHandler(t, source)

	out, err := h.Execute(context.Background(), &Input{ProjectID: "proj-1", Threshold: 0.5})
	require.NoError(t, err)

	assert.Equal(t, SourceKeywordSource, out.Source)
	require.Len(t, out.Clusters, 1)
	assert.Equal(t, 550, out.Clusters[0].TotalSearchVolume)
	assert.Equal(t, []string{"sourdough starter"}, out.OrphanKeywords)
}

func TestHandler_Execute_SourceVolumesMatchNormalizedKeywords(t *testing.T) {
	source := &store.StaticKeywordSource{Keywords: []models.Keyword{
		{Text: "Best SEO Tools", SearchVolume: intPtr(100)},
		{Text: "Top  SEO Tools", SearchVolume: intPtr(50)},
		{Text: "SEO Tools", SearchVolume: intPtr(400)},
	}}
	h := newTestHandler(t, source)

	out, err := h.Execute(context.Background(), &Input{ProjectID: "proj-1", Threshold: 0.5})
	require.NoError(t, err)

	require.Len(t, out.Clusters, 1)
	assert.Equal(t, 550, out.Clusters[0].TotalSearchVolume)
}

func TestHandler_Execute_SourceKeywordsOverLimit(t *testing.T) {
	log := logger.NewTestLogger(t)
	cfg := DefaultConfig()
	cfg.MaxKeywords = 2
	h, err := NewHandler(HandlerOptions{
		CustomConfig: cfg,
		Engine:       clustering.NewEngine(nil, log),
		Source: &store.StaticKeywordSource{Keywords: []models.Keyword{
			{Text: "best seo tools"}, {Text: "top seo tools"}, {Text: "seo tools"},
		}},
		Logger: log,
	})
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), &Input{ProjectID: "proj-1"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.AsStandardError(err).Code)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   store.KeywordSource
		input    *Input
		wantCode errors.ErrorCode
	}{
		{
			name:     "unsupported method",
			input:    &Input{ProjectID: "p", Keywords: []string{"seo"}, Method: "kmeans"},
			wantCode: errors.ErrCodeUnsupportedMethod,
		},
		{
			name:     "threshold above one",
			input:    &Input{ProjectID: "p", Keywords: []string{"seo"}, Threshold: 1.2},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "no keywords and no source",
			input:    &Input{ProjectID: "p"},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "source failure",
			source:   failingSource{err: stderrors.New("index_not_found_exception")},
			input:    &Input{ProjectID: "p"},
			wantCode: errors.ErrCodeKeywordSourceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.source)
			out, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.wantCode, errors.AsStandardError(err).Code)
		})
	}
}

func TestHandler_ConfigFromAppConfig(t *testing.T) {
	appCfg := &config.Config{}
	appCfg.Engine.Clustering = config.ClusteringEngineConfig{
		DefaultMethod:  "intent",
		Threshold:      0.7,
		MinClusterSize: 2,
		MaxClusterSize: 20,
	}

	h, err := NewHandler(HandlerOptions{AppConfig: appCfg, Engine: clustering.NewEngine(nil, logger.NewNoOpLogger())})
	require.NoError(t, err)

	cfg := h.GetConfig()
	assert.Equal(t, clustering.MethodIntent, cfg.DefaultMethod)
	assert.Equal(t, 0.7, cfg.Threshold)
	assert.Equal(t, 2, cfg.MinClusterSize)
	assert.Equal(t, 20, cfg.MaxClusterSize)
	assert.Equal(t, clustering.DefaultMembershipThreshold, cfg.MembershipThreshold)
}
