package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-intelligence/internal/common/camunda"
	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/database"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/engine/clustering"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/internal/store"
	"keyword-intelligence/pkg/registry"
)

// ==========================
// Model Restore Tests
// ==========================

type fakeModelRepository struct {
	latest *store.ModelCheckpoint
	err    error
}

func (f *fakeModelRepository) Save(_ context.Context, s intent.Snapshot, acc float64) (*store.ModelCheckpoint, error) {
	return &store.ModelCheckpoint{Version: s.Version, Snapshot: s, Accuracy: acc}, nil
}

func (f *fakeModelRepository) Latest(context.Context) (*store.ModelCheckpoint, error) {
	return f.latest, f.err
}

func TestRestoreModel(t *testing.T) {
	log := logger.NewTestLogger(t)
	ctx := context.Background()

	t.Run("restores latest checkpoint", func(t *testing.T) {
		snap := intent.DefaultModel().Snapshot()
		snap.Version = "checkpoint-7"
		c := intent.NewClassifier(store.NewMemoryStore(), nil, log, intent.WithModel(nil))

		err := restoreModel(ctx, c, &fakeModelRepository{latest: &store.ModelCheckpoint{
			Version: snap.Version, Snapshot: snap, Accuracy: 0.9, CreatedAt: time.Now(),
		}}, false, log)
		require.NoError(t, err)
		require.NotNil(t, c.Model())
		assert.Equal(t, "checkpoint-7", c.Model().Version())
	})

	t.Run("keeps bootstrap model without checkpoint", func(t *testing.T) {
		c := intent.NewClassifier(store.NewMemoryStore(), nil, log)
		require.NoError(t, restoreModel(ctx, c, &fakeModelRepository{}, false, log))
		require.NotNil(t, c.Model())
		assert.Equal(t, intent.DefaultModel().Version(), c.Model().Version())
	})

	t.Run("starts untrained when bootstrap is skipped", func(t *testing.T) {
		c := intent.NewClassifier(store.NewMemoryStore(), nil, log)
		require.NoError(t, restoreModel(ctx, c, &fakeModelRepository{}, true, log))
		assert.Nil(t, c.Model())
	})

	t.Run("repository failure", func(t *testing.T) {
		c := intent.NewClassifier(store.NewMemoryStore(), nil, log)
		err := restoreModel(ctx, c, &fakeModelRepository{err: errors.New("db down")}, false, log)
		assert.Error(t, err)
	})

	t.Run("corrupt checkpoint", func(t *testing.T) {
		c := intent.NewClassifier(store.NewMemoryStore(), nil, log)
		err := restoreModel(ctx, c, &fakeModelRepository{latest: &store.ModelCheckpoint{
			Version: "broken",
			Snapshot: intent.Snapshot{
				Version: "broken",
				Priors:  map[models.Intent]float64{"bogus": 0.5},
			},
		}}, false, log)
		assert.Error(t, err)
		assert.Equal(t, intent.DefaultModel().Version(), c.Model().Version())
	})
}

// ==========================
// Registration Tests
// ==========================

type recordingRegistrar struct {
	registered []string
	failOn     string
}

func (r *recordingRegistrar) Register(opts camunda.WorkerOptions, _ camunda.JobHandler) error {
	if opts.TaskType == r.failOn {
		return errors.New("duplicate")
	}
	r.registered = append(r.registered, opts.TaskType)
	return nil
}

func testDependencies(t *testing.T, cfg *config.Config) dependencies {
	log := logger.NewTestLogger(t)
	mem := store.NewMemoryStore()
	return dependencies{
		config:     cfg,
		logger:     log,
		registry:   registry.Default(),
		classifier: intent.NewClassifier(mem, nil, log),
		store:      mem,
		models:     &fakeModelRepository{},
		engine:     clustering.NewEngine(nil, log),
		source:     &store.StaticKeywordSource{},
	}
}

func TestBuildAndRegisterHandlers(t *testing.T) {
	cfg := &config.Config{Workers: map[string]config.WorkerConfig{}}
	handlers, err := buildHandlers(testDependencies(t, cfg))
	require.NoError(t, err)
	require.Len(t, handlers, len(registry.Default().Activities))

	reg := &recordingRegistrar{}
	require.NoError(t, registerHandlers(reg, handlers, logger.NewTestLogger(t)))
	assert.Len(t, reg.registered, len(handlers))

	for _, taskType := range reg.registered {
		_, ok := registry.Default().Find(taskType)
		assert.True(t, ok, "task type %s missing from registry", taskType)
	}
}

func TestRegisterHandlers_SkipsDisabled(t *testing.T) {
	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		"cluster-keywords": {Enabled: false, MaxJobsActive: 1, Timeout: 1000},
	}}
	handlers, err := buildHandlers(testDependencies(t, cfg))
	require.NoError(t, err)

	reg := &recordingRegistrar{}
	require.NoError(t, registerHandlers(reg, handlers, logger.NewTestLogger(t)))
	assert.NotContains(t, reg.registered, "cluster-keywords")
	assert.Len(t, reg.registered, len(handlers)-1)
}

func TestRegisterHandlers_PropagatesError(t *testing.T) {
	handlers := []keywordWorker{stubWorker{taskType: "classify-keyword-intent"}}
	reg := &recordingRegistrar{failOn: "classify-keyword-intent"}
	assert.Error(t, registerHandlers(reg, handlers, logger.NewTestLogger(t)))
}

type stubWorker struct{ taskType string }

func (s stubWorker) Handle(worker.JobClient, entities.Job) {}
func (s stubWorker) WorkerOptions() camunda.WorkerOptions {
	return camunda.WorkerOptions{TaskType: s.taskType}
}
func (s stubWorker) IsEnabled() bool { return true }

// ==========================
// Health Endpoint Tests
// ==========================

func TestHealthMux(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	broken := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	tests := []struct {
		name       string
		deps       map[string]database.Pinger
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "liveness", path: "/health", wantStatus: http.StatusOK, wantBody: "healthy"},
		{
			name:       "ready",
			deps:       map[string]database.Pinger{"postgres": healthy, "zeebe": healthy},
			path:       "/ready",
			wantStatus: http.StatusOK,
			wantBody:   "ready",
		},
		{
			name:       "not ready",
			deps:       map[string]database.Pinger{"postgres": healthy, "redis": broken},
			path:       "/ready",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "not_ready",
		},
		{name: "metrics", path: "/metrics", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHealthMux(tt.deps, metrics).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody == "" {
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestHealthMux_ReportsFailingCheck(t *testing.T) {
	deps := map[string]database.Pinger{
		"redis": pingFunc(func(context.Context) error { return errors.New("timeout") }),
	}
	rec := httptest.NewRecorder()
	newHealthMux(deps, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "timeout", body.Checks["redis"])
}
