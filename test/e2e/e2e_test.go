// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

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

	batch "keyword-intelligence/internal/workers/keywords/classify-keyword-batch"
	classify "keyword-intelligence/internal/workers/keywords/classify-keyword-intent"
	cluster "keyword-intelligence/internal/workers/keywords/cluster-keywords"
	verify "keyword-intelligence/internal/workers/keywords/verify-intent-classification"
)

// The full suite needs Postgres, Redis, Elasticsearch and Zeebe running
// locally (see configs/config.development.yaml). Set KWINTEL_E2E=1 to run it.
func requireServices(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("KWINTEL_E2E") != "1" {
		t.Skip("KWINTEL_E2E not set; skipping end-to-end suite")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestFullE2E(t *testing.T) {
	cfg := requireServices(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	log := logger.NewTestLogger(t)

	// 1. Connectivity
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	defer pg.Close()
	require.NoError(t, database.WaitForConnection(ctx, "postgres", pg, 5, time.Second, log))

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	require.NoError(t, database.WaitForConnection(ctx, "redis", rdb, 5, time.Second, log))

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, database.WaitForConnection(ctx, "elasticsearch", es, 5, time.Second, log))

	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RetryConfig:            &camunda.RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 5 * time.Second},
	}, log)
	require.NoError(t, err, "Zeebe topology request failed")
	defer zeebe.Close()

	// 2. Schema
	pgStore := store.NewPostgresStore(pg.DB)
	require.NoError(t, pgStore.Migrate(ctx))
	modelRepo := store.NewPostgresModelRepository(pg.DB)
	require.NoError(t, modelRepo.Migrate(ctx))

	cached := store.NewCachedStore(pgStore, rdb.Client, time.Minute, log)
	classifier := intent.NewClassifier(cached, nil, log)
	project := fmt.Sprintf("e2e-%d", time.Now().UnixNano())

	// 3. Workers against the real stores
	t.Run("classify-keyword-intent", func(t *testing.T) {
		h, err := classify.NewHandler(classify.HandlerOptions{Classifier: classifier, Logger: log})
		require.NoError(t, err)

		first, err := h.Execute(ctx, &classify.Input{ProjectID: project, Keyword: "buy cheap seo tools"})
		require.NoError(t, err)
		assert.Equal(t, models.IntentTransactional, first.Intent)

		again, err := h.Execute(ctx, &classify.Input{ProjectID: project, Keyword: "Buy  cheap SEO tools"})
		require.NoError(t, err)
		assert.Equal(t, first.ClassificationID, again.ClassificationID)

		stored, err := pgStore.GetByID(ctx, first.ClassificationID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, project, stored.ProjectID)
	})

	t.Run("verify-intent-classification", func(t *testing.T) {
		c, err := classifier.Classify(ctx, project, "seo tools", intent.ClassifyOptions{})
		require.NoError(t, err)

		h, err := verify.NewHandler(verify.HandlerOptions{Classifier: classifier, Store: cached, Logger: log})
		require.NoError(t, err)
		out, err := h.Execute(ctx, &verify.Input{
			ClassificationID: c.ID,
			CorrectIntent:    models.IntentCommercial,
			VerifiedBy:       "e2e",
		})
		require.NoError(t, err)
		assert.Equal(t, models.IntentCommercial, out.Intent)

		fresh := intent.NewClassifier(pgStore, nil, log)
		again, err := fresh.Classify(ctx, project, "seo tools", intent.ClassifyOptions{SkipCache: true})
		require.NoError(t, err)
		assert.True(t, again.ManuallyVerified)
		assert.Equal(t, models.IntentCommercial, again.Intent)
	})

	t.Run("classify-keyword-batch", func(t *testing.T) {
		h, err := batch.NewHandler(batch.HandlerOptions{Classifier: classifier, Logger: log})
		require.NoError(t, err)
		out, err := h.Execute(ctx, &batch.Input{ProjectID: project, Keywords: []intent.BatchItem{
			{Keyword: "what is keyword research"},
			{Keyword: "ahrefs login"},
			{Keyword: "best rank tracker"},
		}})
		require.NoError(t, err)
		assert.Equal(t, 3, out.Total)
	})

	t.Run("model checkpoint", func(t *testing.T) {
		snap, err := classifier.Snapshot()
		require.NoError(t, err)
		_, err = modelRepo.Save(ctx, snap, 1)
		require.NoError(t, err)

		latest, err := modelRepo.Latest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.NoError(t, intent.NewClassifier(store.NewMemoryStore(), nil, log).LoadSnapshot(latest.Snapshot))
	})

	t.Run("cluster-keywords from elasticsearch", func(t *testing.T) {
		source := store.NewElasticsearchKeywordSource(es.Client,
			cfg.Database.Elasticsearch.RankingsIndex, cfg.Database.Elasticsearch.MaxResults)
		h, err := cluster.NewHandler(cluster.HandlerOptions{
			Engine: clustering.NewEngine(nil, log), Source: source, Logger: log,
		})
		require.NoError(t, err)

		out, err := h.Execute(ctx, &cluster.Input{
			ProjectID: project,
			Keywords:  []string{"seo tools", "best seo tools", "free seo tools"},
		})
		require.NoError(t, err)
		assert.Equal(t, cluster.SourcePayload, out.Source)
	})
}

// ==========================
// Benchmarks (in-memory stores)
// ==========================

func BenchmarkHandler_ClassifyKeywordIntent(b *testing.B) {
	log := logger.NewNoOpLogger()
	h, err := classify.NewHandler(classify.HandlerOptions{
		Classifier: intent.NewClassifier(store.NewMemoryStore(), nil, log),
		Logger:     log,
	})
	require.NoError(b, err)
	useCache := false
	input := &classify.Input{ProjectID: "bench", Keyword: "best running shoes for flat feet", UseCache: &useCache}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Execute(context.Background(), input); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHandler_ClusterKeywords(b *testing.B) {
	log := logger.NewNoOpLogger()
	h, err := cluster.NewHandler(cluster.HandlerOptions{Engine: clustering.NewEngine(nil, log), Logger: log})
	require.NoError(b, err)

	keywords := make([]string, 0, 200)
	for i := 0; i < 50; i++ {
		keywords = append(keywords,
			fmt.Sprintf("running shoes size %d", i),
			fmt.Sprintf("buy trail shoes %d", i),
			fmt.Sprintf("how to train for marathon week %d", i),
			fmt.Sprintf("best hiking boots %d", i),
		)
	}
	input := &cluster.Input{ProjectID: "bench", Keywords: keywords, Method: "hierarchical"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Execute(context.Background(), input); err != nil {
			b.Fatal(err)
		}
	}
}
