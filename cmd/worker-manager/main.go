// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"keyword-intelligence/internal/alerts"
	"keyword-intelligence/internal/common/aws"
	"keyword-intelligence/internal/common/camunda"
	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/database"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/observability"
	"keyword-intelligence/internal/engine/clustering"
	"keyword-intelligence/internal/engine/features"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/internal/store"
	"keyword-intelligence/pkg/registry"
)

const (
	connectAttempts = 15
	connectDelay    = 2 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(zap.String("service", cfg.App.Name))
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := run(cfg, log); err != nil {
		zapLog.Fatal("worker manager failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs, err := observability.New(cfg.App.Name, cfg.Observability.JaegerEndpoint)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	reg, err := registry.LoadOrDefault(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("load activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("activity registry: %w", err)
	}

	// --- Datastores ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := database.WaitForConnection(ctx, "postgres", pg, connectAttempts, connectDelay, log); err != nil {
		return err
	}

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := database.WaitForConnection(ctx, "redis", rdb, connectAttempts, connectDelay, log); err != nil {
		return err
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}
	if err := database.WaitForConnection(ctx, "elasticsearch", es, connectAttempts, connectDelay, log); err != nil {
		return err
	}

	classifications := store.NewPostgresStore(pg.DB)
	if err := classifications.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate classifications: %w", err)
	}
	modelRepo := store.NewPostgresModelRepository(pg.DB)
	if err := modelRepo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate model snapshots: %w", err)
	}

	cached := store.NewCachedStore(classifications, rdb.Client,
		time.Duration(cfg.Database.Redis.CacheTTL)*time.Second, log)
	source := store.NewElasticsearchKeywordSource(es.Client,
		cfg.Database.Elasticsearch.RankingsIndex, cfg.Database.Elasticsearch.MaxResults)

	// --- Engine ---
	extractor := features.NewExtractor()
	classifier := intent.NewClassifier(cached, extractor, log)
	if err := restoreModel(ctx, classifier, modelRepo, cfg.Engine.Intent.SkipBootstrap, log); err != nil {
		return err
	}
	engine := clustering.NewEngine(extractor, log)

	notifier, err := buildNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		return err
	}
	defer zeebe.Close()

	group := camunda.NewWorkerGroup(zeebe.GetClient(), log)
	defer group.Close()

	handlers, err := buildHandlers(dependencies{
		config:        cfg,
		logger:        log,
		observability: obs,
		registry:      reg,
		classifier:    classifier,
		store:         cached,
		models:        modelRepo,
		engine:        engine,
		source:        source,
		notifier:      notifier,
	})
	if err != nil {
		return err
	}
	if err := registerHandlers(group, handlers, log); err != nil {
		return err
	}

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Observability.MetricsPort),
		Handler: newHealthMux(map[string]database.Pinger{
			"postgres": pg,
			"redis":    rdb,
			"zeebe":    pingFunc(zeebe.HealthCheck),
		}, promhttp.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Health server shutdown", map[string]interface{}{"error": err.Error()})
	}
	group.Close()

	log.Info("Worker manager stopped gracefully", nil)
	return nil
}

// restoreModel publishes the newest checkpoint. Without one the classifier
// keeps its bootstrap model, or starts untrained when bootstrapping is off.
func restoreModel(ctx context.Context, classifier *intent.Classifier, repo store.ModelRepository, skipBootstrap bool, log logger.Logger) error {
	checkpoint, err := repo.Latest(ctx)
	if err != nil {
		return fmt.Errorf("load model checkpoint: %w", err)
	}
	if checkpoint != nil {
		if err := classifier.LoadSnapshot(checkpoint.Snapshot); err != nil {
			return fmt.Errorf("restore model %s: %w", checkpoint.Version, err)
		}
		log.Info("Restored intent model checkpoint", map[string]interface{}{
			"modelVersion": checkpoint.Version,
			"accuracy":     checkpoint.Accuracy,
			"createdAt":    checkpoint.CreatedAt,
		})
		return nil
	}

	if skipBootstrap {
		classifier.SetModel(nil)
		log.Warn("No model checkpoint and bootstrap disabled; classifying on patterns only", nil)
		return nil
	}
	log.Info("No model checkpoint found; using bootstrap model", map[string]interface{}{
		"modelVersion": classifier.Model().Version(),
	})
	return nil
}

func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (alerts.Notifier, error) {
	n := cfg.Notifications
	if !n.SNS.Enabled && !n.SES.Enabled {
		return nil, nil
	}

	awsCfg, err := aws.LoadConfig(ctx, n.AWSRegion)
	if err != nil {
		return nil, err
	}

	var opts []alerts.Option
	if n.SNS.Enabled {
		opts = append(opts, alerts.WithTopic(aws.NewSNSClient(awsCfg, n.SNS.TopicARN)))
	}
	if n.SES.Enabled {
		opts = append(opts, alerts.WithMail(aws.NewSESClient(awsCfg, n.SES.FromEmail), n.SES.Recipients))
	}
	return alerts.NewDispatcher(models.CannibalizationSeverity(n.MinSeverity), log, opts...), nil
}
