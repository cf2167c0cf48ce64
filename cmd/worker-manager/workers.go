package main

import (
	"fmt"

	"keyword-intelligence/internal/alerts"
	"keyword-intelligence/internal/common/camunda"
	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/observability"
	"keyword-intelligence/internal/engine/clustering"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/store"
	"keyword-intelligence/pkg/registry"

	ckb "keyword-intelligence/internal/workers/keywords/classify-keyword-batch"
	cki "keyword-intelligence/internal/workers/keywords/classify-keyword-intent"
	clk "keyword-intelligence/internal/workers/keywords/cluster-keywords"
	dcn "keyword-intelligence/internal/workers/keywords/detect-cannibalization"
	eim "keyword-intelligence/internal/workers/keywords/evaluate-intent-model"
	ric "keyword-intelligence/internal/workers/keywords/review-intent-classifications"
	tim "keyword-intelligence/internal/workers/keywords/train-intent-model"
	vic "keyword-intelligence/internal/workers/keywords/verify-intent-classification"
)

type keywordWorker interface {
	camunda.JobHandler
	WorkerOptions() camunda.WorkerOptions
	IsEnabled() bool
}

type dependencies struct {
	config        *config.Config
	logger        logger.Logger
	observability *observability.Observability
	registry      *registry.ActivityRegistry
	classifier    *intent.Classifier
	store         intent.Store
	models        store.ModelRepository
	engine        *clustering.Engine
	source        store.KeywordSource
	notifier      alerts.Notifier
}

func buildHandlers(d dependencies) ([]keywordWorker, error) {
	var handlers []keywordWorker
	add := func(h keywordWorker, err error) error {
		if err != nil {
			return err
		}
		handlers = append(handlers, h)
		return nil
	}

	builders := []func() error{
		func() error {
			return add(cki.NewHandler(cki.HandlerOptions{
				AppConfig: d.config, Classifier: d.classifier,
				Logger: d.logger, Observability: d.observability, Registry: d.registry,
			}))
		},
		func() error {
			return add(ckb.NewHandler(ckb.HandlerOptions{
				AppConfig: d.config, Classifier: d.classifier,
				Logger: d.logger, Observability: d.observability, Registry: d.registry,
			}))
		},
		func() error {
			return add(tim.NewHandler(tim.HandlerOptions{
				AppConfig: d.config, Classifier: d.classifier, Models: d.models,
				Logger: d.logger, Observability: d.observability, Registry: d.registry,
			}))
		},
		func() error {
			return add(eim.NewHandler(eim.HandlerOptions{
				AppConfig: d.config, Classifier: d.classifier,
				Logger: d.logger, Observability: d.observability, Registry: d.registry,
			}))
		},
		func() error {
			return add(vic.NewHandler(vic.HandlerOptions{
				AppConfig: d.config, Classifier: d.classifier, Store: d.store,
				Logger: d.logger, Observability: d.observability, Registry: d.registry,
			}))
		},
		func() error {
			return add(ric.NewHandler(ric.HandlerOptions{
				AppConfig: d.config, Classifier: d.classifier,
				Logger: d.logger, Observability: d.observability, Registry: d.registry,
			}))
		},
		func() error {
			return add(clk.NewHandler(clk.HandlerOptions{
				AppConfig: d.config, Engine: d.engine, Source: d.source,
				Logger: d.logger, Observability: d.observability, Registry: d.registry,
			}))
		},
		func() error {
			return add(dcn.NewHandler(dcn.HandlerOptions{
				AppConfig: d.config, Engine: d.engine, Source: d.source, Notifier: d.notifier,
				Logger: d.logger, Observability: d.observability, Registry: d.registry,
			}))
		},
	}

	for _, build := range builders {
		if err := build(); err != nil {
			return nil, fmt.Errorf("create handler: %w", err)
		}
	}
	return handlers, nil
}

type workerRegistrar interface {
	Register(opts camunda.WorkerOptions, handler camunda.JobHandler) error
}

func registerHandlers(group workerRegistrar, handlers []keywordWorker, log logger.Logger) error {
	registered := 0
	for _, h := range handlers {
		opts := h.WorkerOptions()
		if !h.IsEnabled() {
			log.Info("Worker disabled", map[string]interface{}{"taskType": opts.TaskType})
			continue
		}
		if err := group.Register(opts, h); err != nil {
			return err
		}
		registered++
	}
	log.Info("Workers registered", map[string]interface{}{
		"registered": registered,
		"total":      len(handlers),
	})
	return nil
}
