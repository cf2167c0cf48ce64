package classifykeywordintent

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"keyword-intelligence/internal/common/camunda"
	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/metrics"
	"keyword-intelligence/internal/common/observability"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/workers/keywords/jobs"
	"keyword-intelligence/pkg/registry"
)

const TaskType = registry.TaskClassifyKeywordIntent

type Handler struct {
	config     *Config
	logger     logger.Logger
	classifier *intent.Classifier
	runner     *jobs.Runner
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Classifier    *intent.Classifier
	Logger        logger.Logger
	Observability *observability.Observability
	Registry      *registry.ActivityRegistry
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("%s requires a classifier", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:     workerConfig,
		logger:     log,
		classifier: opts.Classifier,
		runner:     jobs.NewRunner(TaskType, workerConfig.Timeout, log, opts.Observability, opts.Registry),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, h.execute)
}

func (h *Handler) execute(ctx context.Context, variables map[string]interface{}) (map[string]interface{}, error) {
	var input Input
	if err := jobs.Decode(variables, &input); err != nil {
		return nil, err
	}
	output, err := h.Execute(ctx, &input)
	if err != nil {
		return nil, err
	}
	return jobs.Encode(output)
}

// Execute classifies one keyword, reusing the stored result unless the
// caller disabled the cache.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	skipCache := input.UseCache != nil && !*input.UseCache

	record, err := h.classifier.Classify(ctx, input.ProjectID, input.Keyword, intent.ClassifyOptions{
		SearchVolume: input.SearchVolume,
		SERPSignals:  input.SERPSignals,
		SkipCache:    skipCache,
	})
	if err != nil {
		return nil, jobs.StoreError("classify", err)
	}

	metrics.KeywordsClassified.WithLabelValues(string(record.Intent), string(record.ConfidenceLevel)).Inc()
	h.runner.Observability.RecordKeywordsProcessed(ctx, TaskType, 1)

	return &Output{
		ClassificationID: record.ID,
		Intent:           record.Intent,
		Confidence:       record.Confidence,
		ConfidenceLevel:  record.ConfidenceLevel,
		Recommendations:  record.Recommendations,
		Classification:   record,
	}, nil
}

func (h *Handler) WorkerOptions() camunda.WorkerOptions {
	return camunda.WorkerOptions{
		TaskType:      TaskType,
		MaxJobsActive: h.config.MaxJobsActive,
		Timeout:       h.config.Timeout,
		Concurrency:   h.config.Concurrency,
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}
