package verifyintentclassification

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"keyword-intelligence/internal/common/camunda"
	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/observability"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/workers/keywords/jobs"
	"keyword-intelligence/pkg/registry"
)

const TaskType = registry.TaskVerifyIntentClassification

type Handler struct {
	config     *Config
	logger     logger.Logger
	classifier *intent.Classifier
	store      intent.Store
	runner     *jobs.Runner
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Classifier    *intent.Classifier
	Store         intent.Store
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
	if opts.Store == nil {
		return nil, fmt.Errorf("%s requires a classification store", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:     workerConfig,
		logger:     log,
		classifier: opts.Classifier,
		store:      opts.Store,
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

// Execute applies a human correction. The previous intent is read first so
// the output can report whether the label changed.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	record, err := h.store.GetByID(ctx, input.ClassificationID)
	if err != nil {
		return nil, jobs.StoreError("get classification", err)
	}
	if record == nil {
		return nil, errors.NewNotFoundError(input.ClassificationID)
	}

	updated, err := h.classifier.VerifyClassification(ctx, input.ClassificationID, input.CorrectIntent, input.VerifiedBy)
	if err != nil {
		return nil, jobs.StoreError("verify classification", err)
	}

	return &Output{
		ClassificationID: updated.ID,
		Keyword:          updated.Keyword,
		PreviousIntent:   record.Intent,
		Intent:           updated.Intent,
		Changed:          record.Intent != updated.Intent,
		Classification:   updated,
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
