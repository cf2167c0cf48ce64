package trainintentmodel

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
	"keyword-intelligence/internal/store"
	"keyword-intelligence/internal/workers/keywords/jobs"
	"keyword-intelligence/pkg/registry"
)

const TaskType = registry.TaskTrainIntentModel

type Handler struct {
	config     *Config
	logger     logger.Logger
	classifier *intent.Classifier
	models     store.ModelRepository
	runner     *jobs.Runner
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Classifier   *intent.Classifier
	// Models receives a checkpoint of every trained model. Nil disables
	// checkpointing.
	Models        store.ModelRepository
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
		models:     opts.Models,
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

// Execute trains and publishes a new model, then checkpoints it. A failed
// checkpoint fails the job even though the model is already live, so the
// process can retry the save.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	model, result, err := h.classifier.TrainModel(ctx, input.TrainingData)
	if err != nil {
		return nil, err
	}

	metrics.ModelTrainings.Inc()
	metrics.ModelAccuracy.Set(result.Accuracy)
	h.runner.Observability.RecordKeywordsProcessed(ctx, TaskType, len(input.TrainingData))

	out := &Output{
		ModelVersion:    result.ModelVersion,
		Accuracy:        result.Accuracy,
		TrainSize:       result.TrainSize,
		TestSize:        result.TestSize,
		PerIntent:       result.PerIntent,
		Labels:          result.Labels,
		ConfusionMatrix: result.ConfusionMatrix,
	}

	if h.config.Checkpoint && h.models != nil {
		checkpoint, err := h.models.Save(ctx, model.Snapshot(), result.Accuracy)
		if err != nil {
			return nil, err
		}
		out.CheckpointSaved = true
		h.logger.Info("Model checkpoint saved", map[string]interface{}{
			"modelVersion": checkpoint.Version,
			"accuracy":     checkpoint.Accuracy,
		})
	}
	return out, nil
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
