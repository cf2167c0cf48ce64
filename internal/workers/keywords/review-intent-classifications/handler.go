package reviewintentclassifications

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"

	"keyword-intelligence/internal/common/camunda"
	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/observability"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/internal/workers/keywords/jobs"
	"keyword-intelligence/pkg/registry"
)

const TaskType = registry.TaskReviewIntentClassifications

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

// Execute runs the review queries for a project concurrently. The intent
// listing only runs when the job names an intent.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = h.config.ReviewLimit
	}

	out := &Output{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dist, err := h.classifier.GetIntentDistribution(gCtx, input.ProjectID)
		if err != nil {
			return jobs.StoreError("intent distribution", err)
		}
		out.Distribution = dist
		return nil
	})

	g.Go(func() error {
		low, err := h.classifier.GetLowConfidenceClassifications(gCtx, input.ProjectID, limit)
		if err != nil {
			return jobs.StoreError("low confidence classifications", err)
		}
		out.LowConfidence = low
		return nil
	})

	if input.Intent != "" {
		g.Go(func() error {
			records, err := h.classifier.GetByIntent(gCtx, input.ProjectID, input.Intent)
			if err != nil {
				return jobs.StoreError("classifications by intent", err)
			}
			out.ByIntent = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.LowConfidence == nil {
		out.LowConfidence = []*models.IntentClassification{}
	}
	out.LowConfidenceCount = len(out.LowConfidence)
	out.NeedsReview = out.LowConfidenceCount > 0

	h.logger.Info("Classifications reviewed", map[string]interface{}{
		"projectId":     input.ProjectID,
		"total":         out.Distribution.Total,
		"lowConfidence": out.LowConfidenceCount,
		"intent":        input.Intent,
	})
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
