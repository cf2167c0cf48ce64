package detectcannibalization

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/multierr"

	"keyword-intelligence/internal/alerts"
	"keyword-intelligence/internal/common/camunda"
	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/metrics"
	"keyword-intelligence/internal/common/observability"
	"keyword-intelligence/internal/engine/clustering"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/internal/store"
	"keyword-intelligence/internal/workers/keywords/jobs"
	"keyword-intelligence/pkg/registry"
)

const TaskType = registry.TaskDetectCannibalization

type Handler struct {
	config   *Config
	logger   logger.Logger
	engine   *clustering.Engine
	source   store.KeywordSource
	notifier alerts.Notifier
	runner   *jobs.Runner
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Engine       *clustering.Engine
	// Source supplies rankings when the job carries none. Optional.
	Source store.KeywordSource
	// Notifier delivers alerts for severe reports. Optional.
	Notifier      alerts.Notifier
	Logger        logger.Logger
	Observability *observability.Observability
	Registry      *registry.ActivityRegistry
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("%s requires a clustering engine", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:   workerConfig,
		logger:   log,
		engine:   opts.Engine,
		source:   opts.Source,
		notifier: opts.Notifier,
		runner:   jobs.NewRunner(TaskType, workerConfig.Timeout, log, opts.Observability, opts.Registry),
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

// Execute detects cannibalizing pairs and alerts on the report. The job only
// fails on alert errors when no channel accepted the alert; a partial
// delivery completes with the failures listed so a retry cannot send twice.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	rankings, source, err := h.rankings(ctx, input)
	if err != nil {
		return nil, err
	}

	opts := clustering.CannibalizationOptions{
		SimilarityThreshold: h.config.SimilarityThreshold,
		URLOverlapThreshold: h.config.URLOverlapThreshold,
	}
	if input.SimilarityThreshold > 0 {
		opts.SimilarityThreshold = input.SimilarityThreshold
	}
	if input.URLOverlapThreshold > 0 {
		opts.URLOverlapThreshold = input.URLOverlapThreshold
	}

	report, err := h.engine.DetectCannibalization(rankings, opts)
	if err != nil {
		return nil, err
	}

	metrics.CannibalizationPairs.WithLabelValues(string(report.Severity)).Add(float64(report.PairCount))
	h.runner.Observability.RecordKeywordsProcessed(ctx, TaskType, len(rankings))

	out := &Output{
		Source:        source,
		Groups:        report.Groups,
		PairCount:     report.PairCount,
		Severity:      report.Severity,
		AlertChannels: []string{},
	}

	notify := input.Notify == nil || *input.Notify
	if !notify || h.notifier == nil {
		return out, nil
	}

	delivery, err := h.notifier.Notify(ctx, input.ProjectID, report)
	if delivery != nil {
		out.AlertSent = delivery.Sent
		out.AlertChannels = delivery.Channels
	}
	if err != nil {
		errs := multierr.Errors(err)
		if !out.AlertSent {
			return nil, errors.AsStandardError(errs[0]).
				WithMetadata("projectId", input.ProjectID).
				WithMetadata("severity", string(report.Severity))
		}
		for _, e := range errs {
			out.AlertErrors = append(out.AlertErrors, e.Error())
		}
		h.logger.Warn("Cannibalization alert partially delivered", map[string]interface{}{
			"projectId": input.ProjectID,
			"channels":  out.AlertChannels,
			"failures":  len(errs),
		})
	}
	return out, nil
}

func (h *Handler) rankings(ctx context.Context, input *Input) ([]models.KeywordRanking, string, error) {
	if len(input.Rankings) > 0 {
		return input.Rankings, SourcePayload, nil
	}
	if h.source == nil {
		return nil, "", errors.NewInvalidInputError("no rankings in payload and no keyword source configured")
	}

	rankings, err := h.source.ListRankings(ctx, input.ProjectID)
	if err != nil {
		return nil, "", jobs.KeywordSourceError(input.ProjectID, err)
	}
	return rankings, SourceKeywordSource, nil
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
