package clusterkeywords

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"keyword-intelligence/internal/common/camunda"
	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/metrics"
	"keyword-intelligence/internal/common/observability"
	"keyword-intelligence/internal/engine/clustering"
	"keyword-intelligence/internal/store"
	"keyword-intelligence/internal/workers/keywords/jobs"
	"keyword-intelligence/pkg/registry"
)

const TaskType = registry.TaskClusterKeywords

type Handler struct {
	config *Config
	logger logger.Logger
	engine *clustering.Engine
	source store.KeywordSource
	runner *jobs.Runner
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Engine       *clustering.Engine
	// Source supplies keywords when the job carries none. Optional.
	Source        store.KeywordSource
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
		config: workerConfig,
		logger: log,
		engine: opts.Engine,
		source: opts.Source,
		runner: jobs.NewRunner(TaskType, workerConfig.Timeout, log, opts.Observability, opts.Registry),
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

// Execute clusters the payload keywords, or the project's tracked keywords
// when the payload has none. Job options override the configured defaults.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	method := h.config.DefaultMethod
	if input.Method != "" {
		method = clustering.Method(input.Method)
	}

	opts := clustering.Options{
		Threshold:           h.config.Threshold,
		MinClusterSize:      h.config.MinClusterSize,
		MaxClusterSize:      h.config.MaxClusterSize,
		MembershipThreshold: h.config.MembershipThreshold,
		NumTopics:           input.NumTopics,
	}
	if input.Threshold > 0 {
		opts.Threshold = input.Threshold
	}
	if input.MinClusterSize > 0 {
		opts.MinClusterSize = input.MinClusterSize
	}
	if input.MaxClusterSize > 0 {
		opts.MaxClusterSize = input.MaxClusterSize
	}

	keywords, source, err := h.keywords(ctx, input, &opts)
	if err != nil {
		return nil, err
	}
	if len(keywords) > h.config.MaxKeywords {
		return nil, errors.NewInvalidInputError(fmt.Sprintf(
			"%d keywords exceeds the limit of %d per job", len(keywords), h.config.MaxKeywords))
	}

	result, err := h.engine.Cluster(keywords, method, opts)
	if err != nil {
		return nil, err
	}

	metrics.ClustersProduced.WithLabelValues(string(method)).Observe(float64(result.Statistics.ClusterCount))
	h.runner.Observability.RecordKeywordsProcessed(ctx, TaskType, result.Statistics.TotalKeywords)

	return &Output{
		Source:         source,
		Clusters:       result.Clusters,
		OrphanKeywords: result.OrphanKeywords,
		Statistics:     result.Statistics,
	}, nil
}

// keywords resolves the keyword set and fills search volumes from the
// source when it provides them.
func (h *Handler) keywords(ctx context.Context, input *Input, opts *clustering.Options) ([]string, string, error) {
	if len(input.Keywords) > 0 {
		return input.Keywords, SourcePayload, nil
	}
	if h.source == nil {
		return nil, "", errors.NewInvalidInputError("no keywords in payload and no keyword source configured")
	}

	tracked, err := h.source.ListKeywords(ctx, input.ProjectID)
	if err != nil {
		return nil, "", jobs.KeywordSourceError(input.ProjectID, err)
	}

	keywords := make([]string, 0, len(tracked))
	volumes := make(map[string]int)
	for _, k := range tracked {
		keywords = append(keywords, k.Text)
		if k.SearchVolume != nil {
			volumes[clustering.NormalizeKeyword(k.Text)] = *k.SearchVolume
		}
	}
	if len(volumes) > 0 {
		opts.SearchVolumes = volumes
	}

	h.logger.Debug("Loaded keywords from source", map[string]interface{}{
		"projectId": input.ProjectID,
		"keywords":  len(keywords),
	})
	return keywords, SourceKeywordSource, nil
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
