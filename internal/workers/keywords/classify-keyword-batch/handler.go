package classifykeywordbatch

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/sourcegraph/conc/pool"

	"keyword-intelligence/internal/common/camunda"
	"keyword-intelligence/internal/common/config"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/metrics"
	"keyword-intelligence/internal/common/observability"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
	"keyword-intelligence/internal/workers/keywords/jobs"
	"keyword-intelligence/pkg/registry"
)

const TaskType = registry.TaskClassifyKeywordBatch

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

// Execute classifies every item, bypassing the cache. Results keep the input
// order. With a concurrency of one the engine's sequential batch is used.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var (
		results []*models.IntentClassification
		err     error
	)
	if h.config.Concurrency <= 1 || len(input.Keywords) <= 1 {
		results, err = h.classifier.ClassifyBatch(ctx, input.ProjectID, input.Keywords)
	} else {
		results, err = h.classifyParallel(ctx, input.ProjectID, input.Keywords)
	}
	if err != nil {
		return nil, jobs.StoreError("classify batch", err)
	}

	out := &Output{
		Total:           len(results),
		IntentCounts:    make(map[models.Intent]int, len(models.Intents)),
		Classifications: results,
	}
	for _, intentName := range models.Intents {
		out.IntentCounts[intentName] = 0
	}
	for _, r := range results {
		out.IntentCounts[r.Intent]++
		if r.ConfidenceLevel == models.ConfidenceLow {
			out.LowConfidence++
		}
		metrics.KeywordsClassified.WithLabelValues(string(r.Intent), string(r.ConfidenceLevel)).Inc()
	}
	h.runner.Observability.RecordKeywordsProcessed(ctx, TaskType, len(results))

	h.logger.Info("Keyword batch classified", map[string]interface{}{
		"projectId":     input.ProjectID,
		"total":         out.Total,
		"lowConfidence": out.LowConfidence,
		"concurrency":   h.config.Concurrency,
	})
	return out, nil
}

func (h *Handler) classifyParallel(ctx context.Context, scope string, items []intent.BatchItem) ([]*models.IntentClassification, error) {
	results := make([]*models.IntentClassification, len(items))
	p := pool.New().
		WithMaxGoroutines(h.config.Concurrency).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i, item := range items {
		i, item := i, item
		p.Go(func(ctx context.Context) error {
			res, err := h.classifier.Classify(ctx, scope, item.Keyword, intent.ClassifyOptions{
				SearchVolume: item.SearchVolume,
				SERPSignals:  item.SERPSignals,
				SkipCache:    true,
			})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
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
