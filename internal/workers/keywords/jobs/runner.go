// Package jobs holds the job lifecycle shared by the keyword workers:
// variable parsing and schema validation, timeouts, tracing, metrics, and
// completion or failure reporting back to Zeebe.
package jobs

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/metrics"
	"keyword-intelligence/internal/common/observability"
	"keyword-intelligence/internal/common/validation"
	"keyword-intelligence/pkg/registry"
)

// ExecuteFunc runs the worker's operation on validated variables and returns
// the variables to complete the job with.
type ExecuteFunc func(ctx context.Context, variables map[string]interface{}) (map[string]interface{}, error)

type Runner struct {
	TaskType      string
	Timeout       time.Duration
	Logger        logger.Logger
	Observability *observability.Observability
	Registry      *registry.ActivityRegistry

	errorHandler *errors.ErrorHandler
}

func NewRunner(taskType string, timeout time.Duration, log logger.Logger, obs *observability.Observability, reg *registry.ActivityRegistry) *Runner {
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	if reg == nil {
		reg = registry.Default()
	}
	return &Runner{
		TaskType:      taskType,
		Timeout:       timeout,
		Logger:        log,
		Observability: obs,
		Registry:      reg,
		errorHandler:  errors.NewErrorHandler(log),
	}
}

// Run drives one job through parse, execute and complete. Failures are
// reported through the BPMN error handler.
func (r *Runner) Run(client worker.JobClient, job entities.Job, execute ExecuteFunc) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	ctx, span := r.Observability.StartSpan(ctx, r.TaskType,
		attribute.Int64("job.key", job.GetKey()),
		attribute.Int64("process.instance.key", job.GetProcessInstanceKey()),
	)
	defer span.End()

	log := r.Logger.WithFields(map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             r.TaskType,
	})
	log.Info("Processing job", nil)

	variables, err := r.ParseVariables(job.GetVariables())
	if err == nil {
		var output map[string]interface{}
		output, err = execute(ctx, variables)
		if err == nil {
			err = r.complete(ctx, client, job, output)
		}
	}

	status := "completed"
	if err != nil {
		status = "failed"
		stdErr := errors.AsStandardError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		metrics.WorkerJobsFailed.WithLabelValues(r.TaskType, string(stdErr.Code)).Inc()
		r.errorHandler.HandleJobError(ctx, client, job, stdErr)
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(r.TaskType).Inc()
		log.Info("Job completed", map[string]interface{}{"durationMs": time.Since(start).Milliseconds()})
	}

	metrics.WorkerJobDuration.WithLabelValues(r.TaskType).Observe(time.Since(start).Seconds())
	r.Observability.RecordJobProcessed(ctx, r.TaskType, status)
	r.Observability.RecordJobDuration(ctx, r.TaskType, time.Since(start), status)
}

// ParseVariables decodes the raw job variables and validates them against
// the task's input schema.
func (r *Runner) ParseVariables(raw string) (map[string]interface{}, error) {
	variables := make(map[string]interface{})
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &variables); err != nil {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("job variables are not a JSON object: %v", err))
		}
	}

	result := validation.ValidateInput(variables, r.Registry.InputSchema(r.TaskType))
	if !result.Valid {
		return nil, errors.NewSchemaValidationFailedError(fmt.Sprintf("%v", result.GetErrorMessages())).
			WithMetadata("validationErrors", result.GetErrorMessages())
	}
	return variables, nil
}

func (r *Runner) complete(ctx context.Context, client worker.JobClient, job entities.Job, output map[string]interface{}) error {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(output)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("build complete command: %w", err))
	}
	if _, err := request.Send(ctx); err != nil {
		// The job stays activated and Zeebe re-offers it after the timeout.
		r.Logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"worker": r.TaskType,
			"error":  err.Error(),
		})
	}
	return nil
}

// Decode converts validated variables into a typed input.
func Decode(variables map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(variables)
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("decode job variables: %v", err))
	}
	return nil
}

// Encode flattens a typed output into job variables.
func Encode(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	out := make(map[string]interface{})
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return out, nil
}

// StoreError wraps an untyped store failure. Errors that already carry a code
// pass through so NotFound and InvalidInput keep their BPMN mapping.
func StoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return errors.NewStoreOperationFailedError(operation, err)
}

// KeywordSourceError wraps an untyped keyword source failure for scope.
func KeywordSourceError(scope string, err error) error {
	if err == nil {
		return nil
	}
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return errors.NewKeywordSourceFailedError(scope, err)
}
