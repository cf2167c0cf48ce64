// Package errors provides the structured error taxonomy shared by the engine,
// the storage adapters and the Zeebe workers, plus its BPMN mapping.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Engine errors
const (
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeModelNotTrained   ErrorCode = "MODEL_NOT_TRAINED"
	ErrCodeNotFound          ErrorCode = "CLASSIFICATION_NOT_FOUND"
	ErrCodeUnsupportedMethod ErrorCode = "UNSUPPORTED_CLUSTER_METHOD"
)

// Boundary and infrastructure errors
const (
	ErrCodeSchemaValidationFailed   ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeStoreOperationFailed     ErrorCode = "STORE_OPERATION_FAILED"
	ErrCodeKeywordSourceFailed      ErrorCode = "KEYWORD_SOURCE_FAILED"
	ErrCodeModelSnapshotFailed      ErrorCode = "MODEL_SNAPSHOT_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCacheConnectionFailed    ErrorCode = "CACHE_CONNECTION_FAILED"
	ErrCodeTimeout                  ErrorCode = "TIMEOUT"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches any StandardError carrying the same code, so callers can test
// against the package sentinels with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata sets a metadata entry and returns the error for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput      = &StandardError{Code: ErrCodeInvalidInput, Message: "invalid input"}
	ErrModelNotTrained   = &StandardError{Code: ErrCodeModelNotTrained, Message: "intent model not trained"}
	ErrNotFound          = &StandardError{Code: ErrCodeNotFound, Message: "classification not found"}
	ErrUnsupportedMethod = &StandardError{Code: ErrCodeUnsupportedMethod, Message: "unsupported clustering method"}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

func NewModelNotTrainedError(details string) *StandardError {
	return newError(ErrCodeModelNotTrained, "Intent model not trained", details, false, nil)
}

func NewNotFoundError(id string) *StandardError {
	return newError(ErrCodeNotFound, "Classification not found", fmt.Sprintf("id: %s", id), false, nil)
}

func NewUnsupportedMethodError(method string, supported []string) *StandardError {
	return newError(ErrCodeUnsupportedMethod, "Unsupported clustering method",
		fmt.Sprintf("method: %q, supported: %v", method, supported), false, nil)
}

func NewSchemaValidationFailedError(details string) *StandardError {
	return newError(ErrCodeSchemaValidationFailed, "Input schema validation failed", details, false, nil)
}

// NewStoreOperationFailedError wraps a store failure at the worker boundary.
// The engine itself returns store errors unchanged.
func NewStoreOperationFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeStoreOperationFailed, "Classification store operation failed",
		fmt.Sprintf("operation: %s, error: %v", operation, err), true, err)
}

func NewKeywordSourceFailedError(scope string, err error) *StandardError {
	return newError(ErrCodeKeywordSourceFailed, "Keyword source lookup failed",
		fmt.Sprintf("projectId: %s, error: %v", scope, err), true, err)
}

func NewModelSnapshotFailedError(err error) *StandardError {
	return newError(ErrCodeModelSnapshotFailed, "Model snapshot operation failed", err.Error(), true, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %v", channel, err), true, err)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewCacheConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeCacheConnectionFailed, "Cache connection error", err.Error(), true, err)
}

func NewTimeoutError(operation string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Operation '%s' timed out", operation), err.Error(), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled in the BPMN processes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeModelNotTrained:          "MODEL_NOT_TRAINED",
	ErrCodeNotFound:                 "CLASSIFICATION_NOT_FOUND",
	ErrCodeUnsupportedMethod:        "UNSUPPORTED_CLUSTER_METHOD",
	ErrCodeSchemaValidationFailed:   "INVALID_INPUT",
	ErrCodeStoreOperationFailed:     "STORE_OPERATION_FAILED",
	ErrCodeKeywordSourceFailed:      "KEYWORD_SOURCE_FAILED",
	ErrCodeModelSnapshotFailed:      "MODEL_SNAPSHOT_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeCacheConnectionFailed:    "CACHE_CONNECTION_FAILED",
	ErrCodeTimeout:                  "TIMEOUT",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreOperationFailed,
		ErrCodeKeywordSourceFailed,
		ErrCodeModelSnapshotFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeCacheConnectionFailed,
		ErrCodeNotificationSendFailed:
		return 3
	case ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a StandardError, wrapping unknown errors as internal.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups error codes for log aggregation.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidInput, ErrCodeSchemaValidationFailed, ErrCodeUnsupportedMethod:
		return "VALIDATION"
	case ErrCodeModelNotTrained, ErrCodeNotFound:
		return "BUSINESS"
	case ErrCodeStoreOperationFailed, ErrCodeDatabaseConnectionFailed, ErrCodeModelSnapshotFailed:
		return "DATABASE"
	case ErrCodeCacheConnectionFailed:
		return "CACHE"
	case ErrCodeKeywordSourceFailed:
		return "SEARCH"
	case ErrCodeNotificationSendFailed:
		return "NOTIFICATION"
	case ErrCodeTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}
