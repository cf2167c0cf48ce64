package jobs

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/pkg/registry"
)

func newTestRunner(t *testing.T, taskType string) *Runner {
	return NewRunner(taskType, 5*time.Second, logger.NewTestLogger(t), nil, registry.Default())
}

// ==========================
// Variable Parsing Tests
// ==========================

func TestRunner_ParseVariables(t *testing.T) {
	r := newTestRunner(t, registry.TaskClassifyKeywordIntent)

	tests := []struct {
		name     string
		raw      string
		wantCode errors.ErrorCode
	}{
		{name: "valid", raw: `{"projectId":"p1","keyword":"buy shoes"}`},
		{name: "missing keyword", raw: `{"projectId":"p1"}`, wantCode: errors.ErrCodeSchemaValidationFailed},
		{name: "wrong type", raw: `{"projectId":"p1","keyword":42}`, wantCode: errors.ErrCodeSchemaValidationFailed},
		{name: "empty payload", raw: "", wantCode: errors.ErrCodeSchemaValidationFailed},
		{name: "not json", raw: `{"projectId"`, wantCode: errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars, err := r.ParseVariables(tt.raw)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "p1", vars["projectId"])
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.AsStandardError(err).Code)
		})
	}
}

func TestRunner_ParseVariables_UnknownTaskAcceptsAnyObject(t *testing.T) {
	r := newTestRunner(t, "not-registered")
	vars, err := r.ParseVariables(`{"anything":true}`)
	require.NoError(t, err)
	assert.Equal(t, true, vars["anything"])
}

// ==========================
// Encoding Tests
// ==========================

func TestDecodeEncode(t *testing.T) {
	type input struct {
		ProjectID string `json:"projectId"`
		Limit     int    `json:"limit"`
	}
	var in input
	require.NoError(t, Decode(map[string]interface{}{"projectId": "p1", "limit": float64(5)}, &in))
	assert.Equal(t, input{ProjectID: "p1", Limit: 5}, in)

	out, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, "p1", out["projectId"])
	assert.Equal(t, float64(5), out["limit"])

	err = Decode(map[string]interface{}{"limit": "five"}, &in)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
}

func TestStoreError(t *testing.T) {
	assert.NoError(t, StoreError("save", nil))

	wrapped := StoreError("save", stderrors.New("connection reset"))
	assert.Equal(t, errors.ErrCodeStoreOperationFailed, errors.AsStandardError(wrapped).Code)
	assert.True(t, errors.AsStandardError(wrapped).Retryable)

	notFound := errors.NewNotFoundError("abc")
	assert.Same(t, notFound, StoreError("get", notFound))
}
