package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestObservability_ExportsJobMetrics(t *testing.T) {
	reg := promclient.NewRegistry()
	o, err := NewWithRegisterer("keyword-intelligence-test", "", reg)
	require.NoError(t, err)
	defer o.Shutdown(context.Background())

	ctx, span := o.StartSpan(context.Background(), "cluster-keywords", attribute.String("projectId", "p1"))
	o.RecordJobProcessed(ctx, "cluster-keywords", "completed")
	o.RecordJobDuration(ctx, "cluster-keywords", 120*time.Millisecond, "completed")
	o.RecordKeywordsProcessed(ctx, "cluster-keywords", 40)
	span.End()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "jobs_processed_total", strings.Join(names, ","))
	assert.Contains(t, names, "jobs_duration_milliseconds", strings.Join(names, ","))
	assert.Contains(t, names, "keywords_processed_total", strings.Join(names, ","))
}

func TestObservability_NilReceiverIsSafe(t *testing.T) {
	var o *Observability
	ctx, span := o.StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.False(t, span.IsRecording())

	o.RecordJobProcessed(ctx, "x", "completed")
	o.RecordJobDuration(ctx, "x", time.Second, "completed")
	o.RecordKeywordsProcessed(ctx, "x", 3)
	assert.NoError(t, o.Shutdown(ctx))
}
