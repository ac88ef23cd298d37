// internal/common/observability/observability_test.go
package observability

import (
	"context"
	"testing"
	"time"

	"casematch-workers/internal/common/config"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/exporters/prometheus"
)

func TestObservability_RecordsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := New("casematch-test", prometheus.WithRegisterer(reg))
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "rank-case-matches", "completed")
	obs.RecordJobDuration(ctx, "rank-case-matches", 12*time.Millisecond, "completed")
	obs.RecordMatches(ctx, "http", 3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["jobs_processed_total"], "got %v", names)
	assert.True(t, names["casematch_matches_returned_total"], "got %v", names)
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(context.Background(), "x", "failed")
		obs.RecordMatches(context.Background(), "x", 1)
	})
	assert.NoError(t, obs.Shutdown(context.Background()))
}

func TestNewTracing(t *testing.T) {
	tr, err := NewTracing(config.TracingConfig{})
	require.NoError(t, err)
	_, span := tr.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, tr.Shutdown(context.Background()))

	_, err = NewTracing(config.TracingConfig{Enabled: true})
	assert.Error(t, err)

	tr, err = NewTracing(config.TracingConfig{
		Enabled:     true,
		Endpoint:    "http://127.0.0.1:14268/api/traces",
		ServiceName: "casematch-test",
	})
	require.NoError(t, err)
	_, span = tr.Tracer("test").Start(context.Background(), "sampled")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = tr.Shutdown(ctx)
}
