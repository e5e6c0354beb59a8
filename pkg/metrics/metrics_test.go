package metrics_test

import (
	"context"
	"testing"
	"time"
	"validator/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func TestInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	inst, err := metrics.New(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	inst.RecordValidation(ctx, metrics.OutcomeValid, 10*time.Millisecond)
	inst.RecordValidation(ctx, metrics.OutcomeInvalid, 20*time.Millisecond)
	inst.RecordValidation(ctx, metrics.OutcomeInvalid, 30*time.Millisecond)

	fetchedAt := time.Date(2024, 12, 27, 10, 0, 0, 0, time.UTC)
	inst.RecordRefresh(ctx, metrics.OutcomeSucceeded, fetchedAt)
	inst.RecordRefresh(ctx, metrics.OutcomeFailed, time.Time{})

	got := collect(t, reader)

	validations, ok := got["validator.validations"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range validations.DataPoints {
		v, _ := dp.Attributes.Value("outcome")
		counts[v.AsString()] = dp.Value
	}
	require.Equal(t, map[string]int64{"valid": 1, "invalid": 2}, counts)

	durations, ok := got["validator.validation.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, durations.DataPoints, 2)
	require.Equal(t, metrics.DefaultBuckets, durations.DataPoints[0].Bounds)

	refreshes, ok := got["validator.schema.refreshes"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, refreshes.DataPoints, 2)

	gauge, ok := got["validator.schema.fetched_at"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	require.Equal(t, fetchedAt.Unix(), gauge.DataPoints[0].Value)
}

func TestPrometheusMeterProvider(t *testing.T) {
	reg := prometheus.NewRegistry()
	provider, err := metrics.NewPrometheusMeterProvider(reg)
	require.NoError(t, err)

	inst, err := metrics.New(provider.Meter("test"))
	require.NoError(t, err)
	inst.RecordValidation(context.Background(), metrics.OutcomeValid, time.Millisecond)
	inst.RecordRefresh(context.Background(), metrics.OutcomeSucceeded, time.Now())

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		require.NotContains(t, f.GetName(), ".")
		names[f.GetName()] = true
	}
	require.True(t, names["validator_validations_total"], "got %v", names)
	require.True(t, names["validator_validation_duration_seconds"], "got %v", names)
	require.True(t, names["validator_schema_refreshes_total"], "got %v", names)
	require.True(t, names["validator_schema_fetched_at_seconds"], "got %v", names)
}
