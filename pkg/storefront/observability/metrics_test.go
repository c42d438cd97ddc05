package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a manual-reader meter provider for the test.
func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down meter provider: %v", err)
		}
	})
	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumFor(t *testing.T, rm *metricdata.ResourceMetrics, name, event string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, "metric %s not found", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64] for %s", name)

	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value("event"); ok && v.AsString() == event {
			total += dp.Value
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	setupMetricsTest(t)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "expected real metrics recorder")
}

func TestRecordEmission(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordEmission(ctx, "basket:changed", 2, 3*time.Millisecond, nil)
	m.RecordEmission(ctx, "basket:changed", 1, time.Millisecond, errors.New("listener failed"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumFor(t, rm, "storefront.events.emitted", "basket:changed"))
	assert.Equal(t, int64(1), sumFor(t, rm, "storefront.events.failed", "basket:changed"))

	latency := findMetric(rm, "storefront.events.dispatch_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.NotEmpty(t, hist.DataPoints)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)

	fanout := findMetric(rm, "storefront.events.fanout")
	require.NotNil(t, fanout)
	fhist, ok := fanout.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.NotEmpty(t, fhist.DataPoints)
	assert.Equal(t, int64(3), fhist.DataPoints[0].Sum)
}

func TestRecordListener(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordListener(ctx, "card:select", time.Millisecond, nil)
	m.RecordListener(ctx, "card:select", time.Millisecond, nil)
	m.RecordListener(ctx, "card:select", time.Millisecond, errors.New("bad"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(3), sumFor(t, rm, "storefront.listener.invocations", "card:select"))
	assert.Equal(t, int64(1), sumFor(t, rm, "storefront.listener.errors", "card:select"))
}

func TestRecordSubscriptions(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordSubscriptions(ctx, "exact", 1)
	m.RecordSubscriptions(ctx, "exact", 1)
	m.RecordSubscriptions(ctx, "exact", -1)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "storefront.subscriptions.active")
	require.NotNil(t, metric)
	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	assert.False(t, sum.IsMonotonic)
}
