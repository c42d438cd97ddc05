package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records broker metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEmission records one Emit call with the number of listeners it
	// reached and whether it failed.
	RecordEmission(ctx context.Context, eventName string, listeners int, duration time.Duration, err error)

	// RecordListener records a single listener invocation.
	RecordListener(ctx context.Context, eventName string, duration time.Duration, err error)

	// RecordSubscriptions adjusts the active subscription gauge by delta.
	RecordSubscriptions(ctx context.Context, keyKind string, delta int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	emissions      metric.Int64Counter
	emitLatency    metric.Float64Histogram
	emitErrors     metric.Int64Counter
	fanout         metric.Int64Histogram
	invocations    metric.Int64Counter
	listenerErrors metric.Int64Counter
	subscriptions  metric.Int64UpDownCounter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("storefront")

	emissions, err := meter.Int64Counter("storefront.events.emitted",
		metric.WithDescription("Number of emitted events"),
	)
	if err != nil {
		return nil, err
	}

	emitLatency, err := meter.Float64Histogram("storefront.events.dispatch_ms",
		metric.WithDescription("Time spent dispatching an event to all listeners"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	emitErrors, err := meter.Int64Counter("storefront.events.failed",
		metric.WithDescription("Number of emissions that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	fanout, err := meter.Int64Histogram("storefront.events.fanout",
		metric.WithDescription("Number of listeners reached by one emission"),
	)
	if err != nil {
		return nil, err
	}

	invocations, err := meter.Int64Counter("storefront.listener.invocations",
		metric.WithDescription("Number of listener invocations"),
	)
	if err != nil {
		return nil, err
	}

	listenerErrors, err := meter.Int64Counter("storefront.listener.errors",
		metric.WithDescription("Number of listener failures"),
	)
	if err != nil {
		return nil, err
	}

	subscriptions, err := meter.Int64UpDownCounter("storefront.subscriptions.active",
		metric.WithDescription("Number of registered listener subscriptions"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		emissions:      emissions,
		emitLatency:    emitLatency,
		emitErrors:     emitErrors,
		fanout:         fanout,
		invocations:    invocations,
		listenerErrors: listenerErrors,
		subscriptions:  subscriptions,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordEmission records an emission.
func (m *otelMetrics) RecordEmission(ctx context.Context, eventName string, listeners int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("event", eventName))

	m.emissions.Add(ctx, 1, attrs)
	m.emitLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.fanout.Record(ctx, int64(listeners), attrs)
	if err != nil {
		m.emitErrors.Add(ctx, 1, attrs)
	}
}

// RecordListener records a listener invocation.
func (m *otelMetrics) RecordListener(ctx context.Context, eventName string, _ time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("event", eventName))

	m.invocations.Add(ctx, 1, attrs)
	if err != nil {
		m.listenerErrors.Add(ctx, 1, attrs)
	}
}

// RecordSubscriptions adjusts the active subscription count.
func (m *otelMetrics) RecordSubscriptions(ctx context.Context, keyKind string, delta int64) {
	m.subscriptions.Add(ctx, delta, metric.WithAttributes(attribute.String("key_kind", keyKind)))
}
