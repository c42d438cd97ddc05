package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("storefront")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func TestStartEmitSpan(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	_, span := sm.StartEmitSpan(context.Background(), "items:changed", "em-1", 0)
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "storefront.emit items:changed", s.Name)
	assert.Equal(t, codes.Ok, s.Status.Code)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "items:changed", attrs["event.name"].AsString())
	assert.Equal(t, "em-1", attrs["emission.id"].AsString())
	assert.Equal(t, int64(0), attrs["emission.depth"].AsInt64())
}

func TestNestedEmitSpans(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, outer := sm.StartEmitSpan(context.Background(), "add:product", "em-1", 0)
	_, inner := sm.StartEmitSpan(ctx, "basket:changed", "em-2", 1)
	sm.EndSpanWithError(inner, nil)
	sm.EndSpanWithError(outer, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	var innerStub, outerStub *tracetest.SpanStub
	for i := range spans {
		switch spans[i].Name {
		case "storefront.emit basket:changed":
			innerStub = &spans[i]
		case "storefront.emit add:product":
			outerStub = &spans[i]
		}
	}
	require.NotNil(t, innerStub)
	require.NotNil(t, outerStub)
	assert.Equal(t, outerStub.SpanContext.SpanID(), innerStub.Parent.SpanID())
}

func TestEndSpanWithError(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	_, span := sm.StartEmitSpan(context.Background(), "contacts:submit", "em-3", 0)
	sm.EndSpanWithError(span, errors.New("listener failed"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "listener failed", spans[0].Status.Description)
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "exception", spans[0].Events[0].Name)

	assert.NotPanics(t, func() { sm.EndSpanWithError(nil, nil) })
}

func TestAddSpanEvent(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, span := sm.StartEmitSpan(context.Background(), "order:submit", "em-4", 0)
	sm.AddSpanEvent(ctx, "listener.removed", attribute.String("listener.id", "l-1"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "listener.removed", spans[0].Events[0].Name)

	assert.NotPanics(t, func() {
		sm.AddSpanEvent(context.Background(), "no span")
	})
}

func TestNoopImplementations(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	var sm SpanManager = NoopSpanManager{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordEmission(ctx, "x", 1, 0, errors.New("e"))
		m.RecordListener(ctx, "x", 0, nil)
		m.RecordSubscriptions(ctx, "exact", 1)

		got, span := sm.StartEmitSpan(ctx, "x", "id", 0)
		assert.Equal(t, ctx, got)
		sm.AddSpanEvent(got, "evt")
		sm.EndSpanWithError(span, errors.New("e"))
	})
}
