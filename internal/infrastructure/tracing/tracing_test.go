package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerFallsBackWhenExporterFails(t *testing.T) {
	failing := func(ctx context.Context, collectorHost string) (trace.SpanExporter, error) {
		return nil, errors.New("collector unreachable")
	}

	tracer, shutdown, err := newTracer("collector", failing)
	require.Error(t, err)
	assert.ErrorContains(t, err, "collector unreachable")
	require.NotNil(t, tracer)
	require.NotNil(t, shutdown)

	assert.NotPanics(t, func() {
		_, span := tracer.Start(context.Background(), "[GET] /api/v1/cart")
		span.End()
	})
	assert.NoError(t, shutdown(context.Background()))
}

// keepingExporter keeps recorded spans after the provider shuts it down.
type keepingExporter struct {
	*tracetest.InMemoryExporter
}

func (keepingExporter) Shutdown(context.Context) error { return nil }

func TestNewTracerExportsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	inMemory := func(ctx context.Context, collectorHost string) (trace.SpanExporter, error) {
		return keepingExporter{exporter}, nil
	}

	tracer, shutdown, err := newTracer("collector", inMemory)
	require.NoError(t, err)

	_, span := tracer.Start(context.Background(), "[POST] /api/v1/cart")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "[POST] /api/v1/cart", spans[0].Name)
}
