package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const ServiceName = "cart-service"

type exporterFactory func(ctx context.Context, collectorHost string) (trace.SpanExporter, error)

func newOTLPExporter(ctx context.Context, collectorHost string) (trace.SpanExporter, error) {
	return otlptrace.New(
		ctx,
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(fmt.Sprintf("%s:4318", collectorHost)),
			otlptracehttp.WithInsecure(),
		),
	)
}

func initTracing(collectorHost string, newExporter exporterFactory) (*trace.TracerProvider, error) {
	exporter, err := newExporter(context.Background(), collectorHost)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String(ServiceName),
			),
		),
	)

	otel.SetTracerProvider(tracerProvider)

	return tracerProvider, nil
}

// NewTracer returns the service tracer and its shutdown func. When the
// exporter cannot be created the error is returned together with a tracer
// from the global provider, so the caller can log it and keep serving.
func NewTracer(collectorHost string) (oteltrace.Tracer, func(context.Context) error, error) {
	return newTracer(collectorHost, newOTLPExporter)
}

func newTracer(collectorHost string, newExporter exporterFactory) (oteltrace.Tracer, func(context.Context) error, error) {
	tracerProvider, err := initTracing(collectorHost, newExporter)
	if err != nil {
		noop := func(context.Context) error { return nil }
		return otel.GetTracerProvider().Tracer(ServiceName), noop, err
	}

	return tracerProvider.Tracer(ServiceName), tracerProvider.Shutdown, nil
}
