package infrastructure

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// OTelProviders bundles the tracer provider with its shutdown hook.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
}

// InitializeOTel sets up tracing for a pipeline run. Spans go to the
// given writer via the stdout exporter; a batch pipeline has no collector
// to ship to, so the trace is part of the run's log output. Pass nil to
// discard spans.
func InitializeOTel(ctx context.Context, spanOutput io.Writer) (*OTelProviders, error) {
	if spanOutput == nil {
		spanOutput = io.Discard
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(spanOutput),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("bondlab"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &OTelProviders{TracerProvider: tp}, nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	if p == nil || p.TracerProvider == nil {
		return nil
	}
	if err := p.TracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}
