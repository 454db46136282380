// Package tracing provides a thin OpenTelemetry wrapper: a single span
// around each agent call, exportable via OTLP/HTTP when configured and a
// harmless no-op otherwise. StartToolDispatch opens a tool-dispatch span,
// but no dispatch path in this module calls it.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "adventure-gm"

// Config controls whether tracing exports anywhere. An empty Endpoint
// leaves the global tracer provider as the SDK's default no-op, so every
// Start call below remains safe and cheap when tracing is unconfigured.
type Config struct {
	Endpoint    string // OTLP/HTTP collector endpoint, e.g. "localhost:4318"
	ServiceName string
	Insecure    bool
}

// Shutdown flushes and releases tracer provider resources; it is a no-op
// when tracing was never configured.
type Shutdown func(context.Context) error

// Init wires the global tracer provider per cfg. When cfg.Endpoint is
// empty it returns a no-op Shutdown and leaves the global provider alone.
func Init(ctx context.Context, cfg Config) (Shutdown, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = tracerName
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartAgentCall opens a span around one agent request/stream.
func StartAgentCall(ctx context.Context, adventureID string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "agent.call", trace.WithAttributes(
		attribute.String("adventure.id", adventureID),
	))
}

// StartToolDispatch opens a span around one tool invocation.
func StartToolDispatch(ctx context.Context, toolName string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "tool.dispatch", trace.WithAttributes(
		attribute.String("tool.name", toolName),
	))
}

// RecordDuration is a convenience for spans measured outside the
// start/defer-end pattern: it records the time since start as duration_ms.
func RecordDuration(span trace.Span, start time.Time) {
	span.SetAttributes(attribute.Int64("duration_ms", time.Since(start).Milliseconds()))
}
