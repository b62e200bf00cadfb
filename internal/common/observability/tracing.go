// internal/common/observability/tracing.go
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracingConfig selects where spans go. An empty endpoint disables export.
type TracingConfig struct {
	ServiceName    string
	Environment    string
	JaegerEndpoint string
	SampleRatio    float64
}

// Tracer wraps the process tracer provider so workers can start spans
// without knowing whether export is enabled.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracer installs a global tracer provider. With no Jaeger endpoint it
// returns a no-op tracer.
func NewTracer(cfg TracingConfig) (*Tracer, error) {
	if cfg.JaegerEndpoint == "" {
		return NewNoopTracer(), nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
	if err != nil {
		return nil, err
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(provider)

	return &Tracer{provider: provider, tracer: provider.Tracer(cfg.ServiceName)}, nil
}

// NewNoopTracer is used by tests and when tracing is switched off.
func NewNoopTracer() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer("noop")}
}

// StartJobSpan opens a span for one job. Callers must End it.
func (t *Tracer) StartJobSpan(ctx context.Context, taskType string, jobKey, processInstanceKey int64) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return NewNoopTracer().StartJobSpan(ctx, taskType, jobKey, processInstanceKey)
	}
	return t.tracer.Start(ctx, taskType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("zeebe.task_type", taskType),
			attribute.Int64("zeebe.job_key", jobKey),
			attribute.Int64("zeebe.process_instance_key", processInstanceKey),
		),
	)
}

func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
