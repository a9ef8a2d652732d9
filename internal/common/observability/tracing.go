package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer owns the process trace provider.
type Tracer struct {
	provider *sdktrace.TracerProvider
}

// NewJaegerTracer installs a global tracer provider exporting to the Jaeger
// collector endpoint, e.g. http://localhost:14268/api/traces.
func NewJaegerTracer(serviceName, endpoint string) (*Tracer, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			semconv.ServiceName(serviceName),
		)),
	)
	otel.SetTracerProvider(provider)

	return &Tracer{provider: provider}, nil
}

// TracerFor returns a named tracer from the global provider. Without
// NewJaegerTracer this is a no-op tracer.
func TracerFor(name string) trace.Tracer {
	return otel.Tracer(name)
}

func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
