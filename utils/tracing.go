package utils

import (
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	TracingNone   = "none"
	TracingStdout = "stdout"
)

// NewSpanExporter builds the exporter named by TRACING_EXPORTER. "none"
// returns nil: spans are still started so trace context reaches the
// backends, they just are not written anywhere.
func NewSpanExporter(kind string, w io.Writer) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(kind) {
	case "", TracingNone:
		return nil, nil
	case TracingStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", kind)
	}
}

// NewTracerProvider installs the process-wide tracer provider and the W3C
// trace-context propagator. Callers own Shutdown.
func NewTracerProvider(serviceName string, exporter sdktrace.SpanExporter, sampleRatio float64) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp
}
