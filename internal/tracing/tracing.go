package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const InstrumentationName = "github.com/daveio/golinks"

type Options struct {
	Enabled     bool
	Service     string
	Version     string
	Environment string
	// Writer receives exported spans as JSON lines.
	Writer io.Writer
}

// Shutdown flushes and stops the provider.
type Shutdown func(context.Context) error

// NewResource describes this process for exported spans.
func NewResource(o Options) *resource.Resource {
	r, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(o.Service),
			semconv.ServiceVersion(o.Version),
			attribute.String("environment", o.Environment),
		),
	)
	return r
}

// Setup installs a global tracer provider exporting to o.Writer. When
// tracing is disabled the returned tracer is a no-op.
func Setup(o Options) (trace.Tracer, Shutdown, error) {
	if !o.Enabled {
		return trace.NewNoopTracerProvider().Tracer(InstrumentationName), func(context.Context) error { return nil }, nil
	}

	w := o.Writer
	if w == nil {
		w = os.Stdout
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, nil, err
	}

	tp := sdk.NewTracerProvider(
		sdk.WithBatcher(exporter),
		sdk.WithResource(NewResource(o)),
	)
	otel.SetTracerProvider(tp)

	return tp.Tracer(InstrumentationName), tp.Shutdown, nil
}
