package cmd

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/minikern/minikern/cmd"

// telemetry owns the tracer used for per-command spans.
// The zero value is not usable; build one with newTelemetry or newTelemetryWriter.
type telemetry struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

// newTelemetry exports spans to path with the stdout exporter.
// An empty path yields a no-op tracer.
func newTelemetry(path string) (*telemetry, error) {
	if path == "" {
		return &telemetry{
			tracer:   noop.NewTracerProvider().Tracer(tracerName),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	t, err := newTelemetryWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	flush := t.shutdown
	t.shutdown = func(ctx context.Context) error {
		err := flush(ctx)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return t, nil
}

// newTelemetryWriter exports spans synchronously to w.
func newTelemetryWriter(w io.Writer) (*telemetry, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "minikern"),
		),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	return &telemetry{tracer: tp.Tracer(tracerName), shutdown: tp.Shutdown}, nil
}

// startCommand opens a span named after the shell command.
func (t *telemetry) startCommand(ctx context.Context, name, line string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "shell."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("minikern.command", line)),
	)
}

// endCommand records the outcome of a command and closes its span.
func endCommand(span trace.Span, tick, clock int, err error) {
	span.SetAttributes(
		attribute.Int("minikern.tick", tick),
		attribute.Int("minikern.access_clock", clock),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
