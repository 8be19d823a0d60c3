package telemetry

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/julianstephens/crewplan/internal/constants"
)

const tracerName = "crewplan"

var (
	tracerMu   sync.Mutex
	shutdownFn func(context.Context) error
)

// TracingConfig selects the span exporter.
type TracingConfig struct {
	// Exporter is "none" (default) or "stdout"
	Exporter string
	// Writer receives stdout spans; os.Stdout when nil
	Writer io.Writer
}

// InitTracing installs the global TracerProvider and returns its shutdown func.
func InitTracing(cfg TracingConfig) (func(context.Context) error, error) {
	tracerMu.Lock()
	defer tracerMu.Unlock()

	switch strings.ToLower(strings.TrimSpace(cfg.Exporter)) {
	case "", "none":
		otel.SetTracerProvider(noop.NewTracerProvider())
		shutdownFn = func(context.Context) error { return nil }
		return shutdownFn, nil
	case "stdout":
	default:
		return nil, fmt.Errorf("unknown trace exporter %q (expected none|stdout)", cfg.Exporter)
	}

	opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	if cfg.Writer != nil {
		opts = append(opts, stdouttrace.WithWriter(cfg.Writer))
	}
	exp, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, err
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(constants.AppName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	shutdownFn = tp.Shutdown
	return shutdownFn, nil
}

// StartSpan starts a span on the global crewplan tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
