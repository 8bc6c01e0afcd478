//go:build otel

package trace

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type otelTracer struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
}

// NewTracer creates an OTLP-backed tracer. Requires build tag 'otel'.
func NewTracer(cfg Config) (Tracer, error) {
	if !cfg.Enabled {
		return noopTracerReal{}, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "toolstep"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 1.0
	}

	opts := []otlptracehttp.Option{}
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("trace: create exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("trace: create resource: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(provider)

	return &otelTracer{
		provider: provider,
		tracer:   provider.Tracer("toolstep"),
	}, nil
}

func (t *otelTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name,
		oteltrace.WithAttributes(toAttributes(attrs)...),
	)
	return ctx, &otelSpan{span: span}
}

func (t *otelTracer) Shutdown() error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(context.Background())
}

type otelSpan struct {
	span oteltrace.Span
}

func (s *otelSpan) SetAttributes(attrs map[string]any) {
	s.span.SetAttributes(toAttributes(attrs)...)
}

func (s *otelSpan) SetStatus(ok bool, description string) {
	if ok {
		s.span.SetStatus(codes.Ok, description)
		return
	}
	s.span.SetStatus(codes.Error, description)
}

func (s *otelSpan) RecordException(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
}

func (s *otelSpan) End() {
	s.span.End()
}

func toAttributes(attrs map[string]any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			out = append(out, attribute.String(k, val))
		case bool:
			out = append(out, attribute.Bool(k, val))
		case int:
			out = append(out, attribute.Int(k, val))
		case int64:
			out = append(out, attribute.Int64(k, val))
		case float64:
			out = append(out, attribute.Float64(k, val))
		default:
			data, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out = append(out, attribute.String(k, string(data)))
		}
	}
	return out
}

// noopTracerReal keeps the disabled path allocation-free even in otel builds.
type noopTracerReal struct{}

func (noopTracerReal) StartSpan(ctx context.Context, _ string, _ map[string]any) (context.Context, Span) {
	return ctx, noopSpanReal{}
}
func (noopTracerReal) Shutdown() error { return nil }

type noopSpanReal struct{}

func (noopSpanReal) SetAttributes(map[string]any) {}
func (noopSpanReal) SetStatus(bool, string)       {}
func (noopSpanReal) RecordException(error)        {}
func (noopSpanReal) End()                         {}
