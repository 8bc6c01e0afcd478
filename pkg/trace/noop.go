//go:build !otel

package trace

import "context"

// NewTracer creates a tracer. Without the otel build tag this is always a
// noop implementation, regardless of configuration.
func NewTracer(_ Config) (Tracer, error) {
	return noopTracer{}, nil
}

type noopTracer struct{}

func (noopTracer) StartSpan(ctx context.Context, _ string, _ map[string]any) (context.Context, Span) {
	return ctx, noopSpan{}
}
func (noopTracer) Shutdown() error { return nil }

type noopSpan struct{}

func (noopSpan) SetAttributes(map[string]any) {}
func (noopSpan) SetStatus(bool, string)       {}
func (noopSpan) RecordException(error)        {}
func (noopSpan) End()                         {}
