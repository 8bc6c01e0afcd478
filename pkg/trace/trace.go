// Package trace wraps distributed tracing for the tool-call step behind a
// small interface. The OTLP-backed implementation is compiled in with the
// 'otel' build tag; the default build carries a noop tracer so the step
// never has to nil-check telemetry.
package trace

import "context"

// Config configures tracing. Disabled config always yields a noop tracer.
type Config struct {
	// Enabled activates span export.
	Enabled bool `json:"enabled"`

	// ServiceName identifies this service in traces. Defaults to "toolstep".
	ServiceName string `json:"serviceName,omitempty"`

	// Endpoint is the OTLP endpoint URL (e.g. "http://localhost:4318").
	Endpoint string `json:"endpoint,omitempty"`

	// Headers are additional HTTP headers sent with OTLP requests.
	Headers map[string]string `json:"headers,omitempty"`

	// SampleRate controls the sampling ratio (0.0-1.0). Defaults to 1.0.
	SampleRate float64 `json:"sampleRate,omitempty"`

	// Insecure allows non-TLS connections to the endpoint.
	Insecure bool `json:"insecure,omitempty"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{ServiceName: "toolstep", SampleRate: 1.0}
}

// Tracer starts spans around step operations.
type Tracer interface {
	// StartSpan opens a span with initial attributes. The returned context
	// carries the span so callees can attach child spans to the same trace.
	StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, Span)

	// Shutdown flushes pending spans.
	Shutdown() error
}

// Span is a single traced operation.
type Span interface {
	// SetAttributes adds attributes to the span.
	SetAttributes(attrs map[string]any)

	// SetStatus marks the span outcome. An empty description with ok=true is
	// the normal completion path.
	SetStatus(ok bool, description string)

	// RecordException attaches an error event to the span.
	RecordException(err error)

	// End completes the span.
	End()
}
