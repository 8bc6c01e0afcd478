//go:build !otel

package trace

import (
	"context"
	"errors"
	"testing"
)

func TestNoopTracerIsSafe(t *testing.T) {
	tracer, err := NewTracer(Config{Enabled: true})
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}

	ctx, span := tracer.StartSpan(context.Background(), "agent.toolCall", map[string]any{"toolName": "weather"})
	if ctx == nil {
		t.Fatal("context must be passed through")
	}
	span.SetAttributes(map[string]any{"result": "{}"})
	span.SetStatus(false, "boom")
	span.RecordException(errors.New("boom"))
	span.End()

	if err := tracer.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
