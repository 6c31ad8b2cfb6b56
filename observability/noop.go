package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// noopProvider is used when tracing is disabled.
type noopProvider struct {
	tracerProvider trace.TracerProvider
}

func newNoopProvider() *noopProvider {
	return &noopProvider{tracerProvider: noop.NewTracerProvider()}
}

// TracerProvider returns a no-op tracer provider.
func (n *noopProvider) TracerProvider() trace.TracerProvider {
	return n.tracerProvider
}

// Shutdown is a no-op.
func (n *noopProvider) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush is a no-op.
func (n *noopProvider) ForceFlush(_ context.Context) error {
	return nil
}
