package http

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gaborage/go-scriptkit/http"

// TracingObserver turns every attempt into an OpenTelemetry client span
type TracingObserver struct {
	tracer trace.Tracer
}

// NewTracingObserver creates a tracing observer. A nil provider uses the global one.
func NewTracingObserver(tp trace.TracerProvider) *TracingObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingObserver{tracer: tp.Tracer(tracerName)}
}

// OnEvent implements Observer. Only EventResponse produces a span; it is
// backdated by the attempt's elapsed time.
func (o *TracingObserver) OnEvent(ctx context.Context, ev Event) {
	if ev.Kind != EventResponse {
		return
	}

	end := time.Now()
	_, span := o.tracer.Start(ctx, fmt.Sprintf("HTTP %s", ev.Method),
		trace.WithTimestamp(end.Add(-ev.Elapsed)),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", ev.Method),
		attribute.String("url.full", ev.URL),
		attribute.String("http.request.id", ev.RequestID),
	}
	if ev.Attempt > 0 {
		attrs = append(attrs, attribute.Int("http.request.resend_count", ev.Attempt))
	}
	if ev.StatusCode != 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", ev.StatusCode))
	}
	span.SetAttributes(attrs...)

	switch {
	case ev.Err != nil:
		if execErr, ok := ev.Err.(ExecutionError); ok {
			span.SetAttributes(attribute.String("error.type", string(execErr.Type())))
		}
		span.RecordError(ev.Err)
		span.SetStatus(codes.Error, ev.Err.Error())
	case IsErrorStatus(ev.StatusCode):
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", ev.StatusCode))
	}

	span.End(trace.WithTimestamp(end))
}
