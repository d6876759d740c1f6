package tap

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lagtap/lagtap/internal/tracing"
)

// tracingHandler wraps a Handler with one client span per invocation.
type tracingHandler struct {
	inner  Handler
	tracer trace.Tracer
}

// WithTracing wraps a handler so each invocation runs inside a client span
// carrying the exchange's method and status. A nil tracer returns the handler
// unchanged.
func WithTracing(inner Handler, tracer trace.Tracer) Handler {
	if tracer == nil {
		return inner
	}
	return &tracingHandler{inner: inner, tracer: tracer}
}

func (h *tracingHandler) Handle(ctx context.Context) error {
	var method string
	if ex := FromContext(ctx); ex != nil {
		method = ex.Method
	}
	ctx, span := tracing.StartRequestSpan(ctx, h.tracer, method)

	err := h.inner.Handle(ctx)

	// The handler usually fills in the exchange during the call, so refresh
	// the span from it before ending.
	var attrs []attribute.KeyValue
	if ex := FromContext(ctx); ex != nil {
		if ex.Method != "" {
			span.SetName(ex.Method + " request")
			attrs = append(attrs, attribute.String("http.request.method", ex.Method))
		}
		if ex.Status != 0 {
			attrs = append(attrs, attribute.Int("http.response.status_code", ex.Status))
		}
	}
	tracing.EndSpan(span, err, attrs...)
	return err
}
