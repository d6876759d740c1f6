// Package tap instruments request handlers with timing. The timing decorator
// builds one record per invocation, success or failure, and hands it to a
// sink before the handler's result reaches the caller.
package tap

import (
	"context"
	"time"

	"github.com/lagtap/lagtap/internal/record"
	"github.com/lagtap/lagtap/internal/sink"
)

// Handler executes one request exchange. Implementations return an error for
// failed requests and should respect ctx cancellation.
type Handler interface {
	Handle(ctx context.Context) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context) error

// Handle calls f(ctx).
func (f HandlerFunc) Handle(ctx context.Context) error {
	return f(ctx)
}

// Exchange carries the request method and response status of one in-flight
// exchange. The driver seeds a fresh Exchange into the context before each
// invocation; the handler fills it in as the exchange progresses.
type Exchange struct {
	Method string
	Status int
}

type exchangeKey struct{}

// NewContext returns a context carrying ex.
func NewContext(ctx context.Context, ex *Exchange) context.Context {
	return context.WithValue(ctx, exchangeKey{}, ex)
}

// FromContext returns the Exchange carried by ctx, or nil.
func FromContext(ctx context.Context) *Exchange {
	if ctx == nil {
		return nil
	}
	ex, _ := ctx.Value(exchangeKey{}).(*Exchange)
	return ex
}

// timingHandler wraps a Handler with request timing.
type timingHandler struct {
	inner Handler
	sink  sink.Sink
}

// WithTiming wraps a handler so that every invocation forwards exactly one
// record to s, whether the handler succeeds, fails, or panics. A nil sink
// selects a WindowSink with default settings.
//
// The wrapper blocks until the sink accepts the record, so sink latency is
// added to every request.
func WithTiming(inner Handler, s sink.Sink) Handler {
	if s == nil {
		s = sink.NewWindow(sink.WindowConfig{})
	}
	return &timingHandler{inner: inner, sink: s}
}

func (h *timingHandler) Handle(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		now := time.Now()
		rec := record.Record{Timestamp: now, Duration: now.Sub(start)}
		if ex := FromContext(ctx); ex != nil {
			rec.Method = ex.Method
			rec.Status = ex.Status
		}
		// The handler's error always wins. A sink failure surfaces only on
		// an otherwise successful exchange.
		if sinkErr := h.sink.Handle(rec); err == nil {
			err = sinkErr
		}
	}()
	return h.inner.Handle(ctx)
}
