package main

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lagtap/lagtap/internal/config"
	"github.com/lagtap/lagtap/internal/httpclient"
	"github.com/lagtap/lagtap/internal/tap"
)

// simHandler fakes request latency in-process. Useful for trying the tool or
// exercising the dashboard without a server to aim at.
type simHandler struct {
	latency   time.Duration
	jitter    time.Duration
	failEvery int
	method    string

	mu  sync.Mutex
	rnd *rand.Rand

	count int64
}

func newSimHandler(cfg *config.Config) *simHandler {
	return &simHandler{
		latency:   cfg.Simulate.Latency,
		jitter:    cfg.Simulate.Jitter,
		failEvery: cfg.Simulate.FailEvery,
		method:    cfg.Method,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *simHandler) Handle(ctx context.Context) error {
	ex := tap.FromContext(ctx)
	if ex != nil {
		ex.Method = h.method
	}

	if delay := h.delay(); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	n := atomic.AddInt64(&h.count, 1)
	if h.failEvery > 0 && n%int64(h.failEvery) == 0 {
		if ex != nil {
			ex.Status = http.StatusInternalServerError
		}
		return &httpclient.HTTPError{
			StatusCode: http.StatusInternalServerError,
			Body:       "injected failure",
		}
	}

	if ex != nil {
		ex.Status = http.StatusOK
	}
	return nil
}

func (h *simHandler) delay() time.Duration {
	delay := h.latency
	if h.jitter > 0 {
		h.mu.Lock()
		delay += time.Duration(h.rnd.Int63n(int64(h.jitter)))
		h.mu.Unlock()
	}
	return delay
}
