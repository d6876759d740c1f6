package main

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/lagtap/lagtap/internal/config"
	"github.com/lagtap/lagtap/internal/httpclient"
	"github.com/lagtap/lagtap/internal/tap"
	"github.com/lagtap/lagtap/internal/tracing"
)

const maxLoggedBodyBytes = 1024

// httpHandler performs one HTTP exchange against the configured target.
type httpHandler struct {
	client    *http.Client
	builder   *httpclient.RequestBuilder
	propagate bool
}

func newHTTPHandler(cfg *config.Config, propagate bool) (*httpHandler, error) {
	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return nil, err
	}
	return &httpHandler{
		client:    httpclient.NewClient(cfg.Timeout),
		builder:   builder,
		propagate: propagate,
	}, nil
}

func (h *httpHandler) Handle(ctx context.Context) error {
	ex := tap.FromContext(ctx)
	if ex != nil {
		ex.Method = h.builder.Method()
	}

	req, err := h.builder.Build(ctx)
	if err != nil {
		return err
	}
	if h.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if ex != nil {
		ex.Status = resp.StatusCode
	}

	if resp.StatusCode >= 400 {
		snippet, readErr := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodyBytes))
		_, _ = io.Copy(io.Discard, resp.Body)
		if readErr != nil {
			return readErr
		}
		return &httpclient.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
