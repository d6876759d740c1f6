// Package httpclient provides HTTP request construction and client setup for lagtap.
//
// The package handles the HTTP side of a run: building requests from
// configuration and creating a client tuned for sustained request volume.
//
// # Request Building
//
// Use [NewRequestBuilder] to create a builder from configuration:
//
//	builder, err := httpclient.NewRequestBuilder(cfg)
//	if err != nil {
//		return err
//	}
//	req, err := builder.Build(ctx)
//
// The builder validates header keys and values once up front and reuses the
// configured body for every request. Bodies come from inline config or a
// file ([BodySource] yields a fresh reader per request so they can be
// replayed).
//
// # HTTP Client
//
// The [NewClient] function creates an HTTP client with connection reuse
// suited to repeated requests against a single host:
//
//	client := httpclient.NewClient(30 * time.Second)
//	resp, err := client.Do(req)
//
// # Errors
//
// Responses with status >= 400 are reported by the caller as [HTTPError]
// values carrying the status code and a snippet of the response body.
package httpclient
