// Package driver provides the request execution engine for lagtap.
//
// The driver orchestrates concurrent handler execution with support for:
//   - Configurable concurrency levels
//   - Rate limiting (requests per second)
//   - Duration-based and count-based termination
//   - Multiple arrival models (uniform, Poisson)
//
// # Basic Usage
//
// Create a driver with options and a handler implementation:
//
//	opts := driver.Options{
//		Concurrency:   10,
//		TotalRequests: 1000,
//		Duration:      time.Minute,
//		RatePerSecond: 100,
//		Handler:       myHandler,
//	}
//	d := driver.New(opts)
//	result := d.Run(ctx)
//
// The driver executes [tap.Handler] values. Wrap a handler with
// [tap.WithTiming] to record per-request measurements into a sink; the
// driver seeds every request context with a fresh [tap.Exchange] so the
// handler can report its method and response status.
//
// # Rate Limiting & Arrival Models
//
// The driver supports different arrival models for request pacing:
//   - [ArrivalModelUniform]: requests at fixed intervals
//   - [ArrivalModelPoisson]: requests following a Poisson distribution for realistic traffic
package driver
