// Package record defines the value type carried from the timing tap to sinks.
package record

import "time"

// Record is the immutable outcome of one handled request. The tap builds one
// Record per invocation and passes it to sinks by value, so a Record never
// changes after construction.
type Record struct {
	Timestamp time.Time     // completion time of the request
	Duration  time.Duration // elapsed handler time
	Method    string        // request method, empty when the exchange never exposed one
	Status    int           // response status, zero when none was recorded
}

// Ticks returns the duration as a count of 100-nanosecond ticks, the unit
// used by the capture file's duration column.
func (r Record) Ticks() int64 {
	return r.Duration.Nanoseconds() / 100
}

// DurationMs returns the elapsed handler time in milliseconds.
func (r Record) DurationMs() float64 {
	return float64(r.Duration) / float64(time.Millisecond)
}

// Failed reports whether the outcome counts as a failure: an error status, or
// a status that was never recorded because the handler returned early.
func (r Record) Failed() bool {
	return r.Status == 0 || r.Status >= 400
}
