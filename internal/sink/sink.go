package sink

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lagtap/lagtap/internal/record"
)

// Sink consumes the stream of request records produced by the timing tap.
// Handle blocks until the record is accepted, so a slow sink adds latency to
// the request that produced the record.
type Sink interface {
	Handle(rec record.Record) error
}

// Logger is the leveled, formatted logging facility sinks write to. Both
// *logrus.Logger and *logrus.Entry satisfy it.
type Logger interface {
	Logf(level logrus.Level, format string, args ...interface{})
}

// multiSink fans each record out to several sinks.
type multiSink struct {
	sinks []Sink
}

// Multi returns a Sink that forwards every record to each given sink in
// order. Every sink receives the record even when an earlier one fails; the
// first error is returned.
func Multi(sinks ...Sink) Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Handle(rec record.Record) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Handle(rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// serializedSink guards a single-writer sink with a mutex.
type serializedSink struct {
	mu    sync.Mutex
	inner Sink
}

// Serialized wraps a sink that is not safe for concurrent use, such as
// FileSink, so it can be shared across goroutines. Records pass through one
// at a time in lock-acquisition order.
func Serialized(inner Sink) Sink {
	return &serializedSink{inner: inner}
}

func (s *serializedSink) Handle(rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Handle(rec)
}
