package sink_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/lagtap/lagtap/internal/record"
	"github.com/lagtap/lagtap/internal/sink"
)

// recordingSink remembers every record and optionally fails.
type recordingSink struct {
	mu   sync.Mutex
	recs []record.Record
	err  error
}

func (s *recordingSink) Handle(rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return s.err
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

func TestMultiForwardsToAll(t *testing.T) {
	failure := errors.New("disk full")
	a := &recordingSink{}
	b := &recordingSink{err: failure}
	c := &recordingSink{}

	m := sink.Multi(a, b, c)
	err := m.Handle(record.Record{Method: "GET", Status: 200})

	if !errors.Is(err, failure) {
		t.Errorf("Handle() = %v, want the failing sink's error", err)
	}
	for i, s := range []*recordingSink{a, b, c} {
		if s.len() != 1 {
			t.Errorf("sink %d received %d records, want 1", i, s.len())
		}
	}
}

func TestMultiSingleSinkUnwrapped(t *testing.T) {
	s := &recordingSink{}
	if got := sink.Multi(s); got != sink.Sink(s) {
		t.Error("Multi() with one sink should return it unchanged")
	}
}

// plainCounter is deliberately not safe for concurrent use.
type plainCounter struct {
	n int
}

func (c *plainCounter) Handle(record.Record) error {
	c.n++
	return nil
}

func TestSerializedAllowsSharing(t *testing.T) {
	const workers, perWorker = 8, 100

	counter := &plainCounter{}
	s := sink.Serialized(counter)

	var wg sync.WaitGroup
	for g := 0; g < workers; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := s.Handle(record.Record{Status: 200}); err != nil {
					t.Errorf("Handle() error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if counter.n != workers*perWorker {
		t.Errorf("counter = %d, want %d", counter.n, workers*perWorker)
	}
}
