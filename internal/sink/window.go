package sink

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lagtap/lagtap/internal/record"
	"github.com/lagtap/lagtap/internal/stats"
)

// Defaults for a zero WindowConfig.
const (
	DefaultEmitEvery = 100
	DefaultCapacity  = 10_000
)

// WindowConfig configures a WindowSink. Zero values select the defaults.
type WindowConfig struct {
	// Logger receives the per-request and aggregate lines. Defaults to the
	// logrus standard logger.
	Logger Logger
	// Level is the level of the per-request and aggregate lines. The zero
	// value selects Info.
	Level logrus.Level
	// EmitEvery is the number of handled records between aggregate lines.
	EmitEvery int
	// Capacity bounds how many records the window retains.
	Capacity int
}

func (c *WindowConfig) normalize() {
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Level == 0 {
		c.Level = logrus.InfoLevel
	}
	if c.EmitEvery <= 0 {
		c.EmitEvery = DefaultEmitEvery
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
}

// WindowSink logs one line per request and keeps the most recent records in a
// fixed-capacity window. Every EmitEvery handled records it logs an aggregate
// computed over the window's current contents. Safe for concurrent use.
type WindowSink struct {
	logger    Logger
	level     logrus.Level
	emitEvery int

	mu    sync.Mutex
	buf   []record.Record // ring storage, len is the window capacity
	head  int             // index of the oldest record
	count int             // records currently in the window
	seen  int             // records handled since the last aggregate
}

// NewWindow creates a WindowSink. Out-of-range config values fall back to the
// defaults.
func NewWindow(cfg WindowConfig) *WindowSink {
	cfg.normalize()
	return &WindowSink{
		logger:    cfg.Logger,
		level:     cfg.Level,
		emitEvery: cfg.EmitEvery,
		buf:       make([]record.Record, cfg.Capacity),
	}
}

// Handle logs the record and adds it to the window, evicting the oldest
// record when the window is full. It never returns an error.
func (w *WindowSink) Handle(rec record.Record) error {
	// The per-request line stays outside the lock, so it may interleave
	// freely with lines from other goroutines.
	w.logger.Logf(w.level, "request method=%s status=%d duration_ms=%.3f",
		rec.Method, rec.Status, rec.DurationMs())

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.count == len(w.buf) {
		// Evict the oldest record to make room.
		w.head = (w.head + 1) % len(w.buf)
		w.count--
	}
	w.buf[(w.head+w.count)%len(w.buf)] = rec
	w.count++

	w.seen++
	if w.seen >= w.emitEvery {
		w.emitLocked()
		w.seen = 0
	}
	return nil
}

// emitLocked logs one aggregate line over the window's current contents.
// Callers must hold w.mu.
func (w *WindowSink) emitLocked() {
	snap, ok := stats.Compute(w.recordsLocked())
	if !ok {
		// Too few records, or all completed in the same instant. The rate is
		// undefined, so note the skip instead of logging garbage.
		w.logger.Logf(logrus.DebugLevel,
			"window aggregate skipped: %d records without a measurable timespan", w.count)
		return
	}
	w.logger.Logf(w.level,
		"window count=%d timespan=%s rps=%.2f avg_ms=%.3f p50_ms=%.3f p99_ms=%.3f failures=%d",
		snap.Count, snap.Timespan, snap.RequestsPerSec,
		snap.AvgDurationMs, snap.P50DurationMs, snap.P99DurationMs, snap.Failures)
}

// recordsLocked returns the window contents ordered oldest to newest.
// Callers must hold w.mu.
func (w *WindowSink) recordsLocked() []record.Record {
	recs := make([]record.Record, w.count)
	for i := 0; i < w.count; i++ {
		recs[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return recs
}

// Len returns the number of records currently in the window.
func (w *WindowSink) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Records returns a copy of the window contents ordered oldest to newest.
func (w *WindowSink) Records() []record.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.recordsLocked()
}

// Snapshot computes an aggregate over the window's current contents. The
// boolean is false when the window is degenerate, see stats.Compute.
func (w *WindowSink) Snapshot() (stats.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return stats.Compute(w.recordsLocked())
}
