// Package stats computes aggregates over bounded windows of request records.
package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/lagtap/lagtap/internal/record"
)

// Snapshot represents aggregated statistics over one window of records.
type Snapshot struct {
	Count          int           `json:"count"`
	Failures       int           `json:"failures"`
	Timespan       time.Duration `json:"-"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	MinDuration    time.Duration `json:"-"`
	MaxDuration    time.Duration `json:"-"`
	AvgDuration    time.Duration `json:"-"`
	P50Duration    time.Duration `json:"-"`
	P90Duration    time.Duration `json:"-"`
	P99Duration    time.Duration `json:"-"`

	// JSON-friendly fields in seconds and milliseconds.
	TimespanSec   float64     `json:"timespan_sec"`
	MinDurationMs float64     `json:"min_duration_ms"`
	MaxDurationMs float64     `json:"max_duration_ms"`
	AvgDurationMs float64     `json:"avg_duration_ms"`
	P50DurationMs float64     `json:"p50_duration_ms"`
	P90DurationMs float64     `json:"p90_duration_ms"`
	P99DurationMs float64     `json:"p99_duration_ms"`
	StatusCounts  map[int]int `json:"status_counts,omitempty"`

	Oldest time.Time `json:"oldest"`
	Newest time.Time `json:"newest"`
}

// FailureRate returns failures as a fraction of the window count.
func (s Snapshot) FailureRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Count)
}

// Compute derives a Snapshot from the records of one window. The boolean is
// false for a degenerate window: fewer than two records, or a timespan of
// zero, either of which leaves the request rate undefined. A degenerate
// Snapshot carries only the record count.
func Compute(recs []record.Record) (Snapshot, bool) {
	if len(recs) < 2 {
		return Snapshot{Count: len(recs)}, false
	}

	// Track durations from 1µs up to 60s with 3 significant figures.
	hist := hdrhistogram.New(1, 60_000_000, 3)

	oldest := recs[0].Timestamp
	newest := recs[0].Timestamp
	var sumDuration time.Duration
	var minDuration, maxDuration time.Duration
	statusCounts := make(map[int]int)
	failures := 0

	for _, rec := range recs {
		if rec.Timestamp.Before(oldest) {
			oldest = rec.Timestamp
		}
		if rec.Timestamp.After(newest) {
			newest = rec.Timestamp
		}

		if rec.Duration > 0 {
			us := rec.Duration.Microseconds()
			if us < hist.LowestTrackableValue() {
				us = hist.LowestTrackableValue()
			}
			if us > hist.HighestTrackableValue() {
				us = hist.HighestTrackableValue()
			}
			_ = hist.RecordValue(us)
		}
		sumDuration += rec.Duration

		if minDuration == 0 || rec.Duration < minDuration {
			minDuration = rec.Duration
		}
		if rec.Duration > maxDuration {
			maxDuration = rec.Duration
		}

		statusCounts[rec.Status]++
		if rec.Failed() {
			failures++
		}
	}

	timespan := newest.Sub(oldest)
	if timespan <= 0 {
		return Snapshot{Count: len(recs)}, false
	}

	snap := Snapshot{
		Count:        len(recs),
		Failures:     failures,
		Timespan:     timespan,
		MinDuration:  minDuration,
		MaxDuration:  maxDuration,
		AvgDuration:  time.Duration(int64(sumDuration) / int64(len(recs))),
		StatusCounts: statusCounts,
		Oldest:       oldest,
		Newest:       newest,
	}

	if hist.TotalCount() > 0 {
		snap.P50Duration = time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond
		snap.P90Duration = time.Duration(hist.ValueAtQuantile(90)) * time.Microsecond
		snap.P99Duration = time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond
	}

	snap.RequestsPerSec = float64(len(recs)) / timespan.Seconds()
	snap.TimespanSec = timespan.Seconds()
	snap.MinDurationMs = float64(snap.MinDuration) / float64(time.Millisecond)
	snap.MaxDurationMs = float64(snap.MaxDuration) / float64(time.Millisecond)
	snap.AvgDurationMs = float64(snap.AvgDuration) / float64(time.Millisecond)
	snap.P50DurationMs = float64(snap.P50Duration) / float64(time.Millisecond)
	snap.P90DurationMs = float64(snap.P90Duration) / float64(time.Millisecond)
	snap.P99DurationMs = float64(snap.P99Duration) / float64(time.Millisecond)

	return snap, true
}
