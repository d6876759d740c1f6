package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/lagtap/lagtap/internal/stats"
)

// RunInfo identifies a completed run and its driver-level counters.
type RunInfo struct {
	RunID    string
	Total    int64
	Errors   int64
	Duration time.Duration
}

// PrintReport outputs a human-readable summary of the run and the final
// window snapshot. A degenerate window (too few records for aggregates)
// is reported as such instead of printing zeroed statistics.
func PrintReport(w io.Writer, info RunInfo, snap stats.Snapshot, windowOK bool) {
	fmt.Fprintln(w, "\n--- lagtap results ---")
	if info.RunID != "" {
		fmt.Fprintf(w, "Run ID:            %s\n", info.RunID)
	}
	fmt.Fprintf(w, "Total Requests:    %d\n", info.Total)
	fmt.Fprintf(w, "Failed:            %d\n", info.Errors)
	fmt.Fprintf(w, "Run Duration:      %s\n", info.Duration)

	if !windowOK {
		fmt.Fprintf(w, "\nWindow: %d record(s), not enough for aggregate statistics\n", snap.Count)
		return
	}

	fmt.Fprintf(w, "\nWindow (last %d records over %s):\n", snap.Count, snap.Timespan)
	fmt.Fprintf(w, "  Requests/sec:    %.2f\n", snap.RequestsPerSec)
	fmt.Fprintf(w, "  Failures:        %d (%.2f%%)\n", snap.Failures, snap.FailureRate()*100)
	fmt.Fprintln(w, "  Latency:")
	fmt.Fprintf(w, "    Min:           %s\n", snap.MinDuration)
	fmt.Fprintf(w, "    Max:           %s\n", snap.MaxDuration)
	fmt.Fprintf(w, "    Avg:           %s\n", snap.AvgDuration)
	fmt.Fprintf(w, "    P50:           %s\n", snap.P50Duration)
	fmt.Fprintf(w, "    P90:           %s\n", snap.P90Duration)
	fmt.Fprintf(w, "    P99:           %s\n", snap.P99Duration)

	if len(snap.StatusCounts) > 0 {
		fmt.Fprintln(w, "  Status Codes:")
		codes := make([]int, 0, len(snap.StatusCounts))
		for code := range snap.StatusCounts {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "    %d: %d\n", code, snap.StatusCounts[code])
		}
	}
}

type jsonReport struct {
	RunID      string          `json:"run_id,omitempty"`
	Total      int64           `json:"total"`
	Errors     int64           `json:"errors"`
	DurationMs float64         `json:"duration_ms"`
	Window     *stats.Snapshot `json:"window,omitempty"`
}

// PrintJSONReport outputs a JSON-formatted report. The window object is
// omitted when the final window was degenerate.
func PrintJSONReport(w io.Writer, info RunInfo, snap stats.Snapshot, windowOK bool) error {
	report := jsonReport{
		RunID:      info.RunID,
		Total:      info.Total,
		Errors:     info.Errors,
		DurationMs: float64(info.Duration) / float64(time.Millisecond),
	}
	if windowOK {
		report.Window = &snap
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
