package record

import (
	"testing"
	"time"
)

func TestTicks(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     int64
	}{
		{name: "one millisecond", duration: time.Millisecond, want: 10_000},
		{name: "single tick", duration: 100 * time.Nanosecond, want: 1},
		{name: "sub-tick truncates", duration: 99 * time.Nanosecond, want: 0},
		{name: "zero", duration: 0, want: 0},
		{name: "one and a half seconds", duration: 1500 * time.Millisecond, want: 15_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{Duration: tt.duration}
			if got := r.Ticks(); got != tt.want {
				t.Errorf("Ticks() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDurationMs(t *testing.T) {
	r := Record{Duration: 1500 * time.Microsecond}
	if got := r.DurationMs(); got != 1.5 {
		t.Errorf("DurationMs() = %v, want 1.5", got)
	}
}

func TestFailed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "ok", status: 200, want: false},
		{name: "redirect", status: 302, want: false},
		{name: "client error", status: 404, want: true},
		{name: "server error", status: 500, want: true},
		{name: "never recorded", status: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{Status: tt.status}
			if got := r.Failed(); got != tt.want {
				t.Errorf("Failed() with status %d = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
