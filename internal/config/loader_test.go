package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"hello", "hello"},
		{123, "123"},
		{true, "true"},
		{nil, ""},
		{[]byte("bytes"), "bytes"},
	}

	for _, tt := range tests {
		got, err := asString(tt.input)
		if err != nil {
			t.Errorf("asString(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		input interface{}
		want  int
	}{
		{123, 123},
		{"456", 456},
		{int64(789), 789},
		{float64(10.0), 10},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asInt(tt.input)
		if err != nil {
			t.Errorf("asInt(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}

	if _, err := asInt("abc"); err == nil {
		t.Error("asInt(abc) expected an error")
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		input interface{}
		want  bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"FALSE", false},
		{nil, false},
	}

	for _, tt := range tests {
		got, err := asBool(tt.input)
		if err != nil {
			t.Errorf("asBool(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asBool(%v) = %t, want %t", tt.input, got, tt.want)
		}
	}

	if _, err := asBool("maybe"); err == nil {
		t.Error("asBool(maybe) expected an error")
	}
}

func TestAsDuration(t *testing.T) {
	tests := []struct {
		input interface{}
		want  time.Duration
	}{
		{"30s", 30 * time.Second},
		{"1m30s", 90 * time.Second},
		{5, 5 * time.Second},
		{int64(2), 2 * time.Second},
		{2 * time.Minute, 2 * time.Minute},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asDuration(tt.input)
		if err != nil {
			t.Errorf("asDuration(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asDuration(%v) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := asDuration("fast"); err == nil {
		t.Error("asDuration(fast) expected an error")
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := &Config{
		Method:   "GET",
		Headers:  map[string]string{},
		Timeout:  30 * time.Second,
		Simulate: SimulateConfig{Latency: 5 * time.Millisecond},
		Tracing:  TracingConfig{SampleRate: 1.0},
	}
	settings := map[string]interface{}{
		"target":      "https://api.example.com",
		"method":      "delete",
		"headers":     map[string]interface{}{"X-Token": "abc"},
		"concurrency": 8,
		"rate":        50,
		"duration":    "90s",
		"timeout":     "10s",
		"total":       200,
		"json_output": true,
		"log_level":   "warn",
		"capture":     "records.csv",
		"html_report": "report.html",
		"arrival":     "poisson",
		"window": map[string]interface{}{
			"capacity":   500,
			"emit_every": 25,
			"level":      "debug",
		},
		"simulate": map[string]interface{}{
			"enabled":    true,
			"fail_every": 7,
		},
		"tracing": map[string]interface{}{
			"endpoint": "collector:4317",
			"insecure": true,
		},
		"thresholds": []interface{}{"req_failed:rate < 0.01"},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}

	if cfg.TargetURL != "https://api.example.com" {
		t.Errorf("TargetURL = %q, want https://api.example.com", cfg.TargetURL)
	}
	if cfg.Method != "DELETE" {
		t.Errorf("Method = %q, want DELETE", cfg.Method)
	}
	if cfg.Headers["X-Token"] != "abc" {
		t.Errorf("Headers[X-Token] = %q, want abc", cfg.Headers["X-Token"])
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.Rate != 50 {
		t.Errorf("Rate = %d, want 50", cfg.Rate)
	}
	if cfg.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", cfg.Duration)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.Total != 200 {
		t.Errorf("Total = %d, want 200", cfg.Total)
	}
	if !cfg.JSONOutput {
		t.Error("JSONOutput = false, want true")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.CaptureFile != "records.csv" {
		t.Errorf("CaptureFile = %q, want records.csv", cfg.CaptureFile)
	}
	if cfg.HTMLReport != "report.html" {
		t.Errorf("HTMLReport = %q, want report.html", cfg.HTMLReport)
	}
	if cfg.Arrival.Model != ArrivalModelPoisson {
		t.Errorf("Arrival.Model = %q, want poisson", cfg.Arrival.Model)
	}
	if cfg.Window.Capacity != 500 || cfg.Window.EmitEvery != 25 || cfg.Window.Level != "debug" {
		t.Errorf("Window = %+v", cfg.Window)
	}
	if !cfg.Simulate.Enabled || cfg.Simulate.FailEvery != 7 {
		t.Errorf("Simulate = %+v", cfg.Simulate)
	}
	if cfg.Simulate.Latency != 5*time.Millisecond {
		t.Errorf("Simulate.Latency = %v, want base 5ms preserved", cfg.Simulate.Latency)
	}
	if cfg.Tracing.Endpoint != "collector:4317" || !cfg.Tracing.Insecure {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("Tracing.SampleRate = %g, want base 1.0 preserved", cfg.Tracing.SampleRate)
	}
	if len(cfg.Thresholds) != 1 || cfg.Thresholds[0] != "req_failed:rate < 0.01" {
		t.Errorf("Thresholds = %v", cfg.Thresholds)
	}
}

func TestApplyConfigSettingsBadValue(t *testing.T) {
	cfg := &Config{Headers: map[string]string{}}
	err := applyConfigSettings(cfg, map[string]interface{}{"concurrency": "lots"})
	if err == nil {
		t.Fatal("applyConfigSettings() expected an error")
	}
	if !strings.Contains(err.Error(), "concurrency") {
		t.Errorf("error = %q, want to mention concurrency", err.Error())
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := &Config{
		Concurrency: 1,
		Method:      "GET",
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)

	args := []string{
		"--concurrency=5",
		"--method=PUT",
		"--header=X-Test=123",
		"--window-capacity=400",
		"--window-emit-every=40",
		"--simulate",
		"--tracing-sample-rate=0.5",
		"--html-report=report.html",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.Method != "PUT" {
		t.Errorf("Method = %q, want PUT", cfg.Method)
	}
	if cfg.Headers["X-Test"] != "123" {
		t.Errorf("Headers[X-Test] = %q, want 123", cfg.Headers["X-Test"])
	}
	if cfg.Window.Capacity != 400 {
		t.Errorf("Window.Capacity = %d, want 400", cfg.Window.Capacity)
	}
	if cfg.Window.EmitEvery != 40 {
		t.Errorf("Window.EmitEvery = %d, want 40", cfg.Window.EmitEvery)
	}
	if !cfg.Simulate.Enabled {
		t.Error("Simulate.Enabled = false, want true")
	}
	if cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("Tracing.SampleRate = %g, want 0.5", cfg.Tracing.SampleRate)
	}
	if cfg.HTMLReport != "report.html" {
		t.Errorf("HTMLReport = %q, want report.html", cfg.HTMLReport)
	}
}

func TestApplyFlagOverridesBadHeader(t *testing.T) {
	cfg := &Config{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)
	if err := fs.Parse([]string{"--header=Missing-Separator"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := applyFlagOverrides(cfg, fs); err == nil {
		t.Fatal("applyFlagOverrides() expected an error for malformed header")
	}
}

func TestLoader_Load(t *testing.T) {
	loader := NewLoader()
	args := []string{
		"--target=http://example.com",
		"--concurrency=2",
	}

	cfg, err := loader.Load(args)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "http://example.com" {
		t.Errorf("TargetURL = %q, want http://example.com", cfg.TargetURL)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
	}
}

func TestParseWindow(t *testing.T) {
	win, err := parseWindow(map[string]interface{}{
		"capacity":   1000,
		"emit-every": 20,
		"level":      "info",
	})
	if err != nil {
		t.Fatalf("parseWindow() error = %v", err)
	}
	if win.Capacity != 1000 {
		t.Errorf("Capacity = %d, want 1000", win.Capacity)
	}
	if win.EmitEvery != 20 {
		t.Errorf("EmitEvery = %d, want 20", win.EmitEvery)
	}
	if win.Level != "info" {
		t.Errorf("Level = %q, want info", win.Level)
	}

	if _, err := parseWindow(map[string]interface{}{"capacity": []string{"many"}}); err == nil {
		t.Error("parseWindow(bad capacity) expected an error")
	}

	win, err = parseWindow(nil)
	if err != nil || win != (WindowConfig{}) {
		t.Errorf("parseWindow(nil) = %+v, %v", win, err)
	}
}

func TestParseSimulate(t *testing.T) {
	base := SimulateConfig{Latency: 5 * time.Millisecond}
	sim, err := parseSimulate(map[string]interface{}{
		"enabled": true,
		"jitter":  "3ms",
	}, base)
	if err != nil {
		t.Fatalf("parseSimulate() error = %v", err)
	}
	if !sim.Enabled {
		t.Error("Enabled = false, want true")
	}
	if sim.Latency != 5*time.Millisecond {
		t.Errorf("Latency = %v, want base 5ms preserved", sim.Latency)
	}
	if sim.Jitter != 3*time.Millisecond {
		t.Errorf("Jitter = %v, want 3ms", sim.Jitter)
	}

	sim, err = parseSimulate(nil, base)
	if err != nil || sim != base {
		t.Errorf("parseSimulate(nil) = %+v, %v", sim, err)
	}
}

func TestParseTracing(t *testing.T) {
	base := TracingConfig{SampleRate: 1.0}
	tr, err := parseTracing(map[string]interface{}{
		"endpoint":     "collector:4318",
		"protocol":     "HTTP",
		"service_name": "checkout",
		"sample_rate":  0.1,
		"propagate":    true,
	}, base)
	if err != nil {
		t.Fatalf("parseTracing() error = %v", err)
	}
	if tr.Endpoint != "collector:4318" {
		t.Errorf("Endpoint = %q, want collector:4318", tr.Endpoint)
	}
	if tr.Protocol != "http" {
		t.Errorf("Protocol = %q, want http", tr.Protocol)
	}
	if tr.ServiceName != "checkout" {
		t.Errorf("ServiceName = %q, want checkout", tr.ServiceName)
	}
	if tr.SampleRate != 0.1 {
		t.Errorf("SampleRate = %g, want 0.1", tr.SampleRate)
	}
	if !tr.Propagate {
		t.Error("Propagate = false, want true")
	}

	tr, err = parseTracing(nil, base)
	if err != nil || tr != base {
		t.Errorf("parseTracing(nil) = %+v, %v", tr, err)
	}
}

func TestParseArrival(t *testing.T) {
	arr, err := parseArrival("Poisson")
	if err != nil {
		t.Fatalf("parseArrival() error = %v", err)
	}
	if arr.Model != ArrivalModelPoisson {
		t.Errorf("Model = %q, want poisson", arr.Model)
	}

	arr, err = parseArrival(map[string]interface{}{"model": "uniform"})
	if err != nil {
		t.Fatalf("parseArrival(map) error = %v", err)
	}
	if arr.Model != ArrivalModelUniform {
		t.Errorf("Model = %q, want uniform", arr.Model)
	}

	if _, err := parseArrival(map[string]interface{}{"shape": "spiky"}); err == nil {
		t.Error("parseArrival(missing model) expected an error")
	}
}
