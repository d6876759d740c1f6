package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lagtap/lagtap/internal/config"
)

func TestParseFlagsDefaults(t *testing.T) {
	loader := config.NewLoader()

	cfg, err := loader.Load([]string{"--target", "https://api.example.com"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "https://api.example.com" {
		t.Errorf("TargetURL = %q, want https://api.example.com", cfg.TargetURL)
	}
	if cfg.Method != "GET" {
		t.Errorf("Method = %q, want GET", cfg.Method)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.Rate != 0 {
		t.Errorf("Rate = %d, want 0", cfg.Rate)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Timeout)
	}
	if cfg.JSONOutput {
		t.Errorf("JSONOutput = true, want false")
	}
	if len(cfg.Headers) != 0 {
		t.Errorf("Headers len = %d, want 0", len(cfg.Headers))
	}
	if cfg.Arrival.Model != config.ArrivalModelUniform {
		t.Errorf("Arrival.Model = %q, want uniform", cfg.Arrival.Model)
	}
	if cfg.Window.Capacity != 0 || cfg.Window.EmitEvery != 0 {
		t.Errorf("Window = %+v, want zero values", cfg.Window)
	}
	if cfg.Simulate.Enabled {
		t.Errorf("Simulate.Enabled = true, want false")
	}
	if cfg.Simulate.Latency != 5*time.Millisecond {
		t.Errorf("Simulate.Latency = %s, want 5ms", cfg.Simulate.Latency)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("Tracing.SampleRate = %g, want 1.0", cfg.Tracing.SampleRate)
	}
}

func TestLoadNoArgsShowsHelp(t *testing.T) {
	loader := config.NewLoader()
	if _, err := loader.Load(nil); !errors.Is(err, config.ErrHelpRequested) {
		t.Errorf("Load() error = %v, want ErrHelpRequested", err)
	}
	if _, err := loader.Load([]string{"--help"}); !errors.Is(err, config.ErrHelpRequested) {
		t.Errorf("Load(--help) error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{
		"target": "https://api.example.com",
		"method": "PUT",
		"headers": {"Content-Type": "application/json"},
		"body": "{\"foo\":\"bar\"}",
		"concurrency": 10,
		"rate": 100,
		"duration": "2m",
		"total": 500,
		"timeout": "45s",
		"jsonOutput": true,
		"log_level": "debug",
		"capture": "out.csv",
		"window": {"capacity": 2000, "emit_every": 50, "level": "debug"},
		"thresholds": ["req_duration:p99 < 500"]
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path, "--method", "PATCH", "--header", "Authorization=Bearer token"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "https://api.example.com" {
		t.Errorf("TargetURL = %q, want https://api.example.com", cfg.TargetURL)
	}
	if cfg.Method != "PATCH" {
		t.Errorf("Method = %q, want PATCH", cfg.Method)
	}
	if cfg.Headers["Content-Type"] != "application/json" {
		t.Errorf("Headers[Content-Type] = %q, want application/json", cfg.Headers["Content-Type"])
	}
	if cfg.Headers["Authorization"] != "Bearer token" {
		t.Errorf("Headers[Authorization] = %q, want Bearer token", cfg.Headers["Authorization"])
	}
	if cfg.Body != `{"foo":"bar"}` {
		t.Errorf("Body = %q, want {\"foo\":\"bar\"}", cfg.Body)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want 10", cfg.Concurrency)
	}
	if cfg.Rate != 100 {
		t.Errorf("Rate = %d, want 100", cfg.Rate)
	}
	if cfg.Duration != 2*time.Minute {
		t.Errorf("Duration = %s, want 2m", cfg.Duration)
	}
	if cfg.Total != 500 {
		t.Errorf("Total = %d, want 500", cfg.Total)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %s, want 45s", cfg.Timeout)
	}
	if !cfg.JSONOutput {
		t.Errorf("JSONOutput = false, want true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.CaptureFile != "out.csv" {
		t.Errorf("CaptureFile = %q, want out.csv", cfg.CaptureFile)
	}
	if cfg.Window.Capacity != 2000 {
		t.Errorf("Window.Capacity = %d, want 2000", cfg.Window.Capacity)
	}
	if cfg.Window.EmitEvery != 50 {
		t.Errorf("Window.EmitEvery = %d, want 50", cfg.Window.EmitEvery)
	}
	if cfg.Window.Level != "debug" {
		t.Errorf("Window.Level = %q, want debug", cfg.Window.Level)
	}
	if len(cfg.Thresholds) != 1 || cfg.Thresholds[0] != "req_duration:p99 < 500" {
		t.Errorf("Thresholds = %v", cfg.Thresholds)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"target: https://service.example.com",
		"method: POST",
		"headers:",
		"  X-Env: staging",
		"concurrency: 4",
		"rate: 20",
		"duration: 30s",
		"timeout: 15s",
		"total: 40",
		"arrival:",
		"  model: poisson",
		"window:",
		"  capacity: 100",
		"  emit_every: 10",
		"simulate:",
		"  enabled: true",
		"  latency: 2ms",
		"  fail_every: 10",
		"tracing:",
		"  endpoint: collector:4317",
		"  protocol: grpc",
		"  sample_rate: 0.25",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "https://service.example.com" {
		t.Errorf("TargetURL = %q, want https://service.example.com", cfg.TargetURL)
	}
	if cfg.Method != "POST" {
		t.Errorf("Method = %q, want POST", cfg.Method)
	}
	if cfg.Headers["X-Env"] != "staging" {
		t.Errorf("Headers[X-Env] = %q, want staging", cfg.Headers["X-Env"])
	}
	if cfg.Arrival.Model != config.ArrivalModelPoisson {
		t.Errorf("Arrival.Model = %q, want poisson", cfg.Arrival.Model)
	}
	if cfg.Window.Capacity != 100 || cfg.Window.EmitEvery != 10 {
		t.Errorf("Window = %+v, want capacity 100 emit_every 10", cfg.Window)
	}
	if !cfg.Simulate.Enabled {
		t.Errorf("Simulate.Enabled = false, want true")
	}
	if cfg.Simulate.Latency != 2*time.Millisecond {
		t.Errorf("Simulate.Latency = %s, want 2ms", cfg.Simulate.Latency)
	}
	if cfg.Simulate.FailEvery != 10 {
		t.Errorf("Simulate.FailEvery = %d, want 10", cfg.Simulate.FailEvery)
	}
	if cfg.Tracing.Endpoint != "collector:4317" {
		t.Errorf("Tracing.Endpoint = %q, want collector:4317", cfg.Tracing.Endpoint)
	}
	if cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("Tracing.SampleRate = %g, want 0.25", cfg.Tracing.SampleRate)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{
		"target": "https://api.example.com",
		"window": {"capacity": 2000}
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path, "--window-capacity", "300", "--window-level", "warn"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Window.Capacity != 300 {
		t.Errorf("Window.Capacity = %d, want 300", cfg.Window.Capacity)
	}
	if cfg.Window.Level != "warn" {
		t.Errorf("Window.Level = %q, want warn", cfg.Window.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		TargetURL:   "https://api.example.com",
		Concurrency: 1,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() on valid config = %v", err)
	}

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantPart string
	}{
		{
			name:     "missing target",
			mutate:   func(c *config.Config) { c.TargetURL = "" },
			wantPart: "target is required",
		},
		{
			name:     "zero concurrency",
			mutate:   func(c *config.Config) { c.Concurrency = 0 },
			wantPart: "concurrency must be >= 1",
		},
		{
			name:     "negative rate",
			mutate:   func(c *config.Config) { c.Rate = -1 },
			wantPart: "rate must be >= 0",
		},
		{
			name: "body conflict",
			mutate: func(c *config.Config) {
				c.Body = "x"
				c.BodyFile = "f"
			},
			wantPart: "body and bodyFile are mutually exclusive",
		},
		{
			name: "dashboard with json",
			mutate: func(c *config.Config) {
				c.Dashboard = true
				c.JSONOutput = true
			},
			wantPart: "dashboard and json-output are mutually exclusive",
		},
		{
			name:     "bad arrival model",
			mutate:   func(c *config.Config) { c.Arrival.Model = "bursty" },
			wantPart: "arrival model",
		},
		{
			name:     "negative window capacity",
			mutate:   func(c *config.Config) { c.Window.Capacity = -1 },
			wantPart: "window: capacity must be >= 0",
		},
		{
			name:     "bad window level",
			mutate:   func(c *config.Config) { c.Window.Level = "loud" },
			wantPart: "window: level",
		},
		{
			name: "negative simulate latency",
			mutate: func(c *config.Config) {
				c.Simulate.Enabled = true
				c.Simulate.Latency = -time.Second
			},
			wantPart: "simulate: latency must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected an error")
			}
			var verr config.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantPart) {
				t.Errorf("Validate() = %q, want to contain %q", err.Error(), tt.wantPart)
			}
		})
	}
}

func TestValidateSimulateWithoutTarget(t *testing.T) {
	cfg := config.Config{
		Concurrency: 1,
		Simulate:    config.SimulateConfig{Enabled: true},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil when simulating", err)
	}
}
