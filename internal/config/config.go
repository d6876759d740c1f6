package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	TargetURL   string            `mapstructure:"target"`
	Method      string            `mapstructure:"method"`
	Headers     map[string]string `mapstructure:"headers"`
	Body        string            `mapstructure:"body"`
	BodyFile    string            `mapstructure:"body_file"`
	Concurrency int               `mapstructure:"concurrency"`
	Rate        int               `mapstructure:"rate"`
	Duration    time.Duration     `mapstructure:"duration"`
	Total       int               `mapstructure:"total"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	JSONOutput  bool              `mapstructure:"json_output"`
	Dashboard   bool              `mapstructure:"dashboard"`
	LogLevel    string            `mapstructure:"log_level"`
	CaptureFile string            `mapstructure:"capture_file"`
	HTMLReport  string            `mapstructure:"html_report"`
	ConfigFile  string            `mapstructure:"-"`
	Arrival     ArrivalConfig     `mapstructure:"arrival"`
	Window      WindowConfig      `mapstructure:"window"`
	Simulate    SimulateConfig    `mapstructure:"simulate"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Thresholds  []string          `mapstructure:"thresholds"`
}

type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

// WindowConfig tunes the default windowed log sink.
type WindowConfig struct {
	Capacity  int    `mapstructure:"capacity"`   // records retained, 0 selects the default
	EmitEvery int    `mapstructure:"emit_every"` // records between aggregate lines, 0 selects the default
	Level     string `mapstructure:"level"`      // level of per-request and aggregate lines
}

// SimulateConfig drives requests against a built-in fake handler instead of a
// real target. Useful for trying the tool without a server to point at.
type SimulateConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Latency   time.Duration `mapstructure:"latency"`    // base simulated handler time
	Jitter    time.Duration `mapstructure:"jitter"`     // random extra latency, uniform in [0, jitter)
	FailEvery int           `mapstructure:"fail_every"` // every Nth request fails (0=never)
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether an OTLP endpoint is configured, either directly or
// via the standard environment variable.
func (t TracingConfig) Enabled() bool {
	if strings.TrimSpace(t.Endpoint) != "" {
		return true
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

// ShouldPropagate returns whether W3C trace headers should be injected into
// outgoing requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string
	var warnings []string

	if strings.TrimSpace(c.TargetURL) == "" && !c.Simulate.Enabled {
		issues = append(issues, "target is required (use --help for usage information)")
	}

	// Security warnings for high rate/concurrency
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High rate limit configured (%d RPS). Ensure you have authorization to test the target system.", c.Rate))
	}
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High concurrency configured (%d workers). Ensure you have authorization to test the target system.", c.Concurrency))
	}

	// Print warnings to stderr
	if len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, w)
		}
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Total < 0 {
		issues = append(issues, "total must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be >= 0")
	}
	if strings.TrimSpace(c.Body) != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and bodyFile are mutually exclusive")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}

	arrivalIssues := validateArrivalConfig(c.Arrival)
	if len(arrivalIssues) > 0 {
		issues = append(issues, arrivalIssues...)
	}

	windowIssues := validateWindowConfig(c.Window)
	if len(windowIssues) > 0 {
		issues = append(issues, windowIssues...)
	}

	simulateIssues := validateSimulateConfig(c.Simulate)
	if len(simulateIssues) > 0 {
		issues = append(issues, simulateIssues...)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

func validateArrivalConfig(arr ArrivalConfig) []string {
	model := arr.Model
	if model == "" {
		model = ArrivalModelUniform
	}
	switch model {
	case ArrivalModelUniform, ArrivalModelPoisson:
		return nil
	default:
		return []string{fmt.Sprintf("arrival model %q is not supported", model)}
	}
}

func validateWindowConfig(win WindowConfig) []string {
	var issues []string
	if win.Capacity < 0 {
		issues = append(issues, "window: capacity must be >= 0")
	}
	if win.EmitEvery < 0 {
		issues = append(issues, "window: emit_every must be >= 0")
	}
	if strings.TrimSpace(win.Level) != "" {
		if _, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(win.Level))); err != nil {
			issues = append(issues, fmt.Sprintf("window: level %q is not supported", win.Level))
		}
	}
	return issues
}

func validateSimulateConfig(sim SimulateConfig) []string {
	var issues []string
	if !sim.Enabled {
		return nil
	}
	if sim.Latency < 0 {
		issues = append(issues, "simulate: latency must be >= 0")
	}
	if sim.Jitter < 0 {
		issues = append(issues, "simulate: jitter must be >= 0")
	}
	if sim.FailEvery < 0 {
		issues = append(issues, "simulate: fail_every must be >= 0")
	}
	return issues
}
