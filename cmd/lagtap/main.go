package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/lagtap/lagtap/internal/config"
	"github.com/lagtap/lagtap/internal/dashboard"
	"github.com/lagtap/lagtap/internal/driver"
	"github.com/lagtap/lagtap/internal/logging"
	"github.com/lagtap/lagtap/internal/output"
	"github.com/lagtap/lagtap/internal/sink"
	"github.com/lagtap/lagtap/internal/stats"
	"github.com/lagtap/lagtap/internal/tap"
	"github.com/lagtap/lagtap/internal/threshold"
	"github.com/lagtap/lagtap/internal/tracing"
)

const tracingShutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	runID := ulid.Make().String()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var provider *tracing.Provider
	if cfg.Tracing.Enabled() {
		provider, err = tracing.Init(ctx, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
			defer shutdownCancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("tracing shutdown failed")
			}
		}()
	}

	win, err := newWindowSink(cfg, logger, runID)
	if err != nil {
		return err
	}

	sinks := []sink.Sink{win}
	var capture *sink.FileSink
	if cfg.CaptureFile != "" {
		capture, err = sink.NewFile(cfg.CaptureFile)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		sinks = append(sinks, sink.Serialized(capture))
	}
	records := sink.Multi(sinks...)

	handler, err := newHandler(cfg, provider)
	if err != nil {
		return err
	}
	if provider != nil {
		handler = tap.WithTracing(handler, provider.Tracer())
	}
	handler = tap.WithTiming(handler, records)

	opts := driver.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Total,
		Duration:      cfg.Duration,
		RatePerSecond: cfg.Rate,
		Handler:       handler,
		ArrivalModel:  toDriverArrivalModel(cfg.Arrival.Model),
	}
	d := driver.New(opts)

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(win, runConfigFromCfg(cfg), cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	logger.WithField("run_id", runID).Debug("starting run")
	result := d.Run(ctx)

	// Restore the terminal before printing the report.
	if dash != nil {
		dash.Stop()
	}

	if capture != nil {
		if err := capture.Close(); err != nil {
			logger.WithError(err).Warn("closing capture file")
		} else {
			logger.WithField("path", capture.Path()).Debug("capture file written")
		}
	}

	snap, ok := win.Snapshot()
	info := output.RunInfo{
		RunID:    runID,
		Total:    result.Total,
		Errors:   result.Errors,
		Duration: result.Duration,
	}

	var thresholdResults []threshold.Result
	if len(thresholds) > 0 && ok {
		thresholdResults = threshold.NewEvaluator(thresholds).Evaluate(snap)
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, info, snap, ok); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, info, snap, ok)
	}

	if cfg.HTMLReport != "" {
		if err := writeHTMLReport(cfg.HTMLReport, info, snap, ok, thresholdResults); err != nil {
			return fmt.Errorf("write html report: %w", err)
		}
		logger.WithField("path", cfg.HTMLReport).Debug("html report written")
	}

	if len(thresholds) > 0 {
		// Threshold messages go to stderr in JSON mode so stdout stays a
		// single machine-readable document.
		dest := io.Writer(os.Stdout)
		if cfg.JSONOutput {
			dest = os.Stderr
		}
		if !ok {
			fmt.Fprintln(dest, "thresholds skipped: window has too few records")
		} else {
			failed := printThresholdResults(dest, thresholdResults)
			if failed > 0 {
				return fmt.Errorf("%d threshold(s) failed", failed)
			}
		}
	}

	if result.Errors > 0 {
		return fmt.Errorf("%d requests failed", result.Errors)
	}
	return nil
}

// newWindowSink builds the default sink from the window settings, labelling
// every line it logs with the run ID.
func newWindowSink(cfg *config.Config, logger *logrus.Logger, runID string) (*sink.WindowSink, error) {
	level, err := logging.ParseLevel(cfg.Window.Level)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return sink.NewWindow(sink.WindowConfig{
		Logger:    logger.WithField("run_id", runID),
		Level:     level,
		EmitEvery: cfg.Window.EmitEvery,
		Capacity:  cfg.Window.Capacity,
	}), nil
}

// newHandler picks the request handler for the run: the in-process simulated
// handler, or a real HTTP client against the target.
func newHandler(cfg *config.Config, provider *tracing.Provider) (tap.Handler, error) {
	if cfg.Simulate.Enabled {
		return newSimHandler(cfg), nil
	}
	return newHTTPHandler(cfg, provider.ShouldPropagate())
}

func toDriverArrivalModel(model config.ArrivalModel) driver.ArrivalModel {
	switch strings.ToLower(string(model)) {
	case string(config.ArrivalModelPoisson):
		return driver.ArrivalModelPoisson
	default:
		return driver.ArrivalModelUniform
	}
}

func runConfigFromCfg(cfg *config.Config) dashboard.RunConfig {
	return dashboard.RunConfig{
		TargetURL:   cfg.TargetURL,
		Concurrency: cfg.Concurrency,
		Duration:    cfg.Duration,
		Total:       cfg.Total,
		Rate:        cfg.Rate,
		Timeout:     cfg.Timeout,
		Method:      cfg.Method,
		ConfigFile:  cfg.ConfigFile,
		Simulated:   cfg.Simulate.Enabled,
	}
}

// writeHTMLReport renders the standalone report, creating or truncating the
// target path.
func writeHTMLReport(path string, info output.RunInfo, snap stats.Snapshot, windowOK bool, results []threshold.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := output.WriteHTMLReport(f, info, snap, windowOK, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printThresholdResults(w io.Writer, results []threshold.Result) int {
	fmt.Fprintln(w, "\n--- thresholds ---")
	failed := 0
	for _, res := range results {
		fmt.Fprintln(w, res.Message)
		if !res.Pass {
			failed++
		}
	}
	return failed
}
