package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/lagtap/lagtap/internal/stats"
)

// SnapshotSource supplies the current window snapshot. The boolean is false
// while the window holds too few records for aggregate statistics.
type SnapshotSource interface {
	Snapshot() (stats.Snapshot, bool)
}

// RunConfig holds run parameters for display.
type RunConfig struct {
	TargetURL   string        // Full target URL
	Concurrency int           // Number of concurrent workers
	Duration    time.Duration // Run duration (0 = unlimited)
	Total       int           // Total requests to execute (0 = unlimited)
	Rate        int           // Requests per second (0 = unlimited)
	Timeout     time.Duration // Request timeout
	Method      string        // HTTP method
	ConfigFile  string        // Path to config file if used
	Simulated   bool          // Whether the run targets the built-in simulator
}

// Dashboard renders a live terminal UI for the request window.
type Dashboard struct {
	source       SnapshotSource
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid           *ui.Grid
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	rpsGauge       *widgets.Gauge
	statusList     *widgets.List
	summaryPara    *widgets.Paragraph
	metricsPara    *widgets.Paragraph
	latencyHistory []float64
	startTime      time.Time
	runConfig      RunConfig
}

// New creates a new Dashboard.
func New(source SnapshotSource, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		source:         source,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		runConfig:      cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	// Latency Sparkline
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Window Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	// Latency Metrics Paragraph
	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Stats"
	d.latencyPara.Text = "Min: 0ms\nAvg: 0ms\nP50: 0ms\nP90: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	// RPS Gauge
	d.rpsGauge = widgets.NewGauge()
	d.rpsGauge.Title = "Requests Per Second"
	d.rpsGauge.Percent = 0
	d.rpsGauge.BarColor = ui.ColorBlue
	d.rpsGauge.BorderStyle.Fg = ui.ColorCyan
	d.rpsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	// Status Code List
	d.statusList = widgets.NewList()
	d.statusList.Title = "Status Codes"
	d.statusList.Rows = []string{"No records yet"}
	d.statusList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.statusList.BorderStyle.Fg = ui.ColorCyan

	// Summary Paragraph
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	// Metrics Paragraph (plain text summary)
	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Window Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.16,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.22,
			ui.NewCol(0.5, d.rpsGauge),
			ui.NewCol(0.5, d.metricsPara),
		),
		ui.NewRow(0.34,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.28,
			ui.NewCol(1.0, d.statusList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and cleans up.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			// Check if context is done to avoid blocking
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the snapshot source.
func (d *Dashboard) update() {
	snap, ok := d.source.Snapshot()
	d.applySnapshot(snap, ok, time.Since(d.startTime))
}

// applySnapshot pushes a window snapshot into the widgets.
func (d *Dashboard) applySnapshot(snap stats.Snapshot, ok bool, elapsed time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	target := d.runConfig.TargetURL
	if d.runConfig.Simulated {
		target = "simulated"
	}

	params := d.formatRunParams()
	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\n%s\nElapsed: %s | Window: %d record(s)",
		target,
		params,
		elapsed.Round(time.Second),
		snap.Count,
	)

	if !ok {
		d.metricsPara.Text = "Collecting records..."
		return
	}

	// Update latency history for sparkline
	if snap.AvgDuration > 0 {
		latencyMs := snap.AvgDurationMs
		d.latencyHistory = append(d.latencyHistory, latencyMs)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		d.latencySparkle.Title = fmt.Sprintf(
			"Window Latency | Avg: %.2fms | Min: %.2fms | Max: %.2fms",
			latencyMs,
			snap.MinDurationMs,
			snap.MaxDurationMs,
		)
	}

	currentRPS := snap.RequestsPerSec
	maxRPS := 100.0
	if currentRPS > maxRPS {
		maxRPS = currentRPS
	}
	rpsPercent := int((currentRPS / maxRPS) * 100)
	if rpsPercent > 100 {
		rpsPercent = 100
	}
	d.rpsGauge.Percent = rpsPercent
	d.rpsGauge.Label = fmt.Sprintf("%.1f RPS", currentRPS)

	d.metricsPara.Text = fmt.Sprintf(
		"Window Records:    %d\nWindow Timespan:   %s\nFailed:            %d (%.1f%%)\nCurrent RPS:       %.2f\nMin Latency:       %.2fms\nAvg Latency:       %.2fms\nP50/P90/P99:       %.2f / %.2f / %.2f ms",
		snap.Count,
		snap.Timespan.Round(time.Millisecond),
		snap.Failures,
		snap.FailureRate()*100,
		currentRPS,
		snap.MinDurationMs,
		snap.AvgDurationMs,
		snap.P50DurationMs,
		snap.P90DurationMs,
		snap.P99DurationMs,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %.2fms\nAvg:  %.2fms\nP50:  %.2fms\nP90:  %.2fms\nP99:  %.2fms",
		snap.MinDurationMs,
		snap.AvgDurationMs,
		snap.P50DurationMs,
		snap.P90DurationMs,
		snap.P99DurationMs,
	)

	d.statusList.Rows = formatStatusRows(snap.StatusCounts)
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func formatStatusRows(counts map[int]int) []string {
	if len(counts) == 0 {
		return []string{"[No records yet](fg:green)"}
	}
	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	maxRows := len(codes)
	if maxRows > 10 {
		maxRows = 10
	}
	formatted := make([]string, 0, maxRows)
	for i := 0; i < maxRows; i++ {
		code := codes[i]
		color := "green"
		if code == 0 || code >= 400 {
			color = "red"
		}
		label := fmt.Sprintf("%d", code)
		if code == 0 {
			label = "no response"
		}
		formatted = append(formatted, fmt.Sprintf("[%s](fg:%s) %d", label, color, counts[code]))
	}
	return formatted
}

// formatRunParams formats the run configuration parameters for display.
func (d *Dashboard) formatRunParams() string {
	var parts []string

	if d.runConfig.Simulated {
		parts = append(parts, "Mode: simulate")
	}

	if d.runConfig.Method != "" && d.runConfig.Method != "GET" {
		parts = append(parts, fmt.Sprintf("Method: %s", d.runConfig.Method))
	}

	if d.runConfig.Concurrency > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", d.runConfig.Concurrency))
	}

	if d.runConfig.Rate > 0 {
		parts = append(parts, fmt.Sprintf("Rate: %d/s", d.runConfig.Rate))
	} else {
		parts = append(parts, "Rate: unlimited")
	}

	if d.runConfig.Duration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", d.runConfig.Duration))
	}

	if d.runConfig.Total > 0 {
		parts = append(parts, fmt.Sprintf("Total: %d", d.runConfig.Total))
	}

	if d.runConfig.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("Timeout: %s", d.runConfig.Timeout))
	}

	if d.runConfig.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.runConfig.ConfigFile))
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, " | ")
}
