package output

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/lagtap/lagtap/internal/stats"
	"github.com/lagtap/lagtap/internal/threshold"
)

// htmlReportData is the template input for the HTML report.
type htmlReportData struct {
	GeneratedAt      string
	Info             RunInfo
	Snapshot         stats.Snapshot
	WindowOK         bool
	StatusRows       []statusRow
	ThresholdSummary *thresholdSummary
}

type statusRow struct {
	Label string
	Count int
}

type thresholdSummary struct {
	Total   int
	Passed  int
	Failed  int
	Results []threshold.Result
}

// WriteHTMLReport renders a standalone HTML report of the run: totals, the
// final window aggregate, threshold outcomes, and the status breakdown.
func WriteHTMLReport(w io.Writer, info RunInfo, snap stats.Snapshot, windowOK bool, results []threshold.Result) error {
	var summary *thresholdSummary
	if len(results) > 0 {
		summary = &thresholdSummary{Total: len(results), Results: results}
		for _, res := range results {
			if res.Pass {
				summary.Passed++
			} else {
				summary.Failed++
			}
		}
	}

	data := htmlReportData{
		GeneratedAt:      time.Now().Format(time.RFC3339),
		Info:             info,
		Snapshot:         snap,
		WindowOK:         windowOK,
		StatusRows:       statusRows(snap.StatusCounts),
		ThresholdSummary: summary,
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatDuration": func(d time.Duration) string {
			return d.Round(time.Millisecond).String()
		},
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatPercent": func(part, total int64) string {
			if total == 0 {
				return "0.0"
			}
			return fmt.Sprintf("%.1f", (float64(part)/float64(total))*100)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report template: %w", err)
	}
	return nil
}

func statusRows(counts map[int]int) []statusRow {
	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	rows := make([]statusRow, 0, len(codes))
	for _, code := range codes {
		label := fmt.Sprintf("%d", code)
		if code == 0 {
			label = "no response"
		}
		rows = append(rows, statusRow{Label: label, Count: counts[code]})
	}
	return rows
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>lagtap Run Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
        }
        .badge-success {
            background: #d1fae5;
            color: #065f46;
        }
        .badge-error {
            background: #fee2e2;
            color: #991b1b;
        }
        .latency-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(140px, 1fr));
            gap: 15px;
            margin-top: 20px;
        }
        .latency-item {
            background: #f8f9fa;
            padding: 15px;
            border-radius: 6px;
            text-align: center;
        }
        .latency-item .label {
            font-size: 0.85rem;
            color: #6c757d;
            margin-bottom: 5px;
        }
        .latency-item .value {
            font-size: 1.3rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .no-data {
            text-align: center;
            padding: 40px;
            color: #6c757d;
            font-style: italic;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>lagtap Run Report</h1>
            {{if .Info.RunID}}
            <div class="meta">Run ID: {{.Info.RunID}}</div>
            {{end}}
            <div class="meta">Generated: {{.GeneratedAt}} | Run Duration: {{formatDuration .Info.Duration}}</div>
        </header>

        <div class="content">
            <!-- Summary Cards -->
            <div class="grid">
                <div class="card">
                    <h3>Total Requests</h3>
                    <div class="value">{{.Info.Total}}</div>
                </div>
                <div class="card error">
                    <h3>Failed</h3>
                    <div class="value">{{.Info.Errors}}</div>
                    <div class="subvalue">{{formatPercent .Info.Errors .Info.Total}}%</div>
                </div>
                {{if .WindowOK}}
                <div class="card">
                    <h3>Requests/sec</h3>
                    <div class="value">{{formatFloat .Snapshot.RequestsPerSec}}</div>
                    <div class="subvalue">over the final window</div>
                </div>
                <div class="card">
                    <h3>Window Records</h3>
                    <div class="value">{{.Snapshot.Count}}</div>
                    <div class="subvalue">spanning {{formatDuration .Snapshot.Timespan}}</div>
                </div>
                {{end}}
            </div>

            {{if .WindowOK}}
            <!-- Latency Statistics -->
            <div class="section">
                <h2>Window Latency</h2>
                <div class="latency-grid">
                    <div class="latency-item">
                        <div class="label">Min</div>
                        <div class="value">{{formatFloat .Snapshot.MinDurationMs}} ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Max</div>
                        <div class="value">{{formatFloat .Snapshot.MaxDurationMs}} ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Avg</div>
                        <div class="value">{{formatFloat .Snapshot.AvgDurationMs}} ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P50</div>
                        <div class="value">{{formatFloat .Snapshot.P50DurationMs}} ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P90</div>
                        <div class="value">{{formatFloat .Snapshot.P90DurationMs}} ms</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P99</div>
                        <div class="value">{{formatFloat .Snapshot.P99DurationMs}} ms</div>
                    </div>
                </div>
            </div>
            {{else}}
            <div class="section">
                <h2>Window Latency</h2>
                <div class="no-data">The window held too few records for aggregate statistics.</div>
            </div>
            {{end}}

            <!-- Thresholds -->
            {{if .ThresholdSummary}}
            <div class="section">
                <h2>Thresholds ({{.ThresholdSummary.Passed}}/{{.ThresholdSummary.Total}} Passed)</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Threshold</th>
                            <th>Metric</th>
                            <th>Expected</th>
                            <th>Actual</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ThresholdSummary.Results}}
                        <tr>
                            <td>{{.Threshold.Raw}}</td>
                            <td>{{.Threshold.Metric}} ({{.Threshold.Aggregate}})</td>
                            <td>{{.Threshold.Operator}} {{formatFloat .Threshold.Value}}</td>
                            <td>{{formatFloat .Actual}}</td>
                            <td>
                                {{if .Pass}}
                                <span class="badge badge-success">&#10003; PASS</span>
                                {{else}}
                                <span class="badge badge-error">&#10007; FAIL</span>
                                {{end}}
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            <!-- Status Breakdown -->
            {{if .StatusRows}}
            <div class="section">
                <h2>Status Codes</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Status</th>
                            <th>Count</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .StatusRows}}
                        <tr>
                            <td><strong>{{.Label}}</strong></td>
                            <td>{{.Count}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
    </div>
</body>
</html>
`
