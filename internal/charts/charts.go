// Package charts renders collection statistics as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string
	Subtitle string
	Width    string // e.g. "900px"
	Height   string
	Theme    string
	Colors   []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:  "Collection progress",
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Colors: []string{"#3BA272", "#EE6666", "#5470C6", "#FAC858"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

func (c ChartConfig) color(i int) string {
	if len(c.Colors) == 0 {
		return ""
	}
	return c.Colors[i%len(c.Colors)]
}

func globalOptions(config ChartConfig) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	}
}

// RenderProgress writes a stacked bar chart of owned and missing copies
// per statistics group.
func RenderProgress(w io.Writer, stats []wishlist.Progress, config ChartConfig) error {
	if len(stats) == 0 {
		return fmt.Errorf("no statistics to chart")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(config)...)

	labels := make([]string, len(stats))
	owned := make([]opts.BarData, len(stats))
	missing := make([]opts.BarData, len(stats))
	for i, p := range stats {
		labels[i] = fmt.Sprintf("%s (%.0f%%)", p.Label, p.Percent())
		owned[i] = opts.BarData{Value: p.Owned}
		missing[i] = opts.BarData{Value: p.Total - p.Owned}
	}

	bar.SetXAxis(labels).
		AddSeries("Owned", owned,
			charts.WithBarChartOpts(opts.BarChart{Stack: "copies"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(0)})).
		AddSeries("Missing", missing,
			charts.WithBarChartOpts(opts.BarChart{Stack: "copies"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(1)}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderBarChart writes a single-series bar chart, used for top card
// scores.
func RenderBarChart(w io.Writer, series string, data []DataPoint, config ChartConfig) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(config)...)

	labels := make([]string, len(data))
	values := make([]opts.BarData, len(data))
	for i, point := range data {
		labels[i] = point.Label
		values[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(labels).
		AddSeries(series, values,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(2)})).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// ScorePoints returns the scores of the first n rows as chart data.
func ScorePoints(rows []wishlist.Row, n int) []DataPoint {
	n = min(n, len(rows))
	points := make([]DataPoint, n)
	for i, r := range rows[:n] {
		points[i] = DataPoint{Label: r.Name, Value: r.Score}
	}
	return points
}

// WriteStatsPage renders the progress chart of stats to path.
func WriteStatsPage(path string, stats []wishlist.Progress, config ChartConfig) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return RenderProgress(f, stats, config)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
