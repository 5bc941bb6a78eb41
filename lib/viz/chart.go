package viz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"

	"percipio.com/xferhist/lib/record"
	"percipio.com/xferhist/lib/stats"
)

const (
	chartHeight   = 512
	chartBarWidth = 60
)

// RenderSummaryChart draws the average of every summary as a bar. Only .png
// and .svg outputs are supported.
func RenderSummaryChart(path string, summaries []*stats.Summary) error {
	var provider chart.RendererProvider
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		provider = chart.PNG
	case ".svg":
		provider = chart.SVG
	default:
		return fmt.Errorf("unsupported chart format %q (use .png or .svg)", filepath.Ext(path))
	}
	if len(summaries) == 0 {
		return fmt.Errorf("no summaries to chart: %w", record.ErrNoRecords)
	}

	bars := make([]chart.Value, 0, len(summaries))
	maxAvg := 0.0
	for _, s := range summaries {
		bars = append(bars, chart.Value{Label: s.Name, Value: s.Avg})
		if s.Avg > maxAvg {
			maxAvg = s.Avg
		}
	}
	if maxAvg <= 0 {
		maxAvg = 1
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("Average %s", summaries[0].Column),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Height:     chartHeight,
		Width:      max(chartHeight, (len(bars)+1)*(chartBarWidth+40)),
		BarWidth:   chartBarWidth,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxAvg * 1.1},
		},
		Bars: bars,
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := graph.Render(provider, f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}
