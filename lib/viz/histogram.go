package viz

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"percipio.com/xferhist/lib/logger"
	"percipio.com/xferhist/lib/record"
)

const (
	defaultBins   = 10
	defaultWidth  = 6 * vg.Inch
	defaultHeight = 4.5 * vg.Inch
	fillAlpha     = 0xb0
)

type HistogramOptions struct {
	Title  string
	XLabel string
	YLabel string
	Bins   int
	Width  vg.Length
	Height vg.Length
}

// DefaultHistogramOptions labels the axes for column.
func DefaultHistogramOptions(column string) HistogramOptions {
	xLabel := column
	if column == record.ColTransferDuration {
		xLabel = "Time [s]"
	}
	return HistogramOptions{
		XLabel: xLabel,
		YLabel: "Count []",
		Bins:   defaultBins,
		Width:  defaultWidth,
		Height: defaultHeight,
	}
}

// RenderHistogram overlays one histogram per group and saves the figure to
// path. Each group is binned over its own range. The file extension selects
// the format (pdf, svg, png, eps, ...).
func RenderHistogram(path string, groups []record.Group, ex record.Extractor, opts HistogramOptions) error {
	if len(groups) == 0 {
		return fmt.Errorf("nothing to plot: %w", record.ErrNoRecords)
	}
	if opts.Bins < 1 {
		opts.Bins = defaultBins
	}
	if opts.Width == 0 {
		opts.Width = defaultWidth
	}
	if opts.Height == 0 {
		opts.Height = defaultHeight
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Legend.Top = true

	for i, g := range groups {
		h, err := plotter.NewHist(plotter.Values(g.Values(ex)), opts.Bins)
		if err != nil {
			return fmt.Errorf("failed to bin %s: %w", g.Name, err)
		}
		h.FillColor = translucent(plotutil.Color(i))
		p.Add(h)
		p.Legend.Add(g.Name, h)

		logger.Debug("Histogram %s: %d values in %d bins", g.Name, len(g.Records), opts.Bins)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("failed to save histogram: %w", err)
	}

	return nil
}

func translucent(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: fillAlpha}
}
