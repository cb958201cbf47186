// Package chart renders the per-agent accuracy bar chart.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/agenteval/internal/domain/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Default chart configuration constants.
const (
	DefaultTitle  = "Agent Accuracy Comparison"
	DefaultYLabel = "Accuracy (%)"
	yMin          = 0
	yMax          = 100
	defaultWidth  = 8 * vg.Inch
	defaultHeight = 5 * vg.Inch
	barWidth      = 40

	directoryPermission = 0o750
)

// ErrNoData is returned when there are no summaries to plot.
var ErrNoData = errors.New("no agent summaries to plot")

// palette cycles bar colours in agent order.
var palette = []color.Color{
	color.RGBA{R: 0x00, G: 0x80, B: 0x00, A: 0xff}, // green
	color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}, // blue
	color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}, // orange
}

// Option applies a configuration option to a chart.
type Option func(*settings)

type settings struct {
	title  string
	width  vg.Length
	height vg.Length
}

// WithTitle overrides the chart title.
func WithTitle(title string) Option {
	return func(s *settings) {
		if title != "" {
			s.title = title
		}
	}
}

// WithSize sets the canvas size in inches.
func WithSize(widthIn, heightIn float64) Option {
	return func(s *settings) {
		if widthIn > 0 && heightIn > 0 {
			s.width = vg.Length(widthIn) * vg.Inch
			s.height = vg.Length(heightIn) * vg.Inch
		}
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{title: DefaultTitle, width: defaultWidth, height: defaultHeight}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BarChart builds a plot with one bar per agent showing accuracy on a
// fixed 0-100 axis.
func BarChart(summaries []model.AgentSummary, opts ...Option) (*plot.Plot, error) {
	if len(summaries) == 0 {
		return nil, ErrNoData
	}
	s := newSettings(opts)

	p := plot.New()
	p.Title.Text = s.title
	p.Y.Label.Text = DefaultYLabel

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	names := make([]string, len(summaries))
	for i, sum := range summaries {
		names[i] = sum.Agent
		bar, err := plotter.NewBarChart(plotter.Values{sum.AccuracyPct}, vg.Points(barWidth))
		if err != nil {
			return nil, fmt.Errorf("bar for %s: %w", sum.Agent, err)
		}
		bar.XMin = float64(i)
		bar.Color = palette[i%len(palette)]
		bar.LineStyle.Width = 0
		p.Add(bar)
	}
	p.NominalX(names...)

	p.Y.Min = yMin
	p.Y.Max = yMax
	return p, nil
}

// WritePNG renders the chart as PNG to w.
func WritePNG(w io.Writer, summaries []model.AgentSummary, opts ...Option) error {
	p, err := BarChart(summaries, opts...)
	if err != nil {
		return err
	}
	s := newSettings(opts)
	wt, err := p.WriterTo(s.width, s.height, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// SavePNG renders the chart as PNG to path, creating parent directories.
func SavePNG(path string, summaries []model.AgentSummary, opts ...Option) (err error) {
	if len(summaries) == 0 {
		return ErrNoData
	}
	if err := os.MkdirAll(filepath.Dir(path), directoryPermission); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return WritePNG(f, summaries, opts...)
}
