package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"chdash/internal/analysis"
	"chdash/internal/errors"
	"chdash/ports"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Burgundy-to-gray palette, darkest first.
var palette = []color.Color{
	color.RGBA{R: 0x80, G: 0x00, B: 0x20, A: 0xff},
	color.RGBA{R: 0x99, G: 0x33, B: 0x33, A: 0xff},
	color.RGBA{R: 0xa6, G: 0x4a, B: 0x4a, A: 0xff},
	color.RGBA{R: 0xbf, G: 0xbf, B: 0xbf, A: 0xff},
	color.RGBA{R: 0x89, G: 0x89, B: 0x89, A: 0xff},
}

const histogramBins = 20

// Renderer draws dashboard charts as PNG images with gonum/plot
type Renderer struct {
	width  vg.Length
	height vg.Length
}

// NewRenderer creates a renderer producing width x height point images
func NewRenderer(width, height vg.Length) ports.ChartRenderer {
	return &Renderer{width: width, height: height}
}

// NewDefaultRenderer uses a 480x320 point canvas
func NewDefaultRenderer() ports.ChartRenderer {
	return NewRenderer(vg.Points(480), vg.Points(320))
}

// ContentType is the MIME type of every image this renderer returns
func (r *Renderer) ContentType() string {
	return "image/png"
}

// RateChart draws one bar per category. Bars take their color from the
// category's risk rank when the table carries one.
func (r *Renderer) RateChart(title string, rates analysis.RateTable) ([]byte, error) {
	p := newPlot(title)
	p.Y.Label.Text = "10-year CHD rate (%)"
	p.Y.Min = 0

	for i, row := range rates {
		bars, err := plotter.NewBarChart(plotter.Values{row.RatePct}, vg.Points(28))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build bar for %s", row.Category)
		}
		bars.XMin = float64(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = barColor(i, row.RiskRank)
		p.Add(bars)
	}
	// NominalX needs at least one label
	if len(rates) > 0 {
		p.NominalX(rates.Labels()...)
		p.X.Tick.Label.XAlign = draw.XCenter
	}

	return r.encode(p)
}

// DistributionChart draws side-by-side box plots for subjects without and
// with the outcome. Empty groups are left out.
func (r *Renderer) DistributionChart(title string, split analysis.Split) ([]byte, error) {
	p := newPlot(title)

	groups := []struct {
		name   string
		values []float64
		fill   color.Color
	}{
		{"No CHD", split.NoCHD, palette[3]},
		{"CHD Risk", split.CHD, palette[0]},
	}

	var names []string
	for _, g := range groups {
		if len(g.values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(len(names)), plotter.Values(g.values))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build box plot for %s", g.name)
		}
		box.FillColor = g.fill
		p.Add(box)
		names = append(names, g.name)
	}
	if len(names) > 0 {
		p.NominalX(names...)
	}

	return r.encode(p)
}

// Histogram draws the distribution of values in fixed-count bins
func (r *Renderer) Histogram(title string, values []float64) ([]byte, error) {
	p := newPlot(title)
	p.Y.Label.Text = "Subjects"

	if len(values) > 0 {
		hist, err := plotter.NewHist(plotter.Values(values), histogramBins)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build histogram")
		}
		hist.FillColor = palette[0]
		hist.LineStyle.Width = vg.Length(0)
		p.Add(hist)
	}

	return r.encode(p)
}

func (r *Renderer) encode(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PNG writer")
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to encode PNG")
	}
	return buf.Bytes(), nil
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Add(plotter.NewGrid())
	return p
}

// barColor prefers the risk rank (1 = darkest) and falls back to position.
func barColor(index, rank int) color.Color {
	if rank > 0 {
		return palette[min(rank-1, len(palette)-1)]
	}
	return palette[index%len(palette)]
}

// String is used in log lines
func (r *Renderer) String() string {
	return fmt.Sprintf("png %.0fx%.0f", r.width.Points(), r.height.Points())
}
