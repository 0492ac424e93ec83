package ports

import (
	"chdash/internal/analysis"
)

// ChartRenderer turns pipeline output into images. Chart type, colors and
// layout are entirely the renderer's concern.
type ChartRenderer interface {
	RateChart(title string, rates analysis.RateTable) ([]byte, error)
	DistributionChart(title string, split analysis.Split) ([]byte, error)
	Histogram(title string, values []float64) ([]byte, error)
	ContentType() string
}
