package analysis

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// tukeyFence is the IQR multiple beyond which points are outliers.
const tukeyFence = 1.5

// BoxSummary is the five-number summary a box plot draws, with whiskers
// at the most extreme points inside the Tukey fences.
type BoxSummary struct {
	N            int       `json:"n"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// SplitSummary summarizes both halves of a Split. A nil side means the
// group was empty.
type SplitSummary struct {
	NoCHD *BoxSummary `json:"no_chd"`
	CHD   *BoxSummary `json:"chd"`
}

// Summarize computes a BoxSummary. Empty input returns nil without error.
func Summarize(values []float64) (*BoxSummary, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data := stats.Float64Data(values)

	min, err := data.Min()
	if err != nil {
		return nil, fmt.Errorf("failed to compute minimum: %w", err)
	}
	max, err := data.Max()
	if err != nil {
		return nil, fmt.Errorf("failed to compute maximum: %w", err)
	}
	median, err := data.Median()
	if err != nil {
		return nil, fmt.Errorf("failed to compute median: %w", err)
	}

	q1, q3 := median, median
	if len(values) > 1 {
		quartiles, err := stats.Quartile(data)
		if err != nil {
			return nil, fmt.Errorf("failed to compute quartiles: %w", err)
		}
		q1, q3 = quartiles.Q1, quartiles.Q3
	}

	iqr := q3 - q1
	lowFence, highFence := q1-tukeyFence*iqr, q3+tukeyFence*iqr

	summary := &BoxSummary{
		N:            len(values),
		Min:          min,
		Q1:           q1,
		Median:       median,
		Q3:           q3,
		Max:          max,
		LowerWhisker: max,
		UpperWhisker: min,
		Outliers:     []float64{},
	}
	for _, v := range values {
		if v < lowFence || v > highFence {
			summary.Outliers = append(summary.Outliers, v)
			continue
		}
		if v < summary.LowerWhisker {
			summary.LowerWhisker = v
		}
		if v > summary.UpperWhisker {
			summary.UpperWhisker = v
		}
	}
	return summary, nil
}

// SummarizeSplit summarizes both CHD groups of a split.
func SummarizeSplit(split Split) (SplitSummary, error) {
	noCHD, err := Summarize(split.NoCHD)
	if err != nil {
		return SplitSummary{}, fmt.Errorf("no-CHD group: %w", err)
	}
	chd, err := Summarize(split.CHD)
	if err != nil {
		return SplitSummary{}, fmt.Errorf("CHD group: %w", err)
	}
	return SplitSummary{NoCHD: noCHD, CHD: chd}, nil
}
