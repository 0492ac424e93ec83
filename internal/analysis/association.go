package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Association is a Pearson chi-square test of independence between a
// grouping and the CHD outcome.
type Association struct {
	ChiSquare        float64 `json:"chi_square"`
	DegreesOfFreedom int     `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
	CramersV         float64 `json:"cramers_v"`
}

// Associate tests a rate table's 2xk contingency table (cases and non-cases
// per category). It returns nil when the test is undefined: fewer than two
// categories, or an outcome column with no observations.
func Associate(rates RateTable) *Association {
	if len(rates) < 2 {
		return nil
	}

	var total, totalCases int
	for _, r := range rates {
		total += r.Count
		totalCases += r.Cases
	}
	totalNonCases := total - totalCases
	if totalCases == 0 || totalNonCases == 0 {
		return nil
	}

	n := float64(total)
	var chiSq float64
	for _, r := range rates {
		observed := [2]float64{float64(r.Cases), float64(r.Count - r.Cases)}
		colTotals := [2]float64{float64(totalCases), float64(totalNonCases)}
		for j := range observed {
			expected := float64(r.Count) * colTotals[j] / n
			diff := observed[j] - expected
			chiSq += diff * diff / expected
		}
	}

	df := len(rates) - 1
	dist := distuv.ChiSquared{K: float64(df)}

	return &Association{
		ChiSquare:        chiSq,
		DegreesOfFreedom: df,
		PValue:           dist.Survival(chiSq),
		// min(rows, cols) - 1 is always 1 for a two-outcome table
		CramersV: math.Sqrt(chiSq / n),
	}
}
