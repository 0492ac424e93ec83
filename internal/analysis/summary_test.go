package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_Empty(t *testing.T) {
	s, err := Summarize(nil)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSummarize_SingleValue(t *testing.T) {
	s, err := Summarize([]float64{27.5})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 1, s.N)
	assert.Equal(t, 27.5, s.Q1)
	assert.Equal(t, 27.5, s.Median)
	assert.Equal(t, 27.5, s.Q3)
	assert.Equal(t, 27.5, s.LowerWhisker)
	assert.Equal(t, 27.5, s.UpperWhisker)
	assert.Empty(t, s.Outliers)
}

// TestSummarize_Outlier places one point far beyond the upper fence
func TestSummarize_Outlier(t *testing.T) {
	values := []float64{20, 21, 22, 23, 24, 25, 26, 27, 60}
	s, err := Summarize(values)
	require.NoError(t, err)

	assert.Equal(t, 9, s.N)
	assert.Equal(t, 20.0, s.Min)
	assert.Equal(t, 60.0, s.Max)
	assert.Equal(t, 24.0, s.Median)
	assert.Less(t, s.Q1, s.Median)
	assert.Greater(t, s.Q3, s.Median)
	assert.Equal(t, []float64{60}, s.Outliers)
	assert.Equal(t, 27.0, s.UpperWhisker)
	assert.Equal(t, 20.0, s.LowerWhisker)
}

func TestSummarize_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_, err := Summarize(values)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSummarizeSplit(t *testing.T) {
	summary, err := SummarizeSplit(Split{NoCHD: []float64{1, 2, 3}, CHD: []float64{}})
	require.NoError(t, err)
	require.NotNil(t, summary.NoCHD)
	assert.Equal(t, 2.0, summary.NoCHD.Median)
	assert.Nil(t, summary.CHD)
}

func TestAssociate_Undefined(t *testing.T) {
	assert.Nil(t, Associate(nil))
	assert.Nil(t, Associate(RateTable{{Category: "Male", Count: 10, Cases: 3, RatePct: 30}}))
	// no cases anywhere
	assert.Nil(t, Associate(RateTable{
		{Category: "Female", Count: 5},
		{Category: "Male", Count: 5},
	}))
}

func TestAssociate_KnownTable(t *testing.T) {
	// 2x2: [10 cases / 90 non] vs [30 cases / 70 non]
	rates := RateTable{
		{Category: "Female", Count: 100, Cases: 10, RatePct: 10},
		{Category: "Male", Count: 100, Cases: 30, RatePct: 30},
	}
	a := Associate(rates)
	require.NotNil(t, a)
	assert.Equal(t, 1, a.DegreesOfFreedom)
	assert.InDelta(t, 12.5, a.ChiSquare, 1e-9)
	assert.InDelta(t, 0.000407, a.PValue, 1e-5)
	assert.InDelta(t, math.Sqrt(12.5/200), a.CramersV, 1e-9)
}

func TestAssociate_Independent(t *testing.T) {
	rates := RateTable{
		{Category: "A", Count: 50, Cases: 10, RatePct: 20},
		{Category: "B", Count: 50, Cases: 10, RatePct: 20},
		{Category: "C", Count: 50, Cases: 10, RatePct: 20},
	}
	a := Associate(rates)
	require.NotNil(t, a)
	assert.InDelta(t, 0, a.ChiSquare, 1e-12)
	assert.InDelta(t, 1, a.PValue, 1e-12)
	assert.Equal(t, 2, a.DegreesOfFreedom)
}
