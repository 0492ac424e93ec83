package chart

import (
	"bytes"
	"image/png"
	"testing"

	"chdash/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPNG(t *testing.T, data []byte) {
	t.Helper()
	require.NotEmpty(t, data)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Positive(t, cfg.Width)
	assert.Positive(t, cfg.Height)
}

func TestRenderer_RateChart(t *testing.T) {
	r := NewDefaultRenderer()
	assert.Equal(t, "image/png", r.ContentType())

	rates := analysis.RateTable{
		{Category: "Some High School", Count: 10, Cases: 3, RatePct: 30, RiskRank: 1},
		{Category: "High School/GED", Count: 10, Cases: 1, RatePct: 10, RiskRank: 3},
		{Category: "Some College", Count: 10, Cases: 2, RatePct: 20, RiskRank: 2},
	}
	data, err := r.RateChart("CHD by Education", rates)
	require.NoError(t, err)
	assertPNG(t, data)
}

func TestRenderer_EmptyInputsStillRender(t *testing.T) {
	r := NewDefaultRenderer()

	data, err := r.RateChart("Nothing selected", nil)
	require.NoError(t, err)
	assertPNG(t, data)

	data, err = r.DistributionChart("Nothing selected", analysis.Split{})
	require.NoError(t, err)
	assertPNG(t, data)

	data, err = r.Histogram("Nothing selected", nil)
	require.NoError(t, err)
	assertPNG(t, data)
}

func TestRenderer_DistributionChart(t *testing.T) {
	split := analysis.Split{
		NoCHD: []float64{22.1, 24.5, 25.0, 26.3, 27.9, 31.2},
		CHD:   []float64{26.0, 28.4, 29.9, 33.5},
	}
	data, err := NewDefaultRenderer().DistributionChart("BMI", split)
	require.NoError(t, err)
	assertPNG(t, data)

	// One group only
	data, err = NewDefaultRenderer().DistributionChart("BMI", analysis.Split{CHD: split.CHD})
	require.NoError(t, err)
	assertPNG(t, data)
}

func TestRenderer_Histogram(t *testing.T) {
	ages := []float64{39, 46, 48, 61, 46, 43, 63, 45, 52, 43, 50, 43, 46, 41}
	data, err := NewDefaultRenderer().Histogram("Age of CHD cases", ages)
	require.NoError(t, err)
	assertPNG(t, data)
}

func TestBarColor(t *testing.T) {
	assert.Equal(t, palette[0], barColor(4, 1))
	assert.Equal(t, palette[len(palette)-1], barColor(0, 9))
	assert.Equal(t, palette[1], barColor(1, 0))
	assert.Equal(t, palette[0], barColor(5, 0))
}
