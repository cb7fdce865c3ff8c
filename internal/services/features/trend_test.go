package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitTrendPerfectLine(t *testing.T) {
	tr := FitTrend([]float64{1, 3, 5, 7})
	assert.InDelta(t, 2.0, tr.Slope, 1e-9)
	assert.InDelta(t, 1.0, tr.Intercept, 1e-9)
	assert.InDelta(t, 9.0, tr.At(4), 1e-9)
}

func TestFitTrendSinglePointIsFlat(t *testing.T) {
	tr := FitTrend([]float64{42})
	assert.Equal(t, 0.0, tr.Slope)
	assert.Equal(t, 42.0, tr.Intercept)
}

func TestFitTrendEmpty(t *testing.T) {
	tr := FitTrend(nil)
	assert.Equal(t, Trend{}, tr)
}

func TestFitTrendScenario(t *testing.T) {
	ys := []float64{5, 6, 4, 7, 5, 6, 8, 5, 6, 7}
	tr := FitTrend(ys)
	// n=10, Σx=45, Σy=59, Σxy=279, Σx²=285
	wantSlope := (10*279.0 - 45*59.0) / (10*285.0 - 45*45.0)
	assert.InDelta(t, wantSlope, tr.Slope, 1e-9)
	assert.InDelta(t, (59-wantSlope*45)/10, tr.Intercept, 1e-9)
}
