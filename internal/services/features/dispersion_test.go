package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(xs), 1e-9)
	// population variance = 4
	assert.InDelta(t, 2.0, StdDev(xs), 1e-9)
}

func TestDispersionEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev(nil))
}

func TestStdDevConstantSeries(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{10, 10, 10, 10}))
}
