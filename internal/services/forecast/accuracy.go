package forecast

import (
	"math"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/features"
)

// EvaluateAccuracy backtests the trend model on a chronological holdout of
// sorted and returns a score in [0, 1].
func EvaluateAccuracy(sorted []models.SalesRecord) float64 {
	n := len(sorted)
	if n < MinAccuracySamples {
		return DefaultAccuracy
	}

	testSize := (n + HoldoutDivisor - 1) / HoldoutDivisor
	trainSize := n - testSize

	qty := features.Quantities(sorted)
	trend := features.FitTrend(qty[:trainSize])

	var totalErr, totalActual float64
	for i := 0; i < testSize; i++ {
		actual := qty[trainSize+i]
		totalErr += math.Abs(trend.At(float64(trainSize+i)) - actual)
		totalActual += actual
	}
	if totalActual == 0 {
		return DegenerateAccuracy
	}

	return math.Min(1, math.Max(0, 1-totalErr/totalActual))
}
