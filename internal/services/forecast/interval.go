package forecast

import "math"

// ConfidenceInterval returns the 95% band around predicted, rounded to one decimal.
// predicted is expected to be non-negative and already rounded.
func ConfidenceInterval(predicted, stdDev float64) (lower, upper float64) {
	margin := ConfidenceZ * stdDev
	lower = round1(math.Max(0, predicted-margin))
	upper = round1(predicted + margin)
	return lower, upper
}
