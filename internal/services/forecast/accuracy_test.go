package forecast

import (
	"testing"
	"time"

	"StockPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func series(qty ...int) []models.SalesRecord {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.SalesRecord, len(qty))
	for i, q := range qty {
		out[i] = models.SalesRecord{
			ItemID:   1,
			ItemName: "Widget",
			Date:     start.AddDate(0, 0, i),
			Quantity: q,
			Revenue:  float64(q) * 10,
		}
	}
	return out
}

func TestAccuracyDefaultsForShortHistory(t *testing.T) {
	for n := 1; n < MinAccuracySamples; n++ {
		qty := make([]int, n)
		for i := range qty {
			qty[i] = i * 3
		}
		assert.Equal(t, DefaultAccuracy, EvaluateAccuracy(series(qty...)), "n=%d", n)
	}
}

func TestAccuracyZeroActualHoldout(t *testing.T) {
	assert.Equal(t, DegenerateAccuracy, EvaluateAccuracy(series(0, 0, 0, 0, 0, 0, 0, 0, 0, 0)))
	assert.Equal(t, DegenerateAccuracy, EvaluateAccuracy(series(9, 8, 7, 6, 5, 4, 3, 2, 0, 0)))
}

func TestAccuracyPerfectTrend(t *testing.T) {
	assert.InDelta(t, 1.0, EvaluateAccuracy(series(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)), 1e-9)
}

func TestAccuracyClampedAtZero(t *testing.T) {
	assert.Equal(t, 0.0, EvaluateAccuracy(series(100, 100, 100, 100, 100, 100, 100, 100, 1, 1)))
}

func TestAccuracyHoldoutRoundsUp(t *testing.T) {
	// n=11: holdout is the last 3 points against a flat trend of 10.
	got := EvaluateAccuracy(series(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 5))
	assert.InDelta(t, 0.8, got, 1e-9)
}

func TestAccuracyScenarioInRange(t *testing.T) {
	got := EvaluateAccuracy(series(5, 6, 4, 7, 5, 6, 8, 5, 6, 7))
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}
