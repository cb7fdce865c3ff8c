package forecast

import (
	"math"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/features"
)

// Inputs are the history-derived statistics a strategy needs for one day.
type Inputs struct {
	Trend      features.Trend
	DayOfMonth float64
	DayOfWeek  float64
	Average    float64
	DayIndex   int
}

// Strategy computes the raw (unrounded) prediction for one day.
type Strategy func(in Inputs, rnd Rand) float64

var strategies = map[models.ModelType]Strategy{
	models.ModelLinear: linearStrategy,
	models.ModelForest: forestStrategy,
	models.ModelSVM:    svmStrategy,
}

func linearStrategy(in Inputs, _ Rand) float64 {
	base := in.Trend.At(float64(in.DayIndex))
	return LinearTrendWeight*base + LinearSeasonalWeight*base*in.DayOfMonth*in.DayOfWeek
}

func forestStrategy(in Inputs, rnd Rand) float64 {
	jitter := ForestJitterMin + ForestJitterSpan*rnd.Float64()
	return in.Average * in.DayOfMonth * in.DayOfWeek * jitter
}

func svmStrategy(in Inputs, _ Rand) float64 {
	return in.Average *
		math.Pow(in.DayOfMonth, SVMSeasonalExponent) *
		math.Pow(in.DayOfWeek, SVMSeasonalExponent)
}

// StrategyFor returns the strategy of model, falling back to linear.
func StrategyFor(model models.ModelType) Strategy {
	if s, ok := strategies[model]; ok {
		return s
	}
	return strategies[models.DefaultModelType()]
}

// Predict evaluates model and returns a non-negative value rounded to one decimal.
func Predict(model models.ModelType, in Inputs, rnd Rand) float64 {
	return round1(math.Max(0, StrategyFor(model)(in, rnd)))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
