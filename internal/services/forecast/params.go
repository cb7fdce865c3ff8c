package forecast

// Tuning constants of the forecasting heuristics.
const (
	// LinearTrendWeight and LinearSeasonalWeight blend the raw trend with the
	// seasonally scaled trend in the linear model.
	LinearTrendWeight    = 0.7
	LinearSeasonalWeight = 0.3

	// Forest jitter is drawn from [ForestJitterMin, ForestJitterMin+ForestJitterSpan).
	ForestJitterMin  = 0.85
	ForestJitterSpan = 0.3

	SVMSeasonalExponent = 1.2

	// ConfidenceZ is the normal quantile for a 95% interval.
	ConfidenceZ = 1.96

	MinAccuracySamples = 10
	DefaultAccuracy    = 0.7
	DegenerateAccuracy = 0.75
	// HoldoutDivisor sets the holdout size to ceil(n / HoldoutDivisor).
	HoldoutDivisor = 5

	HolidayBoost = 1.3

	ProjectionJitterMin  = 0.9
	ProjectionJitterSpan = 0.2

	// PriceSeasonalEffect is the share of the seasonal deviation passed on to price.
	PriceSeasonalEffect = 0.5

	ProjectionMonths = 12
)
