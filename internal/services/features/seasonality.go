package features

import (
	"time"

	"StockPulse/internal/domain/models"
)

// SeasonalityMap maps a calendar bucket (day of month 1..31 or ISO weekday 1..7)
// to the ratio between the bucket's mean quantity and the overall mean.
type SeasonalityMap map[int]float64

// Factor returns the multiplier for key, 1.0 for buckets never observed.
func (m SeasonalityMap) Factor(key int) float64 {
	if f, ok := m[key]; ok {
		return f
	}
	return 1.0
}

// ISOWeekday maps a date to 1 (Monday) .. 7 (Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DayOfMonthSeasonality groups quantities by day of month.
func DayOfMonthSeasonality(records []models.SalesRecord) SeasonalityMap {
	return seasonality(records, func(t time.Time) int { return t.Day() })
}

// DayOfWeekSeasonality groups quantities by ISO weekday.
func DayOfWeekSeasonality(records []models.SalesRecord) SeasonalityMap {
	return seasonality(records, ISOWeekday)
}

func seasonality(records []models.SalesRecord, bucket func(time.Time) int) SeasonalityMap {
	out := SeasonalityMap{}
	if len(records) == 0 {
		return out
	}
	overall := Mean(Quantities(records))
	if overall == 0 {
		// every bucket mean is 0 as well; treat as no seasonality
		return out
	}
	sums := map[int]float64{}
	counts := map[int]int{}
	for _, r := range records {
		k := bucket(r.Date)
		sums[k] += float64(r.Quantity)
		counts[k]++
	}
	for k, s := range sums {
		out[k] = (s / float64(counts[k])) / overall
	}
	return out
}
