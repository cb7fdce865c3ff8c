package forecast

import (
	"math"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/features"
	"StockPulse/pkg/util"
)

// Projector builds the 12-month forward projection.
type Projector struct {
	rnd Rand
}

func NewProjector(rnd Rand) *Projector {
	return &Projector{rnd: rnd}
}

// Project returns one entry per month for the ProjectionMonths months after now.
// It returns an empty slice for empty history.
func (p *Projector) Project(records []models.SalesRecord, now time.Time) []models.MonthlyProjection {
	if len(records) == 0 {
		return []models.MonthlyProjection{}
	}

	baseQty := features.Mean(features.Quantities(records))
	basePrice := BaseUnitPrice(records)
	growth := MonthlyGrowthRate(records)
	label := records[0].ItemName
	start := util.FirstOfMonth(now)

	out := make([]models.MonthlyProjection, 0, ProjectionMonths)
	for i := 1; i <= ProjectionMonths; i++ {
		month := start.AddDate(0, i, 0)
		seasonal := SeasonalFactor(month.Month())
		trendFactor := math.Pow(1+growth, float64(i))
		jitter := ProjectionJitterMin + ProjectionJitterSpan*p.rnd.Float64()

		qty := int(math.Round(math.Max(0, baseQty*seasonal*HolidayFactor(month.Month())*trendFactor*jitter)))
		price := math.Max(0, basePrice*(1+(seasonal-1)*PriceSeasonalEffect))

		out = append(out, models.MonthlyProjection{
			Month:              month,
			ForecastedQuantity: qty,
			AssumedUnitPrice:   price,
			ProjectedRevenue:   float64(qty) * price,
			ProductLabel:       label,
		})
	}
	return out
}

// BaseUnitPrice averages revenue/quantity over records that sold something.
func BaseUnitPrice(records []models.SalesRecord) float64 {
	prices := make([]float64, 0, len(records))
	for _, r := range records {
		if p, ok := r.UnitPrice(); ok {
			prices = append(prices, p)
		}
	}
	return features.Mean(prices)
}

// MonthlyGrowthRate averages the relative change between adjacent calendar
// months (January..December buckets across all years) that both have sales data.
func MonthlyGrowthRate(records []models.SalesRecord) float64 {
	var sums [12]float64
	var counts [12]int
	for _, r := range records {
		m := int(r.Date.Month()) - 1
		sums[m] += float64(r.Quantity)
		counts[m]++
	}

	var total float64
	var pairs int
	for m := 0; m < 11; m++ {
		if counts[m] == 0 || counts[m+1] == 0 {
			continue
		}
		avg1 := sums[m] / float64(counts[m])
		avg2 := sums[m+1] / float64(counts[m+1])
		if avg1 == 0 {
			continue
		}
		total += (avg2 - avg1) / avg1
		pairs++
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}
