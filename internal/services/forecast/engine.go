package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	"StockPulse/internal/services/features"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

var _ service.Forecaster = (*Engine)(nil)

// Engine orchestrates the statistics, strategies and cache into the
// next-month forecast and the 12-month projection.
type Engine struct {
	cache     *ForecastCache
	rnd       Rand
	now       func() time.Time
	projector *Projector
	metrics   domrepo.Metrics
	log       *logger.Logger
}

type Option func(*Engine)

// WithRand sets the random source for the forest model and projection jitter.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rnd = r }
}

// WithClock sets the clock that defines "next month".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(c *ForecastCache, opts ...Option) *Engine {
	e := &Engine{
		cache: c,
		rnd:   NewTimeSeededRand(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.projector = NewProjector(e.rnd)
	return e
}

// SetLogger sets optional logger.
func (e *Engine) SetLogger(l *logger.Logger) {
	e.log = l
	e.cache.SetLogger(l)
}

// Compute builds the next-month forecast of history without touching the cache.
// It returns nil for empty history.
func (e *Engine) Compute(itemID int64, history []models.SalesRecord, model models.ModelType) *models.NextMonthForecast {
	if len(history) == 0 {
		return nil
	}
	if !models.IsValidModelType(model) {
		model = models.DefaultModelType()
	}
	sorted := sortByDate(history)

	qty := features.Quantities(sorted)
	trend := features.FitTrend(qty)
	avg := features.Mean(qty)
	sigma := features.StdDev(qty)
	dom := features.DayOfMonthSeasonality(sorted)
	dow := features.DayOfWeekSeasonality(sorted)

	now := e.now()
	month := util.FirstOfMonth(now).AddDate(0, 1, 0)
	days := util.DaysInMonth(month)

	points := make([]models.DailyForecastPoint, 0, days)
	for day := 1; day <= days; day++ {
		date := month.AddDate(0, 0, day-1)
		pred := Predict(model, Inputs{
			Trend:      trend,
			DayOfMonth: dom.Factor(date.Day()),
			DayOfWeek:  dow.Factor(features.ISOWeekday(date)),
			Average:    avg,
			DayIndex:   len(sorted) + day,
		}, e.rnd)
		lower, upper := ConfidenceInterval(pred, sigma)
		points = append(points, models.DailyForecastPoint{
			Day:       day,
			Date:      date,
			Predicted: pred,
			Lower:     lower,
			Upper:     upper,
		})
	}

	return &models.NextMonthForecast{
		ItemID:      itemID,
		Month:       month,
		Points:      points,
		Accuracy:    EvaluateAccuracy(sorted),
		Model:       model,
		GeneratedAt: now,
	}
}

// ForecastNextMonth serves the cached forecast when it matches model and the
// current forecast month, otherwise loads history and recomputes.
func (e *Engine) ForecastNextMonth(ctx context.Context, itemID int64, model models.ModelType, history domrepo.SalesHistoryProvider) (*models.NextMonthForecast, error) {
	if !models.IsValidModelType(model) {
		model = models.DefaultModelType()
	}

	// The item lock spans the history load and compute. Callers for the same
	// item queue behind a slow history source; other items are unaffected.
	unlock := e.cache.Lock(itemID)
	defer unlock()

	month := util.FirstOfMonth(e.now()).AddDate(0, 1, 0)
	if cached := e.cache.Get(ctx, itemID); cached != nil && cached.Model == model && cached.Month.Equal(month) {
		e.recordCacheHit(true)
		return cached, nil
	}
	e.recordCacheHit(false)

	records, err := history.GetSalesHistory(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load sales history: %w", err)
	}

	f := e.compute(itemID, records, model)
	e.cache.Put(ctx, itemID, f)
	return f, nil
}

func (e *Engine) ProjectTwelveMonths(itemID int64, history []models.SalesRecord) []models.MonthlyProjection {
	if len(history) == 0 {
		return []models.MonthlyProjection{}
	}
	out := e.projector.Project(sortByDate(history), e.now())
	if e.log != nil {
		e.log.Debug("projection computed", logger.Int64("item_id", itemID), logger.Int("months", len(out)))
	}
	return out
}

// RecordSales runs apply under the item lock and evicts the cached forecast
// before releasing it. The entry is evicted even when apply fails.
func (e *Engine) RecordSales(ctx context.Context, itemID int64, apply func(context.Context) error) error {
	unlock := e.cache.Lock(itemID)
	defer unlock()
	defer e.cache.Invalidate(ctx, itemID)

	return apply(ctx)
}

func (e *Engine) Invalidate(ctx context.Context, itemID int64) {
	unlock := e.cache.Lock(itemID)
	defer unlock()
	e.cache.Invalidate(ctx, itemID)
}

func (e *Engine) compute(itemID int64, history []models.SalesRecord, model models.ModelType) *models.NextMonthForecast {
	start := time.Now()
	f := e.Compute(itemID, history, model)
	if e.metrics != nil && f != nil {
		e.metrics.RecordForecast(string(model), time.Since(start).Seconds())
	}
	if e.log != nil && f == nil {
		e.log.Debug("no sales history, forecast skipped", logger.Int64("item_id", itemID))
	}
	return f
}

func (e *Engine) recordCacheHit(hit bool) {
	if e.metrics != nil {
		e.metrics.RecordCacheHit(hit)
	}
}

func sortByDate(records []models.SalesRecord) []models.SalesRecord {
	sorted := make([]models.SalesRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
