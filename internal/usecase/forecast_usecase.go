package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/tracing"
)

// ForecastUseCase serves forecasts, projections and catalog reads. History
// is read through the override layer, which falls back to the store.
type ForecastUseCase struct {
	forecaster service.Forecaster
	history    drepo.SalesHistoryProvider
	sales      drepo.SalesStore
	inventory  drepo.InventoryProvider
	metrics    drepo.Metrics
	workers    int
	log        *logger.Logger
	now        func() time.Time
}

func NewForecastUseCase(
	forecaster service.Forecaster,
	history drepo.SalesHistoryProvider,
	sales drepo.SalesStore,
	inventory drepo.InventoryProvider,
	metrics drepo.Metrics,
	reportWorkers int,
) *ForecastUseCase {
	if reportWorkers <= 0 {
		reportWorkers = 4
	}
	return &ForecastUseCase{
		forecaster: forecaster,
		history:    history,
		sales:      sales,
		inventory:  inventory,
		metrics:    metricsOrNop(metrics),
		workers:    reportWorkers,
		log:        logger.NewNop(),
		now:        time.Now,
	}
}

// SetLogger sets optional logger.
func (u *ForecastUseCase) SetLogger(l *logger.Logger) {
	if l != nil {
		u.log = l
	}
}

// NextMonth returns the next-month forecast, or nil when the item has no
// sales history.
func (u *ForecastUseCase) NextMonth(ctx context.Context, itemID int64, model models.ModelType) (f *models.NextMonthForecast, err error) {
	ctx, span := tracing.StartSpan(ctx, "forecast.next_month",
		tracing.AttrItemID.Int64(itemID), tracing.AttrModel.String(string(model)))
	defer func() { tracing.End(span, err) }()

	start := time.Now()
	f, err = u.forecaster.ForecastNextMonth(ctx, itemID, model, u.history)
	if err != nil {
		u.metrics.RecordError("forecast")
		return nil, fmt.Errorf("forecast item %d: %w", itemID, err)
	}
	u.metrics.RecordLatency("forecast.next_month", time.Since(start).Seconds())
	return f, nil
}

// Projection returns the 12-month projection, empty for an item without
// sales history.
func (u *ForecastUseCase) Projection(ctx context.Context, itemID int64) (p []models.MonthlyProjection, err error) {
	ctx, span := tracing.StartSpan(ctx, "forecast.projection", tracing.AttrItemID.Int64(itemID))
	defer func() { tracing.End(span, err) }()

	records, err := u.history.GetSalesHistory(ctx, itemID)
	if err != nil {
		u.metrics.RecordError("projection")
		return nil, fmt.Errorf("load sales history: %w", err)
	}
	return u.forecaster.ProjectTwelveMonths(itemID, records), nil
}

// Dashboard loads the item, its forecast and its projection concurrently.
// A failing part is reported in Errors; the call fails only when every part
// failed.
func (u *ForecastUseCase) Dashboard(ctx context.Context, itemID int64, model models.ModelType) (*models.ItemDashboard, error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		out  = &models.ItemDashboard{}
		errs = make(map[string]error)
	)
	fail := func(part string, err error) {
		mu.Lock()
		errs[part] = err
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		item, err := u.inventory.GetItem(ctx, itemID)
		if err != nil {
			fail("item", err)
			return
		}
		out.Item = item
	}()
	go func() {
		defer wg.Done()
		f, err := u.NextMonth(ctx, itemID, model)
		if err != nil {
			fail("forecast", err)
			return
		}
		out.Forecast = f
	}()
	go func() {
		defer wg.Done()
		p, err := u.Projection(ctx, itemID)
		if err != nil {
			fail("projection", err)
			return
		}
		out.Projection = p
	}()
	wg.Wait()

	if len(errs) == 3 {
		return nil, fmt.Errorf("dashboard item %d: %w", itemID, errors.Join(errs["item"], errs["forecast"], errs["projection"]))
	}
	if len(errs) > 0 {
		out.Errors = make(map[string]string, len(errs))
		for part, err := range errs {
			out.Errors[part] = err.Error()
			u.log.Warn("dashboard part failed",
				logger.Int64("item_id", itemID),
				logger.String("part", part),
				logger.Error(err))
		}
	}
	return out, nil
}

// Report forecasts every catalog item under one model with a bounded worker
// pool. Items without history are listed in Skipped. Forecasts are ordered by
// item ID.
func (u *ForecastUseCase) Report(ctx context.Context, model models.ModelType) (rep *models.ForecastReport, err error) {
	ctx, span := tracing.StartSpan(ctx, "forecast.report", tracing.AttrModel.String(string(model)))
	defer func() { tracing.End(span, err) }()

	start := time.Now()
	items, err := u.inventory.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if !models.IsValidModelType(model) {
		model = models.DefaultModelType()
	}

	type result struct {
		id int64
		f  *models.NextMonthForecast
		e  error
	}
	jobs := make(chan int64)
	results := make(chan result, len(items))

	var wg sync.WaitGroup
	for i := 0; i < u.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				f, err := u.forecaster.ForecastNextMonth(ctx, id, model, u.history)
				results <- result{id: id, f: f, e: err}
			}
		}()
	}

feed:
	for _, it := range items {
		select {
		case jobs <- it.ID:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("forecast report: %w", err)
	}

	rep = &models.ForecastReport{
		Model:       model,
		GeneratedAt: u.now().UTC(),
		Forecasts:   make([]models.NextMonthForecast, 0, len(items)),
	}
	var failures []error
	for r := range results {
		switch {
		case r.e != nil:
			failures = append(failures, fmt.Errorf("item %d: %w", r.id, r.e))
		case r.f == nil:
			rep.Skipped = append(rep.Skipped, r.id)
		default:
			rep.Forecasts = append(rep.Forecasts, *r.f)
		}
	}
	if len(failures) > 0 {
		u.metrics.RecordError("report")
		return nil, fmt.Errorf("forecast report: %w", errors.Join(failures...))
	}

	sort.Slice(rep.Forecasts, func(i, j int) bool { return rep.Forecasts[i].ItemID < rep.Forecasts[j].ItemID })
	sort.Slice(rep.Skipped, func(i, j int) bool { return rep.Skipped[i] < rep.Skipped[j] })
	u.metrics.RecordLatency("forecast.report", time.Since(start).Seconds())
	u.log.Info("forecast report built",
		logger.String("model", string(model)),
		logger.Int("items", len(rep.Forecasts)),
		logger.Int("skipped", len(rep.Skipped)),
		logger.Duration("duration_ms", time.Since(start)))
	return rep, nil
}

// SalesHistory lists persisted records of an item within [from, to]. Zero
// bounds are open.
func (u *ForecastUseCase) SalesHistory(ctx context.Context, itemID int64, from, to time.Time) ([]models.SalesRecord, error) {
	recs, err := u.sales.QuerySales(ctx, itemID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	return recs, nil
}

func (u *ForecastUseCase) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	return u.inventory.ListItems(ctx)
}

func (u *ForecastUseCase) GetItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	return u.inventory.GetItem(ctx, id)
}

// LowStock returns an alert for every item at or below its reorder level,
// largest deficit first.
func (u *ForecastUseCase) LowStock(ctx context.Context) ([]models.StockAlert, error) {
	items, err := u.inventory.LowStockItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock items: %w", err)
	}
	alerts := make([]models.StockAlert, 0, len(items))
	for _, it := range items {
		alerts = append(alerts, models.StockAlert{Item: it, Deficit: it.Deficit()})
	}
	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].Deficit > alerts[j].Deficit })
	return alerts, nil
}
