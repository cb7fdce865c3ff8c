package service

import (
	"context"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

// Forecaster produces demand forecasts for a single item.
type Forecaster interface {
	// ForecastNextMonth computes (or serves from cache) the day-level forecast for
	// next calendar month. It returns nil when the item has no sales history.
	ForecastNextMonth(ctx context.Context, itemID int64, model models.ModelType, history domrepo.SalesHistoryProvider) (*models.NextMonthForecast, error)
	// ProjectTwelveMonths returns 12 monthly projections, or none for empty history.
	ProjectTwelveMonths(itemID int64, history []models.SalesRecord) []models.MonthlyProjection
	// RecordSales runs apply while the item's cache entry is locked, then evicts it.
	RecordSales(ctx context.Context, itemID int64, apply func(context.Context) error) error
	// Invalidate evicts the cached forecast of an item.
	Invalidate(ctx context.Context, itemID int64)
}
