package repository

import (
	"context"
	"errors"
	"time"

	"StockPulse/internal/domain/models"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidSales = errors.New("invalid sales data")
)

// SalesHistoryProvider supplies the sales history of one item, in any order.
type SalesHistoryProvider interface {
	GetSalesHistory(ctx context.Context, itemID int64) ([]models.SalesRecord, error)
}

// HistoryOverrides holds uploaded histories that take precedence over the
// persisted store.
type HistoryOverrides interface {
	SalesHistoryProvider
	Set(itemID int64, records []models.SalesRecord)
	Append(itemID int64, records []models.SalesRecord) bool
	Clear() []int64
}

// SalesStore persists sales history.
type SalesStore interface {
	SalesHistoryProvider
	AppendSales(ctx context.Context, itemID int64, records []models.SalesRecord) error
	ReplaceSales(ctx context.Context, itemID int64, records []models.SalesRecord) error
	QuerySales(ctx context.Context, itemID int64, from, to time.Time) ([]models.SalesRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// InventoryProvider exposes the catalog.
type InventoryProvider interface {
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
	GetItem(ctx context.Context, id int64) (*models.InventoryItem, error)
	LowStockItems(ctx context.Context) ([]models.InventoryItem, error)
}

// InventoryStore is an InventoryProvider that accepts stock updates.
type InventoryStore interface {
	InventoryProvider
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Health(ctx context.Context) error
	Close() error
}

// SalesPublisher emits sales update events to the message bus.
type SalesPublisher interface {
	PublishSalesUpdate(ctx context.Context, ev *models.SalesUpdatedEvent) error
	Close() error
}

// Metrics records service-level measurements.
type Metrics interface {
	RecordForecast(model string, seconds float64)
	RecordCacheHit(hit bool)
	RecordSalesIngested(backend string, records int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
