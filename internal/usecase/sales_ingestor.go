package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/tracing"

	"github.com/google/uuid"
)

const (
	BackendDirect = "direct"
	BackendKafka  = "kafka"
)

// SalesIngestor records sales updates and routes them to the configured
// backend. In direct mode writes are applied synchronously; in kafka mode an
// event is published and SalesEventsHandler applies it.
type SalesIngestor struct {
	store      drepo.SalesStore
	inventory  drepo.InventoryStore
	overrides  drepo.HistoryOverrides
	pub        drepo.SalesPublisher
	forecaster service.Forecaster
	metrics    drepo.Metrics
	backend    string
	log        *logger.Logger
	newID      func() string
	now        func() time.Time
}

// NewSalesIngestor creates a SalesIngestor. pub may be nil in direct mode and
// inventory may be nil when stock levels are not tracked.
func NewSalesIngestor(
	store drepo.SalesStore,
	inventory drepo.InventoryStore,
	overrides drepo.HistoryOverrides,
	pub drepo.SalesPublisher,
	forecaster service.Forecaster,
	metrics drepo.Metrics,
	backend string,
) *SalesIngestor {
	return &SalesIngestor{
		store:      store,
		inventory:  inventory,
		overrides:  overrides,
		pub:        pub,
		forecaster: forecaster,
		metrics:    metricsOrNop(metrics),
		backend:    backend,
		log:        logger.NewNop(),
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// SetLogger sets optional logger.
func (s *SalesIngestor) SetLogger(l *logger.Logger) {
	if l != nil {
		s.log = l
	}
}

// Backend returns the configured routing mode.
func (s *SalesIngestor) Backend() string { return s.backend }

// UpdateSalesData appends records to the item's history, or replaces it when
// replace is set. The cached forecast of the item is invalidated before
// returning. In kafka mode it returns once the event is published: reads see
// the new history only after SalesEventsHandler applies it, which evicts any
// forecast cached in between.
func (s *SalesIngestor) UpdateSalesData(ctx context.Context, itemID int64, records []models.SalesRecord, replace bool) (err error) {
	ctx, span := tracing.StartSpan(ctx, "sales.update",
		tracing.AttrItemID.Int64(itemID),
		tracing.AttrRecords.Int(len(records)),
		tracing.AttrReplace.Bool(replace),
		tracing.AttrBackend.String(s.backend))
	defer func() { tracing.End(span, err) }()

	if err := ValidateSales(itemID, records); err != nil {
		return err
	}

	start := time.Now()
	switch s.backend {
	case BackendKafka:
		err = s.publish(ctx, itemID, records, replace)
	case BackendDirect:
		err = s.forecaster.RecordSales(ctx, itemID, func(ctx context.Context) error {
			return s.Apply(ctx, itemID, records, replace)
		})
	default:
		err = fmt.Errorf("unknown backend: %s", s.backend)
	}
	if err != nil {
		s.metrics.RecordError("sales_update")
		return fmt.Errorf("update sales data: %w", err)
	}

	s.metrics.RecordSalesIngested(s.backend, len(records))
	s.metrics.RecordLatency("sales_update", time.Since(start).Seconds())
	return nil
}

// Apply writes records to the store, mirrors them into an existing override
// and updates the item's stock level. Callers hold the item lock.
func (s *SalesIngestor) Apply(ctx context.Context, itemID int64, records []models.SalesRecord, replace bool) error {
	var err error
	if replace {
		err = s.store.ReplaceSales(ctx, itemID, records)
	} else {
		err = s.store.AppendSales(ctx, itemID, records)
	}
	if err != nil {
		return fmt.Errorf("write sales: %w", err)
	}

	if s.overrides != nil {
		if replace {
			s.overrides.Set(itemID, records)
		} else {
			s.overrides.Append(itemID, records)
		}
	}

	s.syncStock(ctx, itemID, records)
	return nil
}

// Upload replaces the history of every item present in records and makes
// the uploaded set the active override layer. It returns the affected items
// in ascending order.
func (s *SalesIngestor) Upload(ctx context.Context, records []models.SalesRecord) ([]int64, error) {
	groups := GroupByItem(records)
	if len(groups) == 0 {
		return nil, fmt.Errorf("upload: %w", drepo.ErrInvalidSales)
	}

	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := s.UpdateSalesData(ctx, id, groups[id], true); err != nil {
			return nil, fmt.Errorf("upload item %d: %w", id, err)
		}
	}

	s.TrainModel(ctx, groups)
	s.log.Info("sales upload applied",
		logger.Int("items", len(ids)),
		logger.Int("records", len(records)))
	return ids, nil
}

// TrainModel swaps the override layer for the given groups and invalidates
// the forecasts of every item that had or now has an override.
func (s *SalesIngestor) TrainModel(ctx context.Context, groups map[int64][]models.SalesRecord) {
	if s.overrides == nil {
		return
	}
	affected := make(map[int64]struct{}, len(groups))
	for _, id := range s.overrides.Clear() {
		affected[id] = struct{}{}
	}
	for id, recs := range groups {
		s.overrides.Set(id, recs)
		affected[id] = struct{}{}
	}
	for id := range affected {
		s.forecaster.Invalidate(ctx, id)
	}
}

func (s *SalesIngestor) publish(ctx context.Context, itemID int64, records []models.SalesRecord, replace bool) error {
	if s.pub == nil {
		return errors.New("kafka backend without publisher")
	}
	ev := &models.SalesUpdatedEvent{
		EventID:    s.newID(),
		ItemID:     itemID,
		Records:    records,
		Replace:    replace,
		OccurredAt: s.now().UTC(),
	}
	if err := s.pub.PublishSalesUpdate(ctx, ev); err != nil {
		return fmt.Errorf("publish sales update: %w", err)
	}
	s.forecaster.Invalidate(ctx, itemID)
	s.log.Debug("sales update published",
		logger.String("event_id", ev.EventID),
		logger.Int64("item_id", itemID))
	return nil
}

// syncStock sets the inventory quantity from the latest record that reports
// a remaining stock level.
func (s *SalesIngestor) syncStock(ctx context.Context, itemID int64, records []models.SalesRecord) {
	if s.inventory == nil {
		return
	}
	var latest *models.SalesRecord
	for i := range records {
		r := &records[i]
		if r.Remaining == nil {
			continue
		}
		if latest == nil || !r.Date.Before(latest.Date) {
			latest = r
		}
	}
	if latest == nil {
		return
	}
	if err := s.inventory.UpdateQuantity(ctx, itemID, *latest.Remaining); err != nil {
		level := s.log.Warn
		if !errors.Is(err, drepo.ErrItemNotFound) {
			level = s.log.Error
			s.metrics.RecordError("inventory_update")
		}
		level("inventory quantity not updated", logger.Int64("item_id", itemID), logger.Error(err))
	}
}

// ValidateSales rejects non-positive item IDs, empty batches and negative
// quantities, revenues or stock levels.
func ValidateSales(itemID int64, records []models.SalesRecord) error {
	if itemID <= 0 {
		return fmt.Errorf("%w: item id must be positive", drepo.ErrInvalidSales)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: no records", drepo.ErrInvalidSales)
	}
	for i, r := range records {
		if r.Quantity < 0 || r.Revenue < 0 {
			return fmt.Errorf("%w: record %d has negative quantity or revenue", drepo.ErrInvalidSales, i)
		}
		if r.Remaining != nil && *r.Remaining < 0 {
			return fmt.Errorf("%w: record %d has negative remaining stock", drepo.ErrInvalidSales, i)
		}
		if r.Date.IsZero() {
			return fmt.Errorf("%w: record %d has no date", drepo.ErrInvalidSales, i)
		}
	}
	return nil
}

// GroupByItem splits records by item, keeping their relative order.
func GroupByItem(records []models.SalesRecord) map[int64][]models.SalesRecord {
	out := make(map[int64][]models.SalesRecord)
	for _, r := range records {
		out[r.ItemID] = append(out[r.ItemID], r)
	}
	return out
}
