package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	pkgkafka "StockPulse/pkg/kafka"
	"StockPulse/pkg/logger"
)

var _ pkgkafka.MessageHandler = (*SalesEventsHandler)(nil)

// SalesEventsHandler applies SalesUpdatedEvent messages consumed from Kafka.
type SalesEventsHandler struct {
	topic      string
	ingestor   *SalesIngestor
	forecaster service.Forecaster
	metrics    drepo.Metrics
	log        *logger.Logger
}

func NewSalesEventsHandler(topic string, ingestor *SalesIngestor, forecaster service.Forecaster, metrics drepo.Metrics) *SalesEventsHandler {
	return &SalesEventsHandler{
		topic:      topic,
		ingestor:   ingestor,
		forecaster: forecaster,
		metrics:    metricsOrNop(metrics),
		log:        logger.NewNop(),
	}
}

// SetLogger sets optional logger.
func (h *SalesEventsHandler) SetLogger(l *logger.Logger) {
	if l != nil {
		h.log = l
	}
}

func (h *SalesEventsHandler) Topic() string { return h.topic }

// Handle decodes one event and applies it under the item lock, so the cached
// forecast is evicted again once the write is visible.
func (h *SalesEventsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.SalesUpdatedEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode sales event: %w", err)
	}
	if err := ValidateSales(ev.ItemID, ev.Records); err != nil {
		h.metrics.RecordError("consumer_invalid")
		return err
	}
	if !ev.OccurredAt.IsZero() {
		h.metrics.RecordLatency("sales_event_lag", time.Since(ev.OccurredAt).Seconds())
	}

	start := time.Now()
	err := h.forecaster.RecordSales(ctx, ev.ItemID, func(ctx context.Context) error {
		return h.ingestor.Apply(ctx, ev.ItemID, ev.Records, ev.Replace)
	})
	h.metrics.RecordLatency("sales_event_apply", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_apply")
		return fmt.Errorf("apply sales event %s: %w", ev.EventID, err)
	}

	h.log.Debug("sales event applied",
		logger.String("event_id", ev.EventID),
		logger.Int64("item_id", ev.ItemID),
		logger.Int("records", len(ev.Records)),
		logger.Bool("replace", ev.Replace))
	return nil
}
