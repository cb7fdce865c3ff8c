package usecase

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/queue"
)

const WarmJobType = "forecast.warm"

// WarmRequest is the payload of a warm-up message.
type WarmRequest struct {
	ItemID int64            `json:"item_id"`
	Model  models.ModelType `json:"model"`
}

// ForecastUpdate is pushed to live subscribers after a forecast refresh.
type ForecastUpdate struct {
	Type     string                    `json:"type"`
	ItemID   int64                     `json:"item_id"`
	Forecast *models.NextMonthForecast `json:"forecast"`
}

// Broadcaster fans a message out to connected clients.
type Broadcaster interface {
	Broadcast(msg interface{})
}

var _ queue.Job = (*ForecastWarmJob)(nil)

// ForecastWarmJob recomputes the forecast of one item so the next request
// hits a warm cache, then pushes the result to live subscribers. A short
// lock in the shared cache keeps replicas from warming the same item twice.
type ForecastWarmJob struct {
	forecasts *ForecastUseCase
	locks     cache.Service
	hub       Broadcaster
	lockTTL   time.Duration
	log       *logger.Logger
}

func NewForecastWarmJob(forecasts *ForecastUseCase, locks cache.Service, hub Broadcaster) *ForecastWarmJob {
	return &ForecastWarmJob{
		forecasts: forecasts,
		locks:     locks,
		hub:       hub,
		lockTTL:   30 * time.Second,
		log:       logger.NewNop(),
	}
}

// SetLogger sets optional logger.
func (j *ForecastWarmJob) SetLogger(l *logger.Logger) {
	if l != nil {
		j.log = l
	}
}

func (j *ForecastWarmJob) Name() string { return "ForecastWarmJob" }
func (j *ForecastWarmJob) Type() string { return WarmJobType }

func (j *ForecastWarmJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[WarmRequest](payload)
	if err != nil {
		return err
	}
	if req.ItemID <= 0 {
		return fmt.Errorf("warm: invalid item id %d", req.ItemID)
	}

	if j.locks != nil {
		key := cache.GenerateKey("warm", req.ItemID)
		ok, err := j.locks.TryLock(ctx, key, j.lockTTL)
		if err != nil {
			return fmt.Errorf("warm lock: %w", err)
		}
		if !ok {
			j.log.Debug("warm skipped, already running", logger.Int64("item_id", req.ItemID))
			return nil
		}
		defer func() {
			if err := j.locks.Unlock(context.Background(), key); err != nil {
				j.log.Warn("warm unlock failed", logger.Int64("item_id", req.ItemID), logger.Error(err))
			}
		}()
	}

	f, err := j.forecasts.NextMonth(ctx, req.ItemID, req.Model)
	if err != nil {
		return err
	}
	if f == nil {
		return nil
	}
	if j.hub != nil {
		j.hub.Broadcast(ForecastUpdate{Type: "forecast", ItemID: req.ItemID, Forecast: f})
	}
	return nil
}

// WarmScheduler periodically enqueues a warm-up message for every catalog
// item.
type WarmScheduler struct {
	forecasts *ForecastUseCase
	pub       queue.Publisher
	model     models.ModelType
	interval  time.Duration
	log       *logger.Logger
}

func NewWarmScheduler(forecasts *ForecastUseCase, pub queue.Publisher, model models.ModelType, interval time.Duration) *WarmScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &WarmScheduler{
		forecasts: forecasts,
		pub:       pub,
		model:     models.NormalizeModelType(string(model)),
		interval:  interval,
		log:       logger.NewNop(),
	}
}

// SetLogger sets optional logger.
func (s *WarmScheduler) SetLogger(l *logger.Logger) {
	if l != nil {
		s.log = l
	}
}

// Model is the model warmed on every round.
func (s *WarmScheduler) Model() models.ModelType { return s.model }

// Run enqueues one round immediately and then one per interval until ctx
// is done.
func (s *WarmScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if n, err := s.EnqueueAll(ctx); err != nil {
			s.log.Error("warm round failed", logger.Error(err))
		} else {
			s.log.Debug("warm round enqueued", logger.Int("items", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// EnqueueAll publishes one warm request per catalog item and returns how
// many were enqueued.
func (s *WarmScheduler) EnqueueAll(ctx context.Context) (int, error) {
	items, err := s.forecasts.ListItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}
	n := 0
	for _, it := range items {
		if err := s.pub.PublishMessage(ctx, WarmJobType, WarmRequest{ItemID: it.ID, Model: s.model}); err != nil {
			return n, fmt.Errorf("enqueue warm item %d: %w", it.ID, err)
		}
		n++
	}
	return n, nil
}
