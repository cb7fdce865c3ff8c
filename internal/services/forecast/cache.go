package forecast

import (
	"context"
	"errors"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/logger"
)

const cacheKeyPrefix = "forecast"

// ForecastCache memoizes next-month forecasts per item on top of a cache.Service
// and hands out per-item locks that serialize check/compute/store against updates.
type ForecastCache struct {
	store cache.Service
	ttl   time.Duration
	log   *logger.Logger

	mu    sync.Mutex
	locks map[int64]*itemLock
}

type itemLock struct {
	mu   sync.Mutex
	refs int
}

func NewForecastCache(store cache.Service, ttl time.Duration) *ForecastCache {
	return &ForecastCache{
		store: store,
		ttl:   ttl,
		locks: make(map[int64]*itemLock),
	}
}

// SetLogger sets optional logger.
func (c *ForecastCache) SetLogger(l *logger.Logger) { c.log = l }

// Lock acquires the exclusive lock of itemID and returns its release func.
func (c *ForecastCache) Lock(itemID int64) (unlock func()) {
	c.mu.Lock()
	l, ok := c.locks[itemID]
	if !ok {
		l = &itemLock{}
		c.locks[itemID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, itemID)
		}
		c.mu.Unlock()
	}
}

// Get returns the cached forecast of itemID, or nil when absent.
func (c *ForecastCache) Get(ctx context.Context, itemID int64) *models.NextMonthForecast {
	var f models.NextMonthForecast
	if err := c.store.Get(ctx, key(itemID), &f); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && c.log != nil {
			c.log.Warn("forecast cache get failed", logger.Int64("item_id", itemID), logger.Error(err))
		}
		return nil
	}
	return &f
}

func (c *ForecastCache) Put(ctx context.Context, itemID int64, f *models.NextMonthForecast) {
	if f == nil {
		return
	}
	if err := c.store.Set(ctx, key(itemID), f, c.ttl); err != nil && c.log != nil {
		c.log.Warn("forecast cache put failed", logger.Int64("item_id", itemID), logger.Error(err))
	}
}

func (c *ForecastCache) Invalidate(ctx context.Context, itemID int64) {
	if err := c.store.Delete(ctx, key(itemID)); err != nil && c.log != nil {
		c.log.Warn("forecast cache invalidate failed", logger.Int64("item_id", itemID), logger.Error(err))
	}
}

func key(itemID int64) string {
	return cache.GenerateKey(cacheKeyPrefix, itemID)
}
