package repository

import (
	"context"
	"sync"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

var _ domrepo.HistoryOverrides = (*OverrideHistoryProvider)(nil)

// OverrideHistoryProvider serves uploaded histories ahead of the persisted store.
type OverrideHistoryProvider struct {
	mu        sync.RWMutex
	overrides map[int64][]models.SalesRecord
	fallback  domrepo.SalesHistoryProvider
}

func NewOverrideHistoryProvider(fallback domrepo.SalesHistoryProvider) *OverrideHistoryProvider {
	return &OverrideHistoryProvider{
		overrides: make(map[int64][]models.SalesRecord),
		fallback:  fallback,
	}
}

func (p *OverrideHistoryProvider) GetSalesHistory(ctx context.Context, itemID int64) ([]models.SalesRecord, error) {
	p.mu.RLock()
	recs, ok := p.overrides[itemID]
	p.mu.RUnlock()
	if ok {
		return cloneRecords(recs), nil
	}
	return p.fallback.GetSalesHistory(ctx, itemID)
}

// Set replaces the override of itemID.
func (p *OverrideHistoryProvider) Set(itemID int64, records []models.SalesRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrides[itemID] = withItemID(itemID, records)
}

// Append extends an existing override. It reports false when itemID has none.
func (p *OverrideHistoryProvider) Append(itemID int64, records []models.SalesRecord) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur, ok := p.overrides[itemID]
	if !ok {
		return false
	}
	p.overrides[itemID] = append(cur, withItemID(itemID, records)...)
	return true
}

// Has reports whether itemID is overridden.
func (p *OverrideHistoryProvider) Has(itemID int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.overrides[itemID]
	return ok
}

// Clear drops every override and returns the item IDs that had one.
func (p *OverrideHistoryProvider) Clear() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]int64, 0, len(p.overrides))
	for id := range p.overrides {
		ids = append(ids, id)
	}
	p.overrides = make(map[int64][]models.SalesRecord)
	return ids
}
