package repository

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

var _ domrepo.SalesStore = (*MemorySalesStore)(nil)

// MemorySalesStore keeps sales history in process memory. In sample mode an
// item's history is generated on first access and stored from then on.
type MemorySalesStore struct {
	mu     sync.RWMutex
	sales  map[int64][]models.SalesRecord
	sample bool
	now    func() time.Time
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

type MemorySalesOption func(*MemorySalesStore)

// WithSampleSales enables synthetic history for items never written to.
func WithSampleSales(seed int64) MemorySalesOption {
	return func(s *MemorySalesStore) {
		s.sample = true
		s.rnd = rand.New(rand.NewSource(seed))
	}
}

func WithSalesClock(now func() time.Time) MemorySalesOption {
	return func(s *MemorySalesStore) { s.now = now }
}

func NewMemorySalesStore(opts ...MemorySalesOption) *MemorySalesStore {
	s := &MemorySalesStore{
		sales: make(map[int64][]models.SalesRecord),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemorySalesStore) GetSalesHistory(ctx context.Context, itemID int64) ([]models.SalesRecord, error) {
	s.mu.RLock()
	recs, ok := s.sales[itemID]
	s.mu.RUnlock()
	if ok || !s.sample {
		return cloneRecords(recs), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if recs, ok := s.sales[itemID]; ok {
		return cloneRecords(recs), nil
	}
	recs = GenerateSampleSales(itemID, s.now(), s.intn)
	s.sales[itemID] = recs
	return cloneRecords(recs), nil
}

func (s *MemorySalesStore) AppendSales(ctx context.Context, itemID int64, records []models.SalesRecord) error {
	// materialize sample history first so appended records extend it
	if _, err := s.GetSalesHistory(ctx, itemID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales[itemID] = append(s.sales[itemID], withItemID(itemID, records)...)
	return nil
}

func (s *MemorySalesStore) ReplaceSales(ctx context.Context, itemID int64, records []models.SalesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales[itemID] = withItemID(itemID, records)
	return nil
}

// QuerySales returns records within [from, to] sorted by date. Zero bounds are open.
func (s *MemorySalesStore) QuerySales(ctx context.Context, itemID int64, from, to time.Time) ([]models.SalesRecord, error) {
	recs, err := s.GetSalesHistory(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := recs[:0]
	for _, r := range recs {
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *MemorySalesStore) Health(context.Context) error { return nil }

func (s *MemorySalesStore) Close() error { return nil }

func (s *MemorySalesStore) intn(n int) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(n)
}

func cloneRecords(in []models.SalesRecord) []models.SalesRecord {
	if in == nil {
		return []models.SalesRecord{}
	}
	out := make([]models.SalesRecord, len(in))
	copy(out, in)
	return out
}

func withItemID(itemID int64, in []models.SalesRecord) []models.SalesRecord {
	out := make([]models.SalesRecord, len(in))
	for i, r := range in {
		r.ItemID = itemID
		out[i] = r
	}
	return out
}
