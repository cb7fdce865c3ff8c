package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

var _ domrepo.InventoryStore = (*MemoryInventoryStore)(nil)

// MemoryInventoryStore is an in-process catalog.
type MemoryInventoryStore struct {
	mu    sync.RWMutex
	items map[int64]models.InventoryItem
}

func NewMemoryInventoryStore(items []models.InventoryItem) *MemoryInventoryStore {
	s := &MemoryInventoryStore{items: make(map[int64]models.InventoryItem, len(items))}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *MemoryInventoryStore) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.InventoryItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryInventoryStore) GetItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, domrepo.ErrItemNotFound)
	}
	return &it, nil
}

func (s *MemoryInventoryStore) LowStockItems(ctx context.Context) ([]models.InventoryItem, error) {
	all, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.InventoryItem, 0)
	for _, it := range all {
		if it.IsLowStock() {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryInventoryStore) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return fmt.Errorf("item %d: %w", id, domrepo.ErrItemNotFound)
	}
	it.Quantity = quantity
	s.items[id] = it
	return nil
}

func (s *MemoryInventoryStore) Health(context.Context) error { return nil }

func (s *MemoryInventoryStore) Close() error { return nil }
