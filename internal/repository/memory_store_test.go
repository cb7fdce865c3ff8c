package repository

import (
	"context"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 5, 20, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d, qty int) models.SalesRecord {
	return models.SalesRecord{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Quantity: qty, Revenue: float64(qty) * 10}
}

func TestGenerateSampleSales(t *testing.T) {
	recs := GenerateSampleSales(1, today, func(n int) int { return n - 1 })
	require.Len(t, recs, 18)

	assert.Equal(t, time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC), recs[0].Date)
	assert.Equal(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), recs[len(recs)-1].Date)
	for _, r := range recs {
		assert.Equal(t, int64(1), r.ItemID)
		assert.Equal(t, "Laptop", r.ItemName)
		assert.Equal(t, 6, r.Quantity)
		assert.InDelta(t, 6*999.99, r.Revenue, 1e-9)
	}

	other := GenerateSampleSales(42, today, func(int) int { return 0 })
	assert.Equal(t, 2, other[0].Quantity)
	assert.InDelta(t, 100.0, other[0].Revenue, 1e-9)
	assert.Empty(t, other[0].ItemName)
}

func TestMemorySalesStoreSampleIsStable(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySalesStore(WithSampleSales(7), WithSalesClock(func() time.Time { return today }))

	first, err := s.GetSalesHistory(ctx, 3)
	require.NoError(t, err)
	second, err := s.GetSalesHistory(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	for _, r := range first {
		assert.GreaterOrEqual(t, r.Quantity, 2)
		assert.LessOrEqual(t, r.Quantity, 6)
	}
}

func TestMemorySalesStoreWithoutSample(t *testing.T) {
	recs, err := NewMemorySalesStore().GetSalesHistory(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestMemorySalesStoreAppendAndReplace(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySalesStore(WithSampleSales(7), WithSalesClock(func() time.Time { return today }))

	require.NoError(t, s.AppendSales(ctx, 2, []models.SalesRecord{day(2025, 5, 20, 9)}))
	recs, err := s.GetSalesHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 19)
	assert.Equal(t, 9, recs[18].Quantity)
	assert.Equal(t, int64(2), recs[18].ItemID)

	require.NoError(t, s.ReplaceSales(ctx, 2, []models.SalesRecord{day(2025, 1, 1, 1)}))
	recs, err = s.GetSalesHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Quantity)
}

func TestMemorySalesStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySalesStore()
	require.NoError(t, s.ReplaceSales(ctx, 1, []models.SalesRecord{day(2025, 1, 1, 1)}))

	recs, _ := s.GetSalesHistory(ctx, 1)
	recs[0].Quantity = 100

	again, _ := s.GetSalesHistory(ctx, 1)
	assert.Equal(t, 1, again[0].Quantity)
}

func TestMemorySalesStoreQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySalesStore()
	require.NoError(t, s.ReplaceSales(ctx, 1, []models.SalesRecord{
		day(2025, 3, 5, 3), day(2025, 3, 1, 1), day(2025, 3, 10, 5), day(2025, 3, 3, 2),
	}))

	got, err := s.QuerySales(ctx, 1, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, 3, got[1].Quantity)

	all, err := s.QuerySales(ctx, 1, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 1, all[0].Quantity)
}

func TestMemoryInventoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryInventoryStore(SampleCatalog())

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 10)
	assert.Equal(t, "Laptop", items[0].Name)
	assert.Equal(t, "Printer", items[9].Name)

	low, err := s.LowStockItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	require.NoError(t, s.UpdateQuantity(ctx, 7, 1))
	low, err = s.LowStockItems(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Office Desk", low[0].Name)
	assert.Equal(t, 1, low[0].Deficit())

	_, err = s.GetItem(ctx, 99)
	assert.ErrorIs(t, err, domrepo.ErrItemNotFound)
	assert.ErrorIs(t, s.UpdateQuantity(ctx, 99, 1), domrepo.ErrItemNotFound)
}

func TestOverrideHistoryProvider(t *testing.T) {
	ctx := context.Background()
	base := NewMemorySalesStore()
	require.NoError(t, base.ReplaceSales(ctx, 1, []models.SalesRecord{day(2025, 1, 1, 1)}))
	p := NewOverrideHistoryProvider(base)

	recs, err := p.GetSalesHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.False(t, p.Append(1, []models.SalesRecord{day(2025, 1, 2, 2)}))

	p.Set(1, []models.SalesRecord{day(2025, 2, 1, 7), day(2025, 2, 2, 8)})
	assert.True(t, p.Has(1))
	assert.True(t, p.Append(1, []models.SalesRecord{day(2025, 2, 3, 9)}))

	recs, err = p.GetSalesHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 9, recs[2].Quantity)
	assert.Equal(t, int64(1), recs[2].ItemID)

	assert.ElementsMatch(t, []int64{1}, p.Clear())
	recs, err = p.GetSalesHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}
