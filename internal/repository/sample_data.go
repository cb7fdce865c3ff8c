package repository

import (
	"time"

	"StockPulse/internal/domain/models"
)

// SampleCatalog is the demo inventory served in sample data mode.
func SampleCatalog() []models.InventoryItem {
	return []models.InventoryItem{
		{ID: 1, Name: "Laptop", Quantity: 15, Price: 999.99, ReorderLevel: 5, Category: "Electronics"},
		{ID: 2, Name: "Mouse", Quantity: 50, Price: 29.99, ReorderLevel: 10, Category: "Electronics"},
		{ID: 3, Name: "Keyboard", Quantity: 30, Price: 49.99, ReorderLevel: 8, Category: "Electronics"},
		{ID: 4, Name: "Monitor", Quantity: 20, Price: 199.99, ReorderLevel: 5, Category: "Electronics"},
		{ID: 5, Name: "Headphones", Quantity: 25, Price: 79.99, ReorderLevel: 7, Category: "Electronics"},
		{ID: 6, Name: "Desk Chair", Quantity: 8, Price: 149.99, ReorderLevel: 3, Category: "Furniture"},
		{ID: 7, Name: "Office Desk", Quantity: 5, Price: 249.99, ReorderLevel: 2, Category: "Furniture"},
		{ID: 8, Name: "Smartphone", Quantity: 12, Price: 699.99, ReorderLevel: 4, Category: "Electronics"},
		{ID: 9, Name: "Tablet", Quantity: 10, Price: 399.99, ReorderLevel: 3, Category: "Electronics"},
		{ID: 10, Name: "Printer", Quantity: 6, Price: 299.99, ReorderLevel: 2, Category: "Electronics"},
	}
}

const (
	sampleHistoryDays = 90
	sampleStepDays    = 5
	sampleMinQty      = 2
	sampleQtySpan     = 5
)

func sampleUnitPrice(itemID int64) float64 {
	switch itemID {
	case 1:
		return 999.99
	case 2:
		return 29.99
	case 3:
		return 49.99
	case 4:
		return 199.99
	default:
		return 50.0
	}
}

func sampleItemName(itemID int64) string {
	for _, it := range SampleCatalog() {
		if it.ID == itemID {
			return it.Name
		}
	}
	return ""
}

// GenerateSampleSales builds a synthetic history: one sale every 5 days over
// the 90 days before today, 2..6 units each. intn(n) must return [0, n).
func GenerateSampleSales(itemID int64, today time.Time, intn func(n int) int) []models.SalesRecord {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	price := sampleUnitPrice(itemID)
	name := sampleItemName(itemID)

	out := make([]models.SalesRecord, 0, sampleHistoryDays/sampleStepDays)
	for d := sampleHistoryDays; d > 0; d -= sampleStepDays {
		qty := sampleMinQty + intn(sampleQtySpan)
		out = append(out, models.SalesRecord{
			ItemID:   itemID,
			ItemName: name,
			Date:     today.AddDate(0, 0, -d),
			Quantity: qty,
			Revenue:  float64(qty) * price,
		})
	}
	return out
}
