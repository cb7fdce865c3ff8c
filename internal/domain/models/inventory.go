package models

// InventoryItem is a catalog entry with its current stock level.
type InventoryItem struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	ReorderLevel int     `json:"reorder_level"`
	Category     string  `json:"category"`
}

// IsLowStock reports whether the item is at or below its reorder level.
func (i InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

// Deficit is the number of units missing to reach the reorder level.
func (i InventoryItem) Deficit() int {
	if d := i.ReorderLevel - i.Quantity; d > 0 {
		return d
	}
	return 0
}

// StockAlert flags an item that needs replenishment.
type StockAlert struct {
	Item    InventoryItem `json:"item"`
	Deficit int           `json:"deficit"`
}
