package models

import "time"

// SalesRecord is a single sales observation for a catalog item.
// Records are values; callers never mutate a record after creating it.
type SalesRecord struct {
	ItemID   int64     `json:"item_id"`
	ItemName string    `json:"item_name,omitempty"`
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
	Revenue  float64   `json:"revenue"`
	// Remaining is the stock level left after the sale when the source reports it.
	Remaining *int `json:"remaining,omitempty"`
}

// UnitPrice returns revenue per unit. ok is false for zero-quantity records.
func (r SalesRecord) UnitPrice() (price float64, ok bool) {
	if r.Quantity <= 0 {
		return 0, false
	}
	return r.Revenue / float64(r.Quantity), true
}

// SalesUpdatedEvent is published when new sales data is recorded for an item.
type SalesUpdatedEvent struct {
	EventID    string        `json:"event_id"`
	ItemID     int64         `json:"item_id"`
	Records    []SalesRecord `json:"records"`
	Replace    bool          `json:"replace"`
	OccurredAt time.Time     `json:"occurred_at"`
}
