package models

import "time"

// DailyForecastPoint is the prediction for one day of the forecast month.
// Lower <= Predicted <= Upper always holds.
type DailyForecastPoint struct {
	Day       int       `json:"day"`
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
}

// NextMonthForecast is the day-level forecast for the calendar month after "now".
type NextMonthForecast struct {
	ItemID      int64                `json:"item_id"`
	Month       time.Time            `json:"month"`
	Points      []DailyForecastPoint `json:"points"`
	Accuracy    float64              `json:"accuracy"`
	Model       ModelType            `json:"model"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// MonthlyProjection is one month of the 12-month forward projection.
type MonthlyProjection struct {
	Month              time.Time `json:"month"`
	ForecastedQuantity int       `json:"forecasted_quantity"`
	AssumedUnitPrice   float64   `json:"assumed_unit_price"`
	ProjectedRevenue   float64   `json:"projected_revenue"`
	ProductLabel       string    `json:"product_label"`
}

// ItemDashboard bundles everything a UI needs to render one item.
// Errors lists the parts that could not be loaded, keyed by part name.
type ItemDashboard struct {
	Item       *InventoryItem      `json:"item,omitempty"`
	Forecast   *NextMonthForecast  `json:"forecast,omitempty"`
	Projection []MonthlyProjection `json:"projection,omitempty"`
	Errors     map[string]string   `json:"errors,omitempty"`
}

// ForecastReport holds next-month forecasts for the whole catalog.
type ForecastReport struct {
	Model       ModelType           `json:"model"`
	GeneratedAt time.Time           `json:"generated_at"`
	Forecasts   []NextMonthForecast `json:"forecasts"`
	// Skipped lists items without sales history.
	Skipped []int64 `json:"skipped,omitempty"`
}
