package api

import (
	"StockPulse/internal/domain/models"
	"StockPulse/pkg/util"

	"github.com/shopspring/decimal"
)

// money rounds to cents.
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

type ItemResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	Price        decimal.Decimal `json:"price"`
	StockValue   decimal.Decimal `json:"stock_value"`
	LowStock     bool            `json:"low_stock"`
}

func toItemResponse(it models.InventoryItem) ItemResponse {
	price := money(it.Price)
	return ItemResponse{
		ID:           it.ID,
		Name:         it.Name,
		Category:     it.Category,
		Quantity:     it.Quantity,
		ReorderLevel: it.ReorderLevel,
		Price:        price,
		StockValue:   price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		LowStock:     it.IsLowStock(),
	}
}

type InventoryResponse struct {
	Items      []ItemResponse  `json:"items"`
	TotalValue decimal.Decimal `json:"total_value"`
}

func toInventoryResponse(items []models.InventoryItem) InventoryResponse {
	out := InventoryResponse{Items: make([]ItemResponse, 0, len(items)), TotalValue: decimal.Zero}
	for _, it := range items {
		r := toItemResponse(it)
		out.TotalValue = out.TotalValue.Add(r.StockValue)
		out.Items = append(out.Items, r)
	}
	return out
}

type AlertResponse struct {
	Item    ItemResponse `json:"item"`
	Deficit int          `json:"deficit"`
	// RestockCost prices the deficit at the current unit price.
	RestockCost decimal.Decimal `json:"restock_cost"`
}

func toAlertResponses(alerts []models.StockAlert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		item := toItemResponse(a.Item)
		out = append(out, AlertResponse{
			Item:        item,
			Deficit:     a.Deficit,
			RestockCost: item.Price.Mul(decimal.NewFromInt(int64(a.Deficit))),
		})
	}
	return out
}

type ProjectionMonth struct {
	Month              string          `json:"month"`
	ForecastedQuantity int             `json:"forecasted_quantity"`
	AssumedUnitPrice   decimal.Decimal `json:"assumed_unit_price"`
	ProjectedRevenue   decimal.Decimal `json:"projected_revenue"`
	ProductLabel       string          `json:"product_label"`
}

type ProjectionResponse struct {
	ItemID        int64             `json:"item_id"`
	Months        []ProjectionMonth `json:"months"`
	TotalQuantity int               `json:"total_quantity"`
	TotalRevenue  decimal.Decimal   `json:"total_revenue"`
}

func toProjectionResponse(itemID int64, proj []models.MonthlyProjection) ProjectionResponse {
	out := ProjectionResponse{ItemID: itemID, Months: make([]ProjectionMonth, 0, len(proj)), TotalRevenue: decimal.Zero}
	for _, p := range proj {
		rev := money(p.ProjectedRevenue)
		out.Months = append(out.Months, ProjectionMonth{
			Month:              p.Month.Format("2006-01"),
			ForecastedQuantity: p.ForecastedQuantity,
			AssumedUnitPrice:   money(p.AssumedUnitPrice),
			ProjectedRevenue:   rev,
			ProductLabel:       p.ProductLabel,
		})
		out.TotalQuantity += p.ForecastedQuantity
		out.TotalRevenue = out.TotalRevenue.Add(rev)
	}
	return out
}

type DashboardResponse struct {
	Item       *ItemResponse             `json:"item,omitempty"`
	Forecast   *models.NextMonthForecast `json:"forecast,omitempty"`
	Projection *ProjectionResponse       `json:"projection,omitempty"`
	Errors     map[string]string         `json:"errors,omitempty"`
}

func toDashboardResponse(itemID int64, d *models.ItemDashboard) DashboardResponse {
	out := DashboardResponse{Forecast: d.Forecast, Errors: d.Errors}
	if d.Item != nil {
		it := toItemResponse(*d.Item)
		out.Item = &it
	}
	if d.Projection != nil {
		p := toProjectionResponse(itemID, d.Projection)
		out.Projection = &p
	}
	return out
}

type SalesRecordResponse struct {
	Date      string          `json:"date"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
	Remaining *int            `json:"remaining,omitempty"`
}

func toSalesResponses(recs []models.SalesRecord) []SalesRecordResponse {
	out := make([]SalesRecordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, SalesRecordResponse{
			Date:      r.Date.Format(util.DateLayout),
			Quantity:  r.Quantity,
			Revenue:   money(r.Revenue),
			Remaining: r.Remaining,
		})
	}
	return out
}

type UpdateSalesResponse struct {
	ItemID  int64  `json:"item_id"`
	Records int    `json:"records"`
	Replace bool   `json:"replace"`
	Backend string `json:"backend"`
}

type UploadResponse struct {
	Items   []int64 `json:"items"`
	Records int     `json:"records"`
}

// toSalesRecord converts validated input; the date was checked by the
// datetime validator.
func toSalesRecord(itemID int64, name string, in models.SalesRecordInput) (models.SalesRecord, error) {
	d, err := util.ParseDate(in.Date)
	if err != nil {
		return models.SalesRecord{}, err
	}
	return models.SalesRecord{
		ItemID:    itemID,
		ItemName:  name,
		Date:      d,
		Quantity:  in.Quantity,
		Revenue:   in.Revenue,
		Remaining: in.Remaining,
	}, nil
}
