package models

// Requests for forecasting HTTP endpoints. Defined in domain for consistency and reuse.

type ItemRequest struct {
	ItemID int64 `param:"id" json:"id" validate:"required,gte=1"`
}

type ForecastRequest struct {
	ItemID int64  `param:"id" json:"id" validate:"required,gte=1"`
	Model  string `query:"model" json:"model" default:"linear"`
}

type SalesHistoryRequest struct {
	ItemID int64  `param:"id" json:"id" validate:"required,gte=1"`
	From   string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type SalesRecordInput struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Quantity  int     `json:"quantity" validate:"gte=0"`
	Revenue   float64 `json:"revenue" validate:"gte=0"`
	Remaining *int    `json:"remaining,omitempty" validate:"omitempty,gte=0"`
}

type UpdateSalesRequest struct {
	ItemID  int64              `param:"id" json:"id" validate:"required,gte=1"`
	Replace bool               `json:"replace"`
	Records []SalesRecordInput `json:"records" validate:"required,min=1,max=10000,dive"`
}

type UploadSalesRecordInput struct {
	ItemID   int64  `json:"item_id" validate:"required,gte=1"`
	ItemName string `json:"item_name"`
	SalesRecordInput
}

type UploadSalesRequest struct {
	Records []UploadSalesRecordInput `json:"records" validate:"required,min=1,max=100000,dive"`
}

type ReportRequest struct {
	Model string `query:"model" json:"model" default:"linear"`
}
