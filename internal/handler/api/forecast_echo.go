package api

import (
	"context"
	"net/http"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler serves the inventory, sales and forecast API.
type ForecastEchoHandler struct {
	logger    *xlogger.Logger
	forecasts *usecase.ForecastUseCase
	ingestor  *usecase.SalesIngestor
}

func NewForecastEchoHandler(logger *xlogger.Logger, forecasts *usecase.ForecastUseCase, ingestor *usecase.SalesIngestor) *ForecastEchoHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &ForecastEchoHandler{logger: logger, forecasts: forecasts, ingestor: ingestor}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/items", h.ListItems)
	g.GET("/items/alerts", h.LowStock)
	g.GET("/items/:id", h.GetItem)
	g.GET("/items/:id/sales", h.SalesHistory)
	g.POST("/items/:id/sales", h.UpdateSales)
	g.GET("/items/:id/forecast", h.Forecast)
	g.GET("/items/:id/projection", h.Projection)
	g.GET("/items/:id/dashboard", h.Dashboard)
	g.GET("/forecasts/report", h.Report)
	g.POST("/sales/upload", h.Upload)
}

func (h *ForecastEchoHandler) ListItems(c echo.Context) error {
	items, err := h.forecasts.ListItems(c.Request().Context())
	if err != nil {
		return h.fail(c, "list items", err)
	}
	return xhttp.SuccessResponse(c, toInventoryResponse(items))
}

func (h *ForecastEchoHandler) LowStock(c echo.Context) error {
	alerts, err := h.forecasts.LowStock(c.Request().Context())
	if err != nil {
		return h.fail(c, "low stock", err)
	}
	rows := toAlertResponses(alerts)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ForecastEchoHandler) GetItem(c echo.Context) error {
	req := &models.ItemRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	item, err := h.forecasts.GetItem(c.Request().Context(), req.ItemID)
	if err != nil {
		return h.fail(c, "get item", err)
	}
	return xhttp.SuccessResponse(c, toItemResponse(*item))
}

func (h *ForecastEchoHandler) SalesHistory(c echo.Context) error {
	req := &models.SalesHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, to, err := xhttp.ParseDateRange(req.From, req.To)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	recs, err := h.forecasts.SalesHistory(c.Request().Context(), req.ItemID, from, to)
	if err != nil {
		return h.fail(c, "sales history", err)
	}
	rows := toSalesResponses(recs)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ForecastEchoHandler) UpdateSales(c echo.Context) error {
	req := &models.UpdateSalesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	records := make([]models.SalesRecord, 0, len(req.Records))
	for _, in := range req.Records {
		r, err := toSalesRecord(req.ItemID, "", in)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid date %q", in.Date))
		}
		records = append(records, r)
	}

	if err := h.ingestor.UpdateSalesData(c.Request().Context(), req.ItemID, records, req.Replace); err != nil {
		return h.fail(c, "update sales", err)
	}
	resp := UpdateSalesResponse{
		ItemID:  req.ItemID,
		Records: len(records),
		Replace: req.Replace,
		Backend: h.ingestor.Backend(),
	}
	if resp.Backend == usecase.BackendKafka {
		return xhttp.AcceptedResponse(c, resp)
	}
	return xhttp.SuccessResponse(c, resp)
}

// Forecast answers 200 with no data when the item has no sales history.
func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := h.forecasts.NextMonth(c.Request().Context(), req.ItemID, models.NormalizeModelType(req.Model))
	if err != nil {
		return h.fail(c, "forecast", err)
	}
	if f == nil {
		return xhttp.SuccessResponse(c, nil)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, f)
}

func (h *ForecastEchoHandler) Projection(c echo.Context) error {
	req := &models.ItemRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	proj, err := h.forecasts.Projection(c.Request().Context(), req.ItemID)
	if err != nil {
		return h.fail(c, "projection", err)
	}
	return xhttp.SuccessResponse(c, toProjectionResponse(req.ItemID, proj))
}

func (h *ForecastEchoHandler) Dashboard(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	d, err := h.forecasts.Dashboard(c.Request().Context(), req.ItemID, models.NormalizeModelType(req.Model))
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	return xhttp.SuccessResponse(c, toDashboardResponse(req.ItemID, d))
}

func (h *ForecastEchoHandler) Report(c echo.Context) error {
	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, err := h.forecasts.Report(c.Request().Context(), models.NormalizeModelType(req.Model))
	if err != nil {
		return h.fail(c, "report", err)
	}
	return xhttp.SuccessResponse(c, rep)
}

func (h *ForecastEchoHandler) Upload(c echo.Context) error {
	req := &models.UploadSalesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	records := make([]models.SalesRecord, 0, len(req.Records))
	for _, in := range req.Records {
		r, err := toSalesRecord(in.ItemID, in.ItemName, in.SalesRecordInput)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid date %q", in.Date))
		}
		records = append(records, r)
	}

	ids, err := h.ingestor.Upload(c.Request().Context(), records)
	if err != nil {
		return h.fail(c, "upload", err)
	}
	return xhttp.SuccessResponse(c, UploadResponse{Items: ids, Records: len(records)})
}

var forecastErrors = xhttp.ErrorMap{}.
	On(domrepo.ErrItemNotFound, http.StatusNotFound, "").
	On(domrepo.ErrInvalidSales, http.StatusBadRequest, "").
	On(context.Canceled, http.StatusServiceUnavailable, "request cancelled")

// fail maps domain errors to HTTP errors and logs unexpected ones.
func (h *ForecastEchoHandler) fail(c echo.Context, op string, err error) error {
	if appErr, ok := forecastErrors.Resolve(err); ok {
		return xhttp.AppErrorResponse(c, appErr)
	}
	h.logger.Error(op+" failed",
		xlogger.String("route", c.Path()),
		xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError(op+" failed").WithError(err))
}

var _ xhttp.Handler = (*ForecastEchoHandler)(nil)
