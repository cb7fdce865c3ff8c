package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/repository"
	"StockPulse/internal/services/forecast"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type nopPublisher struct{ n int }

func (p *nopPublisher) PublishSalesUpdate(_ context.Context, _ *models.SalesUpdatedEvent) error {
	p.n++
	return nil
}

func (p *nopPublisher) Close() error { return nil }

func newTestServer(t *testing.T, backend string) (*echo.Echo, *nopPublisher) {
	t.Helper()
	mem, err := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	now := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	engine := forecast.NewEngine(forecast.NewForecastCache(mem, time.Hour),
		forecast.WithClock(func() time.Time { return now }),
		forecast.WithRand(forecast.NewRand(3)))
	sales := repository.NewMemorySalesStore()
	inventory := repository.NewMemoryInventoryStore(repository.SampleCatalog())
	overrides := repository.NewOverrideHistoryProvider(sales)
	pub := &nopPublisher{}

	ingestor := usecase.NewSalesIngestor(sales, inventory, overrides, pub, engine, nil, backend)
	forecasts := usecase.NewForecastUseCase(engine, overrides, sales, inventory, nil, 2)

	e := echo.New()
	NewForecastEchoHandler(nil, forecasts, ingestor).RegisterRoutes(e)
	return e, pub
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

const salesBody = `{"records":[
	{"date":"2024-12-01","quantity":4,"revenue":40},
	{"date":"2024-12-05","quantity":6,"revenue":60},
	{"date":"2024-12-09","quantity":5,"revenue":50,"remaining":3}
]}`

func TestListItems(t *testing.T) {
	e, _ := newTestServer(t, usecase.BackendDirect)
	rec, env := do(t, e, http.MethodGet, "/api/items", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var inv InventoryResponse
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Len(t, inv.Items, 10)
	assert.True(t, inv.TotalValue.IsPositive())
}

func TestGetItemErrors(t *testing.T) {
	e, _ := newTestServer(t, usecase.BackendDirect)

	rec, _ := do(t, e, http.MethodGet, "/api/items/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastWithoutHistory(t *testing.T) {
	e, _ := newTestServer(t, usecase.BackendDirect)
	rec, env := do(t, e, http.MethodGet, "/api/items/2/forecast", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.Data)
}

func TestUpdateSalesThenForecast(t *testing.T) {
	e, pub := newTestServer(t, usecase.BackendDirect)

	rec, env := do(t, e, http.MethodPost, "/api/items/1/sales", salesBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var upd UpdateSalesResponse
	require.NoError(t, json.Unmarshal(env.Data, &upd))
	assert.Equal(t, 3, upd.Records)
	assert.Equal(t, usecase.BackendDirect, upd.Backend)
	assert.Zero(t, pub.n)

	rec, env = do(t, e, http.MethodGet, "/api/items/1/forecast?model=svm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var f models.NextMonthForecast
	require.NoError(t, json.Unmarshal(env.Data, &f))
	assert.Equal(t, models.ModelSVM, f.Model)
	assert.Len(t, f.Points, 28)

	rec, env = do(t, e, http.MethodGet, "/api/items/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var item ItemResponse
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.LowStock)

	rec, env = do(t, e, http.MethodGet, "/api/items/1/sales?from=2024-12-05&to=2024-12-09", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Rows  []SalesRecordResponse `json:"rows"`
		Total int64                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, "2024-12-05", list.Rows[0].Date)

	rec, env = do(t, e, http.MethodGet, "/api/items/1/projection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var proj ProjectionResponse
	require.NoError(t, json.Unmarshal(env.Data, &proj))
	assert.Len(t, proj.Months, 12)
}

func TestUpdateSalesValidation(t *testing.T) {
	e, _ := newTestServer(t, usecase.BackendDirect)

	rec, _ := do(t, e, http.MethodPost, "/api/items/1/sales", `{"records":[{"date":"12/01/2024","quantity":1,"revenue":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodPost, "/api/items/1/sales", `{"records":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodPost, "/api/items/1/sales", `{"records":[{"date":"2024-12-01","quantity":-1,"revenue":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/api/items/1/sales?from=2024-12-09&to=2024-12-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSalesKafkaAccepted(t *testing.T) {
	e, pub := newTestServer(t, usecase.BackendKafka)
	rec, env := do(t, e, http.MethodPost, "/api/items/1/sales", salesBody)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusAccepted, env.Status)
	assert.Equal(t, 1, pub.n)
}

func TestUploadAndReport(t *testing.T) {
	e, _ := newTestServer(t, usecase.BackendDirect)
	body := `{"records":[
		{"item_id":3,"item_name":"Keyboard","date":"2024-12-01","quantity":2,"revenue":100},
		{"item_id":1,"item_name":"Laptop","date":"2024-12-02","quantity":1,"revenue":1000},
		{"item_id":3,"item_name":"Keyboard","date":"2024-12-03","quantity":3,"revenue":150}
	]}`
	rec, env := do(t, e, http.MethodPost, "/api/sales/upload", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var up UploadResponse
	require.NoError(t, json.Unmarshal(env.Data, &up))
	assert.Equal(t, []int64{1, 3}, up.Items)
	assert.Equal(t, 3, up.Records)

	rec, env = do(t, e, http.MethodGet, "/api/forecasts/report?model=forest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep models.ForecastReport
	require.NoError(t, json.Unmarshal(env.Data, &rep))
	assert.Equal(t, models.ModelForest, rep.Model)
	require.Len(t, rep.Forecasts, 2)
	assert.Len(t, rep.Skipped, 8)
}

func TestLowStockAndDashboard(t *testing.T) {
	e, _ := newTestServer(t, usecase.BackendDirect)
	_, _ = do(t, e, http.MethodPost, "/api/items/1/sales", salesBody)

	rec, env := do(t, e, http.MethodGet, "/api/items/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Rows  []AlertResponse `json:"rows"`
		Total int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, 2, list.Rows[0].Deficit)
	assert.Equal(t, "2000", list.Rows[0].RestockCost.StringFixed(0))

	rec, env = do(t, e, http.MethodGet, "/api/items/1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var d DashboardResponse
	require.NoError(t, json.Unmarshal(env.Data, &d))
	require.NotNil(t, d.Item)
	require.NotNil(t, d.Forecast)
	require.NotNil(t, d.Projection)
	assert.Empty(t, d.Errors)
}
