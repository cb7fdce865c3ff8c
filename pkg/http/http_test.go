package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	ID    int64  `param:"id" json:"id" validate:"required,gte=1"`
	Model string `query:"model" json:"model" default:"linear" validate:"oneof=linear forest svm"`
	Date  string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestReadAndValidateRequestAppliesDefaults(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/items/3/forecast", "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	var req sampleRequest
	errs := ReadAndValidateRequest(c, &req)
	require.Nil(t, errs)
	assert.Equal(t, int64(3), req.ID)
	assert.Equal(t, "linear", req.Model)
}

func TestReadAndValidateRequestReportsJSONFieldNames(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/items/0/forecast?date=2025-13-40", "")
	c.SetParamNames("id")
	c.SetParamValues("0")

	var req sampleRequest
	errs := ReadAndValidateRequest(c, &req)
	require.NotNil(t, errs)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Code
	}
	assert.Equal(t, "ERR_REQUIRED", fields["id"])
	assert.Equal(t, "ERR_DATETIME", fields["date"])
}

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, 31, to.Day())
	assert.Equal(t, 23, to.Hour())

	from, to, err = ParseDateRange("", "")
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())

	_, _, err = ParseDateRange("2025-02-01", "2025-01-01")
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)

	_, _, err = ParseDateRange("yesterday", "")
	assert.Error(t, err)
}

func TestAppErrorResponse(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")
	require.NoError(t, AppErrorResponse(c, Errorf(http.StatusNotFound, "item %d not found", 9)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Status)

	c, rec = newContext(http.MethodGet, "/", "")
	require.NoError(t, AppErrorResponse(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAppErrorWrap(t *testing.T) {
	cause := errors.New("dial tcp")
	err := UnavailableError("sales store unavailable").WithError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp")
	assert.Equal(t, "ERR_UNAVAILABLE", err.Code)
}

var errMissing = errors.New("item not found")

func TestErrorMapResolve(t *testing.T) {
	m := ErrorMap{}.
		On(errMissing, http.StatusNotFound, "").
		On(context.Canceled, http.StatusServiceUnavailable, "request cancelled")

	appErr, ok := m.Resolve(fmt.Errorf("lookup 7: %w", errMissing))
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "ERR_NOT_FOUND", appErr.Code)
	assert.Equal(t, "lookup 7: item not found", appErr.Message)

	appErr, ok = m.Resolve(context.Canceled)
	require.True(t, ok)
	assert.Equal(t, "request cancelled", appErr.Message)

	direct := BadRequestError("bad")
	appErr, ok = m.Resolve(direct)
	require.True(t, ok)
	assert.Same(t, direct, appErr)

	_, ok = m.Resolve(errors.New("boom"))
	assert.False(t, ok)
}
