package observability

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/rosterly/internal/metrics"
)

func newEcho(buf *bytes.Buffer) *echo.Echo {
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	e := echo.New()
	e.Use(RequestLogger(logger))
	e.Use(HTTPMetrics())
	e.GET("/items/:id", func(c echo.Context) error {
		Logger(c.Request().Context()).Info("handling")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/boom", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "no")
	})
	return e
}

func TestRequestLogger_AssignsAndPropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := newEcho(&buf)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(echo.HeaderXRequestID)
	assert.NotEmpty(t, id)
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"request_id":"`+id+`"`)), buf.String())

	req := httptest.NewRequest(http.MethodGet, "/items/2", nil)
	req.Header.Set(echo.HeaderXRequestID, "caller-supplied")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "caller-supplied", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLogger_LogsFinalStatus(t *testing.T) {
	var buf bytes.Buffer
	e := newEcho(&buf)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"status":418`)
}

func TestHTTPMetrics_LabelsByRoute(t *testing.T) {
	e := newEcho(&bytes.Buffer{})
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "200")
	before := value(t, counter)

	for _, path := range []string{"/items/a", "/items/b"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, before+2, value(t, counter))
}

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestLogger_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), Logger(context.Background()))
}
