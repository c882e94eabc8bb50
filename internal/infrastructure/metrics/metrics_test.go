package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/internal/domain"
)

func TestRecordSweep(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordSweep(3, time.Millisecond, nil)
	c.RecordSweep(0, time.Millisecond, nil)
	c.RecordSweep(0, time.Millisecond, errors.New("db caída"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.sweeps.WithLabelValues(resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sweeps.WithLabelValues(resultError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.expired))
}

func TestRecordCheckout_ClasificaErrores(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordCheckout(decimal.NewFromInt(25), time.Millisecond, nil)
	c.RecordCheckout(decimal.Zero, time.Millisecond, domain.ErrEmptyCart)
	c.RecordCheckout(decimal.Zero, time.Millisecond, fmt.Errorf("%w de Bujía", domain.ErrInsufficientStock))
	c.RecordCheckout(decimal.Zero, time.Millisecond, errors.New("tx"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.checkouts.WithLabelValues(resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.checkouts.WithLabelValues(resultEmptyCart)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.checkouts.WithLabelValues(resultInsufficientStock)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.checkouts.WithLabelValues(resultError)))
	assert.Equal(t, 25.0, testutil.ToFloat64(c.checkoutRevenue))
}

func TestHandler_ExponeMetricas(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTP(http.MethodGet, "/api/products", http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `taller_http_requests_total{method="GET",route="/api/products",status="200"} 1`)
}
