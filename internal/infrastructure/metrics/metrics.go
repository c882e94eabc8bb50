// Package metrics recolecta y expone métricas Prometheus del taller.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-api/internal/domain"
)

// Resultados usados como etiqueta.
const (
	resultOK                = "ok"
	resultError             = "error"
	resultEmptyCart         = "empty_cart"
	resultInsufficientStock = "insufficient_stock"
)

// Collector implementa appointment.SweepRecorder y cart.CheckoutRecorder sobre Prometheus.
type Collector struct {
	sweeps          *prometheus.CounterVec
	expired         prometheus.Counter
	sweepDuration   prometheus.Histogram
	checkouts       *prometheus.CounterVec
	checkoutRevenue prometheus.Counter
	checkoutLatency prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// NewCollector crea el collector y registra sus métricas en reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taller_expiration_sweeps_total",
			Help: "Barridos de expiración ejecutados, por resultado",
		}, []string{"result"}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taller_appointments_expired_total",
			Help: "Citas marcadas como expired por el barrido",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taller_expiration_sweep_duration_seconds",
			Help:    "Duración de cada barrido de expiración",
			Buckets: prometheus.DefBuckets,
		}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taller_checkouts_total",
			Help: "Intentos de compra, por resultado",
		}, []string{"result"}),
		checkoutRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taller_checkout_revenue_total",
			Help: "Suma de los totales de compras exitosas",
		}),
		checkoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taller_checkout_duration_seconds",
			Help:    "Duración de la transacción de compra",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taller_http_requests_total",
			Help: "Peticiones HTTP por método, ruta y código",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taller_http_request_duration_seconds",
			Help:    "Latencia de las peticiones HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.sweeps,
		c.expired,
		c.sweepDuration,
		c.checkouts,
		c.checkoutRevenue,
		c.checkoutLatency,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

// RecordSweep registra un barrido de expiración.
func (c *Collector) RecordSweep(expired int64, duration time.Duration, err error) {
	c.sweepDuration.Observe(duration.Seconds())
	if err != nil {
		c.sweeps.WithLabelValues(resultError).Inc()
		return
	}
	c.sweeps.WithLabelValues(resultOK).Inc()
	c.expired.Add(float64(expired))
}

// RecordCheckout registra un intento de compra.
func (c *Collector) RecordCheckout(total decimal.Decimal, duration time.Duration, err error) {
	c.checkoutLatency.Observe(duration.Seconds())
	switch {
	case err == nil:
		c.checkouts.WithLabelValues(resultOK).Inc()
		c.checkoutRevenue.Add(total.InexactFloat64())
	case errors.Is(err, domain.ErrEmptyCart):
		c.checkouts.WithLabelValues(resultEmptyCart).Inc()
	case errors.Is(err, domain.ErrInsufficientStock):
		c.checkouts.WithLabelValues(resultInsufficientStock).Inc()
	default:
		c.checkouts.WithLabelValues(resultError).Inc()
	}
}

// RecordHTTP registra una petición atendida. route es el patrón (/api/products/:id), no la URL.
func (c *Collector) RecordHTTP(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler devuelve el handler de scrape para Prometheus.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
