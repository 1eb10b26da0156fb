// Package metrics holds the Prometheus instruments for the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the instruments. Create it once with New and pass it down.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
	PanicsTotal     prometheus.Counter
	DonationsTotal  *prometheus.CounterVec
	RateCacheHits   *prometheus.CounterVec
}

// New registers all instruments with reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "charity_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charity_http_errors_total",
			Help: "Failure responses by error code.",
		}, []string{"code"}),

		PanicsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "charity_http_panics_total",
			Help: "Handler panics recovered by the error wrapper.",
		}),

		DonationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charity_donations_total",
			Help: "Accepted donations by currency.",
		}, []string{"currency"}),

		RateCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charity_currency_rate_cache_total",
			Help: "Currency rate lookups by cache result (hit or miss).",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.RequestDuration,
		m.ErrorsTotal,
		m.PanicsTotal,
		m.DonationsTotal,
		m.RateCacheHits,
	)

	return m
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, statusLabel(status)).Observe(took.Seconds())
}

// ObserveError counts one failure response.
func (m *Metrics) ObserveError(code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(code).Inc()
}

// ObservePanic counts one recovered panic.
func (m *Metrics) ObservePanic() {
	if m == nil {
		return
	}
	m.PanicsTotal.Inc()
}

// ObserveDonation counts one accepted donation.
func (m *Metrics) ObserveDonation(currency string) {
	if m == nil {
		return
	}
	m.DonationsTotal.WithLabelValues(currency).Inc()
}

// ObserveRateLookup counts a currency cache hit or miss.
func (m *Metrics) ObserveRateLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.RateCacheHits.WithLabelValues(result).Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
