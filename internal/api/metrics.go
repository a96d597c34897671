package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the API transport.
// Pass to the client via WithMetrics.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	UnreachableTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adminsync",
				Name:      "api_requests_total",
				Help:      "Total number of backend API requests",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "adminsync",
				Name:      "api_request_duration_seconds",
				Help:      "Backend API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		UnreachableTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "adminsync",
				Name:      "api_unreachable_total",
				Help:      "Total connection-level failures reaching the backend",
			},
		),
	}
}

func (m *Metrics) observe(method string, status int, err error, elapsed time.Duration) {
	label := strconv.Itoa(status)
	if errors.Is(err, ErrServerUnreachable) {
		label = "unreachable"
		m.UnreachableTotal.Inc()
	}
	m.RequestsTotal.WithLabelValues(method, label).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
