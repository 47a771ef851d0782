package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PingsTotal        = promauto.NewCounter(prometheus.CounterOpts{Namespace: "fleet_admin", Name: "pings_total", Help: "Total driver pings accepted"})
	PingsRejected     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "fleet_admin", Name: "pings_rejected_total", Help: "Total driver pings rejected by validation"})
	DriversOnline     = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "fleet_admin", Name: "drivers_online", Help: "Drivers currently reporting an online status"})
	AdminUnauthorized = promauto.NewCounter(prometheus.CounterOpts{Namespace: "fleet_admin", Name: "admin_requests_unauthorized_total", Help: "Admin requests rejected by the token gate"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "fleet_admin", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fleet_admin",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
