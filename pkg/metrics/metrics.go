package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	BookingsCreated   prometheus.Counter
	DispatchSuccess   *prometheus.CounterVec
	DispatchConflicts prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}),
		DispatchSuccess: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_operations_total",
			Help:      "The total number of successful dispatch operations",
		}, []string{"operation"}),
		DispatchConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_conflicts_total",
			Help:      "The total number of optimistic concurrency conflicts",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// RegisterDashboardGauge exposes the live websocket connection count.
func RegisterDashboardGauge(namespace string, connected func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected_dashboards",
		Help:      "The number of dashboards connected to the websocket hub",
	}, func() float64 {
		return float64(connected())
	})
}
