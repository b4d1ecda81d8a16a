package uow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the pipeline's prometheus collectors.
type Metrics struct {
	Commits          prometheus.Counter
	Rollbacks        *prometheus.CounterVec
	EventsDispatched *prometheus.CounterVec
	Duration         *prometheus.HistogramVec
}

// NewMetrics registers the pipeline collectors with reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Commits: factory.NewCounter(prometheus.CounterOpts{
			Name: "nexcart_uow_commits_total",
			Help: "Total number of committed units of work",
		}),
		Rollbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexcart_uow_rollbacks_total",
			Help: "Total number of rolled back units of work",
		}, []string{"reason"}),
		EventsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexcart_uow_events_dispatched_total",
			Help: "Total number of domain events dispatched by committed units of work",
		}, []string{"event"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nexcart_uow_duration_seconds",
			Help:    "Latency of pipeline operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
