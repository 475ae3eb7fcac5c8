package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PipelineMetrics holds the operator-facing counters for fulfillment
// runs. This is the job's only consumer-visible failure surface.
type PipelineMetrics struct {
	OrdersProcessed prometheus.Counter
	OrdersErrored   *prometheus.CounterVec
	OrdersConflict  prometheus.Counter
	RunDuration     prometheus.Histogram
	EmailFailures   prometheus.Counter
}

func New(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)
	return &PipelineMetrics{
		OrdersProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fulfillment_orders_processed_total",
			Help: "Orders successfully booked and marked shipped.",
		}),
		OrdersErrored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fulfillment_orders_errored_total",
			Help: "Orders skipped in a run, by error class.",
		}, []string{"class"}),
		OrdersConflict: factory.NewCounter(prometheus.CounterOpts{
			Name: "fulfillment_orders_conflict_total",
			Help: "Orders whose fulfillment write lost a concurrent race.",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fulfillment_run_duration_seconds",
			Help:    "Wall time of one batch run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		EmailFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fulfillment_email_failures_total",
			Help: "Shipping notifications that exhausted their retry budget.",
		}),
	}
}
