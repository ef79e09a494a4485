package fulfillment

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the instruments the workflow reports to. Register once in
// main and inject; tests construct one against a throwaway registry.
type Metrics struct {
	Requests          *prometheus.CounterVec // callback_requests_total{outcome}
	Duration          prometheus.Histogram   // callback_duration_seconds
	CartClearFailures prometheus.Counter     // cart_clear_failures_total
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callback_requests_total",
				Help: "Payment callback invocations by outcome.",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "callback_duration_seconds",
				Help:    "Duration of payment callback processing in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
		CartClearFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cart_clear_failures_total",
				Help: "Post-commit cart clears that failed and were left to the sweeper.",
			},
		),
	}
	reg.MustRegister(m.Requests, m.Duration, m.CartClearFailures)
	return m
}
