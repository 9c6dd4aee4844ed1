package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the Prometheus collectors used by the intake service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ScansTotal        *prometheus.CounterVec
	ProcessingLatency prometheus.Histogram
	StoreFailures     *prometheus.CounterVec
	SinkFailures      *prometheus.CounterVec
	BootstrapAttempts *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_scans_total",
				Help: "Total number of persisted scans by grade",
			},
			[]string{"grade"},
		),
		ProcessingLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "intake_processing_latency_ms",
				Help:    "Grading latency measured by the intake handler, in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 150, 200, 300, 500, 1000},
			},
		),
		StoreFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_store_failures_total",
				Help: "Scan store failures by operation",
			},
			[]string{"op"},
		),
		SinkFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_sink_failures_total",
				Help: "Failed deliveries to post-persist sinks",
			},
			[]string{"sink"},
		),
		BootstrapAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_bootstrap_attempts_total",
				Help: "Schema bootstrap attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.HTTPRequestsTotal,
			m.HTTPRequestDuration,
			m.ScansTotal,
			m.ProcessingLatency,
			m.StoreFailures,
			m.SinkFailures,
			m.BootstrapAttempts,
		)
	}
	return m
}
