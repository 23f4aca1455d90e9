// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agrotelemetry"

// Ingestion outcomes, one per terminal branch of the pipeline.
const (
	OutcomeStored        = "stored"
	OutcomeNotObject     = "not_object"
	OutcomeNoEUI         = "no_eui"
	OutcomeUnknownDevice = "unknown_device"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeBadRequest    = "bad_request"
	OutcomeError         = "error"
)

// Metrics groups every collector of the service. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	HTTPRequests         *prometheus.CounterVec
	HTTPLatency          *prometheus.HistogramVec
	RateLimited          prometheus.Counter
	IngestOutcomes       *prometheus.CounterVec
	ObservationsInserted prometheus.Counter
	ExportFailures       prometheus.Counter
	GRPCRequests         *prometheus.CounterVec
	GRPCLatency          *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
		IngestOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_outcomes_total",
			Help:      "Uplink ingestion outcomes by transport.",
		}, []string{"transport", "outcome"}),
		ObservationsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_inserted_total",
			Help:      "Observations committed to the database.",
		}),
		ExportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_failures_total",
			Help:      "Observation batches that failed to mirror to the time-series sink.",
		}),
		GRPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC requests by method and status code.",
		}, []string{"method", "code"}),
		GRPCLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPLatency,
		m.RateLimited,
		m.IngestOutcomes,
		m.ObservationsInserted,
		m.ExportFailures,
		m.GRPCRequests,
		m.GRPCLatency,
	)
	return m
}

// IngestOutcome counts one finished ingestion attempt.
func (m *Metrics) IngestOutcome(transport, outcome string) {
	if m == nil {
		return
	}
	m.IngestOutcomes.WithLabelValues(transport, outcome).Inc()
}

// AddObservations counts committed observations.
func (m *Metrics) AddObservations(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ObservationsInserted.Add(float64(n))
}

// ExportFailed counts a failed mirror write.
func (m *Metrics) ExportFailed() {
	if m == nil {
		return
	}
	m.ExportFailures.Inc()
}
