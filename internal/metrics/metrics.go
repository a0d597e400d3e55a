package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for RequestsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// Metrics groups the quote view-model collectors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestLatency  prometheus.Histogram
	SkippedInFlight prometheus.Counter
	OfflineLoads    prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdetail_quote_requests_total",
				Help: "Completed quote requests by outcome",
			}, []string{"outcome"}),
		RequestLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockdetail_quote_request_latency_seconds",
				Help:    "Time from issuing a quote request to its completion",
				Buckets: prometheus.DefBuckets,
			}),
		SkippedInFlight: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stockdetail_quote_loads_skipped_total",
				Help: "Loads ignored because a quote request was already in flight",
			}),
		OfflineLoads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stockdetail_quote_loads_offline_total",
				Help: "Loads that found the network offline",
			}),
	}
	if reg != nil {
		reg.MustRegister(m.RequestsTotal, m.RequestLatency, m.SkippedInFlight, m.OfflineLoads)
	}
	return m
}

// ObserveRequest records one completed request.
func (m *Metrics) ObserveRequest(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.RequestLatency.Observe(time.Since(started).Seconds())
}

// Skipped records a load ignored by the in-flight guard.
func (m *Metrics) Skipped() {
	if m == nil {
		return
	}
	m.SkippedInFlight.Inc()
}

// Offline records a load that found the network offline.
func (m *Metrics) Offline() {
	if m == nil {
		return
	}
	m.OfflineLoads.Inc()
}
