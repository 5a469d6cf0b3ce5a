// Package metrics provides Prometheus observability for the collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the collector. A nil *Metrics is
// valid and records nothing, which is what the tests use.
type Metrics struct {
	// Events by outcome of ingestion
	EventsIngested *prometheus.CounterVec

	// Sync requests by response status
	SyncRequests *prometheus.CounterVec

	// Ingest latency end to end
	IngestLatency prometheus.Histogram
}

// New creates and registers all collector metrics.
func New() *Metrics {
	return &Metrics{
		EventsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proctor_collector_events_total",
			Help: "Events processed by ingestion outcome",
		}, []string{"outcome"}), // outcome: "accepted", "duplicate", "rejected"

		SyncRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proctor_collector_sync_requests_total",
			Help: "Sync requests by result",
		}, []string{"result"}), // result: "accepted", "rejected", "error"

		IngestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "proctor_collector_ingest_duration_seconds",
			Help:    "Duration of batch ingestion including storage",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// CountEvents records n events with the given ingestion outcome.
func (m *Metrics) CountEvents(outcome string, n int) {
	if m != nil && n > 0 {
		m.EventsIngested.WithLabelValues(outcome).Add(float64(n))
	}
}

// CountSyncRequest records one sync request with the given result.
func (m *Metrics) CountSyncRequest(result string) {
	if m != nil {
		m.SyncRequests.WithLabelValues(result).Inc()
	}
}

// ObserveIngestLatency records the duration of one batch ingestion.
func (m *Metrics) ObserveIngestLatency(d time.Duration) {
	if m != nil {
		m.IngestLatency.Observe(d.Seconds())
	}
}
