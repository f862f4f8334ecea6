// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Gateway metrics
	GatewayRequests *prometheus.CounterVec
	GatewayLatency  *prometheus.HistogramVec

	// Session metrics
	SessionsActive  prometheus.Gauge
	CommandsApplied *prometheus.CounterVec
	StaleUpdates    *prometheus.CounterVec
	ClientsDropped  prometheus.Counter

	// Ingestion metrics
	MatchesIngested prometheus.Counter
	MatchesSkipped  *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ti_helper"
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		GatewayRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Requests to the data service by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		GatewayLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Data service request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of live dashboard sessions",
		}),
		CommandsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "UI commands by type and outcome",
		}, []string{"command", "outcome"}),
		StaleUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "stale_updates_total",
			Help:      "Region updates discarded because a newer one was already applied",
		}, []string{"region"}),
		ClientsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "clients_dropped_total",
			Help:      "Clients dropped for not keeping up with snapshots",
		}),

		MatchesIngested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "matches_total",
			Help:      "Match rows stored by the importer",
		}),
		MatchesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "players_skipped_total",
			Help:      "Player rows skipped by reason",
		}, []string{"reason"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveGateway(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(endpoint, outcome).Inc()
	m.GatewayLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.SessionsActive.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.SessionsActive.Dec()
	}
}

func (m *Metrics) Command(command, outcome string) {
	if m != nil {
		m.CommandsApplied.WithLabelValues(command, outcome).Inc()
	}
}

func (m *Metrics) StaleUpdate(region string) {
	if m != nil {
		m.StaleUpdates.WithLabelValues(region).Inc()
	}
}

func (m *Metrics) ClientDropped() {
	if m != nil {
		m.ClientsDropped.Inc()
	}
}

func (m *Metrics) MatchIngested() {
	if m != nil {
		m.MatchesIngested.Inc()
	}
}

func (m *Metrics) PlayerSkipped(reason string) {
	if m != nil {
		m.MatchesSkipped.WithLabelValues(reason).Inc()
	}
}
