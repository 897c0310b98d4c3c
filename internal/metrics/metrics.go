// Package metrics exposes Prometheus collectors for configuration saves,
// validation violations and RPC latency. A nil *Metrics records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Save outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the collectors of one server.
type Metrics struct {
	registry   *prometheus.Registry
	saves      *prometheus.CounterVec
	violations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry that also carries the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compplan",
			Name:      "document_saves_total",
			Help:      "Configuration writes by document and outcome.",
		}, []string{"document", "outcome"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compplan",
			Name:      "validation_violations_total",
			Help:      "Rule violations found while validating incoming documents.",
		}, []string{"document", "rule", "enforcement"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "compplan",
			Name:      "request_duration_seconds",
			Help:      "RPC latency by procedure and code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
	reg.MustRegister(
		m.saves,
		m.violations,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSave counts one write of document.
func (m *Metrics) ObserveSave(document, outcome string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(document, outcome).Inc()
}

// ObserveViolation counts one failed rule.
func (m *Metrics) ObserveViolation(document, rule, enforcement string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(document, rule, enforcement).Inc()
}

// ObserveRequest records the latency of one RPC.
func (m *Metrics) ObserveRequest(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(procedure, code).Observe(d.Seconds())
}

// Registry returns the underlying registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
