// Package metrics holds the prometheus collectors for research traffic and
// the outbound calls it makes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outbound sources.
const (
	SourceLLM     = "llm"
	SourceCaseLaw = "caselaw"
)

// Outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeDegraded      = "degraded"
	OutcomeNotConfigured = "not_configured"
	OutcomeInvalid       = "invalid"
	OutcomeStorageError  = "storage_error"
	OutcomeError         = "error"
)

// Metrics groups the collectors registered for one process.
type Metrics struct {
	registry      *prometheus.Registry
	research      *prometheus.CounterVec
	externalCalls *prometheus.CounterVec
	externalTime  *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		research: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legalsuite_research_total",
			Help: "Research requests by outcome.",
		}, []string{"outcome"}),
		externalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legalsuite_external_calls_total",
			Help: "Outbound calls to the LLM and case-law services by outcome.",
		}, []string{"source", "outcome"}),
		externalTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "legalsuite_external_call_seconds",
			Help:    "Latency of outbound calls.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"source"}),
	}
	m.registry.MustRegister(
		m.research,
		m.externalCalls,
		m.externalTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Research counts one research request. A nil receiver is a no-op so
// components can run without metrics in tests.
func (m *Metrics) Research(outcome string) {
	if m == nil {
		return
	}
	m.research.WithLabelValues(outcome).Inc()
}

// ExternalCall records one outbound call.
func (m *Metrics) ExternalCall(source, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.externalCalls.WithLabelValues(source, outcome).Inc()
	m.externalTime.WithLabelValues(source).Observe(took.Seconds())
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
