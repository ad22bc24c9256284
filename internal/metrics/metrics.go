// Package metrics holds the Prometheus collectors of the development backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verification outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeBurned  = "burned"
	OutcomeError   = "error"
)

// Metrics owns a private registry so tests never collide on the global one.
type Metrics struct {
	registry       *prometheus.Registry
	codesRequested prometheus.Counter
	verifications  *prometheus.CounterVec
}

// New registers the backend collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		codesRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tipslap_codes_requested_total",
			Help: "Verification codes issued.",
		}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tipslap_code_verifications_total",
			Help: "Verification attempts by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.codesRequested,
		m.verifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// CodeRequested counts an issued code. Safe on a nil receiver.
func (m *Metrics) CodeRequested() {
	if m == nil {
		return
	}
	m.codesRequested.Inc()
}

// CodeVerified counts a verification attempt. Safe on a nil receiver.
func (m *Metrics) CodeVerified(outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
