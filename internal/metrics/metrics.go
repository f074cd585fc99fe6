package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for upstream request accounting.
const (
	OutcomeOK             = "ok"
	OutcomeRejected       = "rejected"
	OutcomeTransportError = "transport_error"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Invocations      prometheus.Counter
	UpstreamRequests *prometheus.CounterVec
}

// New creates and registers the service collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Invocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catchup_invocations_total",
			Help: "Unread summary invocations handled.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catchup_upstream_requests_total",
			Help: "HipChat API requests by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Invocations, m.UpstreamRequests)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
