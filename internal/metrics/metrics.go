// Package metrics exposes Prometheus counters for provider traffic and
// fallback behavior.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	// Requests counts every provider attempt, success or not.
	Requests *prometheus.CounterVec
	// Failures counts failed attempts by error kind.
	Failures *prometheus.CounterVec
	// Fallbacks counts operations that needed more than one provider.
	Fallbacks *prometheus.CounterVec
	// Exhausted counts operations where every candidate failed.
	Exhausted *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_provider_requests_total",
			Help: "Provider attempts by provider and operation.",
		}, []string{"provider", "op"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_provider_failures_total",
			Help: "Failed provider attempts by provider, operation and error kind.",
		}, []string{"provider", "op", "kind"}),
		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_fallbacks_total",
			Help: "Operations served by a provider other than the first preference.",
		}, []string{"op"}),
		Exhausted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_exhausted_total",
			Help: "Operations where every candidate provider failed.",
		}, []string{"op"}),
	}
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
