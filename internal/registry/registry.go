// Package registry computes, once at construction, which providers are
// usable given the supplied credentials. Availability means "has what it
// needs to be called", not "is currently reachable"; it is never
// re-evaluated mid-session and makes no network calls.
package registry

import (
	"marketdata/internal/config"
	"marketdata/internal/provider"
)

type Registry struct {
	available map[provider.ID]bool
}

// New derives availability from the configuration. Key-less providers
// are available whenever enabled; keyed providers additionally need a
// non-empty API key.
func New(cfg config.Config) *Registry {
	return &Registry{available: map[provider.ID]bool{
		provider.FinanceQuery: cfg.FinanceQuery.Enabled,
		provider.Yahoo:        cfg.Yahoo.Enabled,
		provider.Finnhub:      cfg.Finnhub.Enabled && cfg.Finnhub.APIKey != "",
		provider.AlphaVantage: cfg.AlphaVantage.Enabled && cfg.AlphaVantage.APIKey != "",
		provider.Polygon:      cfg.Polygon.Enabled && cfg.Polygon.APIKey != "",
	}}
}

// Available reports whether the provider can be called at all. The map
// is read-only after New, so concurrent reads need no locking.
func (r *Registry) Available(id provider.ID) bool {
	return r.available[id]
}

// AvailableProviders lists usable providers in the canonical order.
func (r *Registry) AvailableProviders() []provider.ID {
	out := make([]provider.ID, 0, len(provider.All))
	for _, id := range provider.All {
		if r.available[id] {
			out = append(out, id)
		}
	}
	return out
}
