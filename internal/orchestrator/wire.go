package orchestrator

import (
	"time"

	"github.com/rs/zerolog"

	"marketdata/internal/config"
	"marketdata/internal/httpx"
	"marketdata/internal/metrics"
	"marketdata/internal/provider/alphavantage"
	"marketdata/internal/provider/financequery"
	"marketdata/internal/provider/finnhub"
	"marketdata/internal/provider/polygon"
	"marketdata/internal/provider/yahoo"
	"marketdata/internal/registry"
)

// FromConfig wires every configured adapter into a ready client. Each
// provider gets its own HTTP client so one provider's rate limiter
// cannot stall another's traffic.
func FromConfig(cfg config.Config, log zerolog.Logger, m *metrics.Metrics) *Client {
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second

	c := New(registry.New(cfg), WithLogger(log), WithMetrics(m))
	c.Register(
		financequery.NewAdapter(financequery.NewClient(
			financequery.WithBaseURL(cfg.FinanceQuery.Endpoint),
			financequery.WithHTTPClient(newHTTP(timeout, cfg.FinanceQuery.MaxRequestsPerMinute, cfg.FinanceQuery.Burst)),
		)),
		yahoo.NewAdapter(yahoo.NewClient(
			yahoo.WithBaseURL(cfg.Yahoo.Endpoint),
			yahoo.WithHTTPClient(newHTTP(timeout, cfg.Yahoo.MaxRequestsPerMinute, cfg.Yahoo.Burst)),
		)),
		finnhub.NewAdapter(finnhub.NewClient(
			cfg.Finnhub.APIKey,
			finnhub.WithBaseURL(cfg.Finnhub.Endpoint),
			finnhub.WithHTTPClient(newHTTP(timeout, cfg.Finnhub.MaxRequestsPerMinute, cfg.Finnhub.Burst)),
		)),
		alphavantage.NewAdapter(alphavantage.NewClient(
			cfg.AlphaVantage.APIKey,
			alphavantage.WithBaseURL(cfg.AlphaVantage.Endpoint),
			alphavantage.WithHTTPClient(newHTTP(timeout, cfg.AlphaVantage.MaxRequestsPerMinute, cfg.AlphaVantage.Burst)),
		)),
		polygon.NewAdapter(polygon.NewClient(
			cfg.Polygon.APIKey,
			polygon.WithBaseURL(cfg.Polygon.Endpoint),
			polygon.WithHTTPClient(newHTTP(timeout, cfg.Polygon.MaxRequestsPerMinute, cfg.Polygon.Burst)),
		)),
	)
	return c
}

func newHTTP(timeout time.Duration, requestsPerMinute, burst int) *httpx.Client {
	client := httpx.New(timeout)
	if requestsPerMinute > 0 {
		client.Limiter = httpx.NewTokenBucket(float64(requestsPerMinute)/60.0, burst)
	}
	return client
}
