// Package orchestrator routes each operation to a chain of capable
// providers. The preference order is fixed per operation; the registry
// trims it down to providers that are actually usable, and a failure of
// a retryable kind moves the call down the chain.
package orchestrator

import (
	"context"

	"github.com/rs/zerolog"

	"marketdata/internal/metrics"
	"marketdata/internal/model"
	"marketdata/internal/provider"
)

// Availability is the slice of the registry the orchestrator needs.
type Availability interface {
	Available(id provider.ID) bool
}

// preferences fixes the provider order per operation. The first entry
// is the primary; the rest are fallbacks in order.
var preferences = map[string][]provider.ID{
	"get_quote":               {provider.Finnhub, provider.AlphaVantage, provider.Polygon, provider.FinanceQuery},
	"get_historical":          {provider.FinanceQuery, provider.AlphaVantage, provider.Polygon, provider.Yahoo},
	"get_company_profile":     {provider.Yahoo, provider.AlphaVantage, provider.Finnhub, provider.Polygon},
	"get_financial_statement": {provider.AlphaVantage, provider.Polygon},
	"get_news":                {provider.Finnhub, provider.Polygon, provider.FinanceQuery},
	"get_market_movers":       {provider.FinanceQuery},
	"get_sector_performance":  {provider.FinanceQuery},
	"search_symbols":          {provider.FinanceQuery, provider.AlphaVantage},
	"get_earnings_transcript": {provider.Finnhub},
	"get_market_hours":        {provider.FinanceQuery},
	"get_similar_stocks":      {provider.FinanceQuery},
}

// Client fans operations out across registered providers.
type Client struct {
	availability Availability
	log          zerolog.Logger
	metrics      *metrics.Metrics

	quotes      map[provider.ID]provider.QuoteProvider
	historical  map[provider.ID]provider.HistoricalProvider
	profiles    map[provider.ID]provider.ProfileProvider
	statements  map[provider.ID]provider.StatementProvider
	news        map[provider.ID]provider.NewsProvider
	movers      map[provider.ID]provider.MoversProvider
	sectors     map[provider.ID]provider.SectorProvider
	transcripts map[provider.ID]provider.TranscriptProvider
	search      map[provider.ID]provider.SearchProvider
	hours       map[provider.ID]provider.HoursProvider
	similar     map[provider.ID]provider.SimilarProvider
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client over the given availability view. Adapters are
// attached with Register.
func New(availability Availability, options ...Option) *Client {
	c := &Client{
		availability: availability,
		log:          zerolog.Nop(),
		quotes:       map[provider.ID]provider.QuoteProvider{},
		historical:   map[provider.ID]provider.HistoricalProvider{},
		profiles:     map[provider.ID]provider.ProfileProvider{},
		statements:   map[provider.ID]provider.StatementProvider{},
		news:         map[provider.ID]provider.NewsProvider{},
		movers:       map[provider.ID]provider.MoversProvider{},
		sectors:      map[provider.ID]provider.SectorProvider{},
		transcripts:  map[provider.ID]provider.TranscriptProvider{},
		search:       map[provider.ID]provider.SearchProvider{},
		hours:        map[provider.ID]provider.HoursProvider{},
		similar:      map[provider.ID]provider.SimilarProvider{},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Register attaches an adapter for every capability interface it
// implements. Registering two adapters under the same ID replaces the
// earlier one per capability.
func (c *Client) Register(adapters ...interface{ ID() provider.ID }) {
	for _, a := range adapters {
		id := a.ID()
		if p, ok := a.(provider.QuoteProvider); ok {
			c.quotes[id] = p
		}
		if p, ok := a.(provider.HistoricalProvider); ok {
			c.historical[id] = p
		}
		if p, ok := a.(provider.ProfileProvider); ok {
			c.profiles[id] = p
		}
		if p, ok := a.(provider.StatementProvider); ok {
			c.statements[id] = p
		}
		if p, ok := a.(provider.NewsProvider); ok {
			c.news[id] = p
		}
		if p, ok := a.(provider.MoversProvider); ok {
			c.movers[id] = p
		}
		if p, ok := a.(provider.SectorProvider); ok {
			c.sectors[id] = p
		}
		if p, ok := a.(provider.TranscriptProvider); ok {
			c.transcripts[id] = p
		}
		if p, ok := a.(provider.SearchProvider); ok {
			c.search[id] = p
		}
		if p, ok := a.(provider.HoursProvider); ok {
			c.hours[id] = p
		}
		if p, ok := a.(provider.SimilarProvider); ok {
			c.similar[id] = p
		}
	}
}

// CallOption adjusts a single operation call.
type CallOption func(*callOptions)

type callOptions struct {
	explicit provider.ID
}

// WithProvider pins the call to one provider. The fallback chain is
// bypassed entirely: if that provider fails, the call fails.
func WithProvider(id provider.ID) CallOption {
	return func(o *callOptions) { o.explicit = id }
}

func applyCallOptions(options []CallOption) callOptions {
	var o callOptions
	for _, option := range options {
		option(&o)
	}
	return o
}

// candidates resolves the chain for one operation: the explicit pin if
// set, otherwise the preference order filtered to providers that are
// available and actually serve the capability.
func candidates(op string, o callOptions, availability Availability, has func(provider.ID) bool) ([]provider.ID, error) {
	if o.explicit != "" {
		if !provider.Known(o.explicit) {
			return nil, provider.Errorf(o.explicit, provider.KindConfiguration, op, "unknown provider")
		}
		if !has(o.explicit) {
			return nil, provider.Errorf(o.explicit, provider.KindConfiguration, op, "provider does not serve this operation")
		}
		if !availability.Available(o.explicit) {
			return nil, provider.Errorf(o.explicit, provider.KindUnavailable, op, "provider not configured")
		}
		return []provider.ID{o.explicit}, nil
	}
	chain := make([]provider.ID, 0, len(preferences[op]))
	for _, id := range preferences[op] {
		if availability.Available(id) && has(id) {
			chain = append(chain, id)
		}
	}
	if len(chain) == 0 {
		return nil, &provider.ExhaustedError{Op: op}
	}
	return chain, nil
}

// run walks the chain until one provider succeeds. Retryable failures
// are collected and fallback continues; a configuration failure aborts
// immediately because every later attempt would be pointless noise.
func run[T any](ctx context.Context, c *Client, op string, chain []provider.ID, fetch func(context.Context, provider.ID) (T, error)) (T, error) {
	var zero T
	attempts := make([]provider.Attempt, 0, len(chain))
	for i, id := range chain {
		if c.metrics != nil {
			c.metrics.Requests.WithLabelValues(string(id), op).Inc()
		}
		out, err := fetch(ctx, id)
		if err == nil {
			if i > 0 {
				if c.metrics != nil {
					c.metrics.Fallbacks.WithLabelValues(op).Inc()
				}
				c.log.Debug().Str("op", op).Str("provider", string(id)).Int("attempt", i+1).Msg("served by fallback provider")
			}
			return out, nil
		}
		kind := provider.KindOf(err)
		if c.metrics != nil {
			c.metrics.Failures.WithLabelValues(string(id), op, kind.String()).Inc()
		}
		c.log.Warn().Str("op", op).Str("provider", string(id)).Str("kind", kind.String()).Err(err).Msg("provider attempt failed")
		if ctx.Err() != nil {
			return zero, err
		}
		if !provider.Retryable(err) {
			return zero, err
		}
		attempts = append(attempts, provider.Attempt{Provider: id, Err: err})
	}
	if c.metrics != nil {
		c.metrics.Exhausted.WithLabelValues(op).Inc()
	}
	return zero, &provider.ExhaustedError{Op: op, Attempts: attempts}
}

// GetQuote serves one quote with fallback.
func (c *Client) GetQuote(ctx context.Context, symbol string, options ...CallOption) (model.Quote, error) {
	const op = "get_quote"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.quotes[id]; return ok })
	if err != nil {
		return model.Quote{}, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) (model.Quote, error) {
		return c.quotes[id].GetQuote(ctx, symbol)
	})
}

// GetHistorical serves bars with fallback. Output is always ascending
// by timestamp.
func (c *Client) GetHistorical(ctx context.Context, symbol string, rng model.Range, interval model.Interval, options ...CallOption) ([]model.HistoricalBar, error) {
	const op = "get_historical"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.historical[id]; return ok })
	if err != nil {
		return nil, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) ([]model.HistoricalBar, error) {
		return c.historical[id].GetHistorical(ctx, symbol, rng, interval)
	})
}

// GetCompanyProfile serves a profile with fallback.
func (c *Client) GetCompanyProfile(ctx context.Context, symbol string, options ...CallOption) (model.CompanyProfile, error) {
	const op = "get_company_profile"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.profiles[id]; return ok })
	if err != nil {
		return model.CompanyProfile{}, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) (model.CompanyProfile, error) {
		return c.profiles[id].GetCompanyProfile(ctx, symbol)
	})
}

// GetFinancialStatement serves one statement with fallback.
func (c *Client) GetFinancialStatement(ctx context.Context, symbol string, kind model.StatementKind, freq model.Frequency, options ...CallOption) (model.FinancialStatement, error) {
	const op = "get_financial_statement"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.statements[id]; return ok })
	if err != nil {
		return model.FinancialStatement{}, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) (model.FinancialStatement, error) {
		return c.statements[id].GetFinancialStatement(ctx, symbol, kind, freq)
	})
}

// GetNews serves news with fallback.
func (c *Client) GetNews(ctx context.Context, symbol string, options ...CallOption) ([]model.NewsArticle, error) {
	const op = "get_news"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.news[id]; return ok })
	if err != nil {
		return nil, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) ([]model.NewsArticle, error) {
		return c.news[id].GetNews(ctx, symbol)
	})
}

// GetMarketMovers serves one movers list. The upstream only accepts a
// few list sizes, so the limit is validated before any call goes out.
func (c *Client) GetMarketMovers(ctx context.Context, kind model.MoverKind, limit int, options ...CallOption) ([]model.MarketMover, error) {
	const op = "get_market_movers"
	if !model.ValidMoverLimit(limit) {
		return nil, provider.Errorf("", provider.KindConfiguration, op, "limit must be one of %v, got %d", model.MoverLimits, limit)
	}
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.movers[id]; return ok })
	if err != nil {
		return nil, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) ([]model.MarketMover, error) {
		return c.movers[id].GetMarketMovers(ctx, kind, limit)
	})
}

// GetSectorPerformance serves sector returns, for all sectors when
// symbol is empty.
func (c *Client) GetSectorPerformance(ctx context.Context, symbol string, options ...CallOption) ([]model.SectorPerformance, error) {
	const op = "get_sector_performance"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.sectors[id]; return ok })
	if err != nil {
		return nil, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) ([]model.SectorPerformance, error) {
		return c.sectors[id].GetSectorPerformance(ctx, symbol)
	})
}

// GetEarningsTranscript serves one earnings call transcript.
func (c *Client) GetEarningsTranscript(ctx context.Context, symbol string, quarter model.Quarter, year int, options ...CallOption) (model.EarningsTranscript, error) {
	const op = "get_earnings_transcript"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.transcripts[id]; return ok })
	if err != nil {
		return model.EarningsTranscript{}, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) (model.EarningsTranscript, error) {
		return c.transcripts[id].GetEarningsTranscript(ctx, symbol, quarter, year)
	})
}

// SearchSymbols serves symbol search with fallback.
func (c *Client) SearchSymbols(ctx context.Context, query string, options ...CallOption) ([]model.SymbolSearchResult, error) {
	const op = "search_symbols"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.search[id]; return ok })
	if err != nil {
		return nil, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) ([]model.SymbolSearchResult, error) {
		return c.search[id].SearchSymbols(ctx, query)
	})
}

// GetMarketHours serves the market open/closed status.
func (c *Client) GetMarketHours(ctx context.Context, options ...CallOption) (model.MarketHours, error) {
	const op = "get_market_hours"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.hours[id]; return ok })
	if err != nil {
		return model.MarketHours{}, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) (model.MarketHours, error) {
		return c.hours[id].GetMarketHours(ctx)
	})
}

// GetSimilarStocks serves similar-stock lookups.
func (c *Client) GetSimilarStocks(ctx context.Context, symbol string, limit int, options ...CallOption) ([]model.Quote, error) {
	const op = "get_similar_stocks"
	chain, err := candidates(op, applyCallOptions(options), c.availability, func(id provider.ID) bool { _, ok := c.similar[id]; return ok })
	if err != nil {
		return nil, err
	}
	return run(ctx, c, op, chain, func(ctx context.Context, id provider.ID) ([]model.Quote, error) {
		return c.similar[id].GetSimilarStocks(ctx, symbol, limit)
	})
}
