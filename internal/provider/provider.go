package provider

import (
	"context"

	"marketdata/internal/model"
)

// ID names one upstream data source.
type ID string

const (
	FinanceQuery ID = "financequery"
	Yahoo        ID = "yahoo"
	Finnhub      ID = "finnhub"
	AlphaVantage ID = "alphavantage"
	Polygon      ID = "polygon"
)

// All lists every known provider.
var All = []ID{FinanceQuery, Yahoo, Finnhub, AlphaVantage, Polygon}

// Known reports whether id names a provider this build ships.
func Known(id ID) bool {
	for _, p := range All {
		if p == id {
			return true
		}
	}
	return false
}

// Each adapter implements the subset of these interfaces its upstream
// API can serve. Adapters build the request, perform exactly one
// outbound call, and normalize the payload; fallback across providers
// is the orchestrator's job.

// QuoteProvider serves point-in-time quotes.
type QuoteProvider interface {
	ID() ID
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// HistoricalProvider serves OHLCV bar sequences.
type HistoricalProvider interface {
	ID() ID
	GetHistorical(ctx context.Context, symbol string, rng model.Range, interval model.Interval) ([]model.HistoricalBar, error)
}

// ProfileProvider serves company profiles.
type ProfileProvider interface {
	ID() ID
	GetCompanyProfile(ctx context.Context, symbol string) (model.CompanyProfile, error)
}

// StatementProvider serves financial statements.
type StatementProvider interface {
	ID() ID
	GetFinancialStatement(ctx context.Context, symbol string, kind model.StatementKind, freq model.Frequency) (model.FinancialStatement, error)
}

// NewsProvider serves news for a symbol.
type NewsProvider interface {
	ID() ID
	GetNews(ctx context.Context, symbol string) ([]model.NewsArticle, error)
}

// MoversProvider serves gainers/losers/actives lists.
type MoversProvider interface {
	ID() ID
	GetMarketMovers(ctx context.Context, kind model.MoverKind, limit int) ([]model.MarketMover, error)
}

// SectorProvider serves sector performance, for one symbol's sector or
// for all sectors when symbol is empty.
type SectorProvider interface {
	ID() ID
	GetSectorPerformance(ctx context.Context, symbol string) ([]model.SectorPerformance, error)
}

// TranscriptProvider serves earnings call transcripts.
type TranscriptProvider interface {
	ID() ID
	GetEarningsTranscript(ctx context.Context, symbol string, quarter model.Quarter, year int) (model.EarningsTranscript, error)
}

// SearchProvider serves symbol search.
type SearchProvider interface {
	ID() ID
	SearchSymbols(ctx context.Context, query string) ([]model.SymbolSearchResult, error)
}

// HoursProvider serves market open/closed status.
type HoursProvider interface {
	ID() ID
	GetMarketHours(ctx context.Context) (model.MarketHours, error)
}

// SimilarProvider serves similar-stock lookups.
type SimilarProvider interface {
	ID() ID
	GetSimilarStocks(ctx context.Context, symbol string, limit int) ([]model.Quote, error)
}
