// Package financequery adapts the Finance Query aggregator API. It is
// the only provider that needs no credentials, which makes it the
// fallback of last resort for quotes and the sole source for market
// movers and sector performance.
package financequery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"marketdata/internal/httpx"
	"marketdata/internal/provider"
)

const defaultBaseURL = "https://finance-query.onrender.com"

// Client is a raw Finance Query API client. It performs exactly one
// outbound call per method and returns provider-shaped responses.
//
//go:generate mockgen -package=financequery_test -destination=mock_doer_test.go marketdata/internal/httpx Doer
type Client struct {
	baseURL    string
	httpClient httpx.Doer
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient httpx.Doer) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a raw Finance Query client.
func NewClient(options ...Option) *Client {
	c := &Client{baseURL: defaultBaseURL, httpClient: http.DefaultClient}
	for _, option := range options {
		option(c)
	}
	return c
}

// get performs one GET request and decodes the JSON body into dest,
// normalizing transport and status failures into typed provider errors.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, dest any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return provider.NewError(provider.FinanceQuery, provider.KindNetwork, op, err)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return provider.ClassifyHTTP(provider.FinanceQuery, op, 0, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return provider.ClassifyHTTP(provider.FinanceQuery, op, res.StatusCode, nil)
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "decode response: %v", err)
	}
	return nil
}

// detailedQuote mirrors the /v1/quotes row. Prices and returns arrive
// as display strings ("145.00", "+0.69%", "2.5T").
type detailedQuote struct {
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	PreMarketPrice  string `json:"preMarketPrice"`
	AfterHoursPrice string `json:"afterHoursPrice"`
	Change          string `json:"change"`
	PercentChange   string `json:"percentChange"`
	Open            string `json:"open"`
	High            string `json:"high"`
	Low             string `json:"low"`
	Volume          *int64 `json:"volume"`
	MarketCap       string `json:"marketCap"`
	Sector          string `json:"sector"`
	Industry        string `json:"industry"`
	About           string `json:"about"`
	Employees       string `json:"employees"`
}

// simpleQuote mirrors the slim quote rows /v1/similar returns.
type simpleQuote struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Change        string `json:"change"`
	PercentChange string `json:"percentChange"`
}

// historicalPoint mirrors one /v1/historical value; keys of the
// enclosing object are the bar timestamps.
type historicalPoint struct {
	Open     float64  `json:"open"`
	High     float64  `json:"high"`
	Low      float64  `json:"low"`
	Close    float64  `json:"close"`
	AdjClose *float64 `json:"adjClose"`
	Volume   int64    `json:"volume"`
}

type mover struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Change        string `json:"change"`
	PercentChange string `json:"percentChange"`
}

type newsItem struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Source string `json:"source"`
	Img    string `json:"img"`
	Time   string `json:"time"`
}

type searchResult struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

type sectorPerformance struct {
	Sector          string `json:"sector"`
	DayReturn       string `json:"dayReturn"`
	YTDReturn       string `json:"ytdReturn"`
	YearReturn      string `json:"yearReturn"`
	ThreeYearReturn string `json:"threeYearReturn"`
	FiveYearReturn  string `json:"fiveYearReturn"`
}

type marketHours struct {
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// GetDetailedQuotes calls /v1/quotes for a comma-joined symbol list.
func (c *Client) GetDetailedQuotes(ctx context.Context, symbols []string) ([]detailedQuote, error) {
	params := url.Values{"symbols": {joinSymbols(symbols)}}
	var out []detailedQuote
	if err := c.get(ctx, "get_quote", "/v1/quotes", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetHistorical calls /v1/historical; the response maps timestamp
// strings to OHLCV points.
func (c *Client) GetHistorical(ctx context.Context, symbol, rng, interval string) (map[string]historicalPoint, error) {
	params := url.Values{"symbol": {symbol}, "range": {rng}, "interval": {interval}}
	var out map[string]historicalPoint
	if err := c.get(ctx, "get_historical", "/v1/historical", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMovers calls /v1/{gainers|losers|actives}.
func (c *Client) GetMovers(ctx context.Context, kind string, limit int) ([]mover, error) {
	params := url.Values{"limit": {fmt.Sprintf("%d", limit)}}
	var out []mover
	if err := c.get(ctx, "get_market_movers", "/v1/"+kind, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNews calls /v1/news for one symbol.
func (c *Client) GetNews(ctx context.Context, symbol string) ([]newsItem, error) {
	params := url.Values{"symbol": {symbol}}
	var out []newsItem
	if err := c.get(ctx, "get_news", "/v1/news", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchSymbols calls /v1/search. Hit count and the Yahoo source toggle
// are fixed internal defaults, not exposed to callers.
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]searchResult, error) {
	params := url.Values{"query": {query}, "hits": {"2"}, "yahoo": {"true"}}
	var out []searchResult
	if err := c.get(ctx, "search_symbols", "/v1/search", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAllSectors calls /v1/sectors.
func (c *Client) GetAllSectors(ctx context.Context) ([]sectorPerformance, error) {
	var out []sectorPerformance
	if err := c.get(ctx, "get_sector_performance", "/v1/sectors", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSymbolSector calls /v1/sectors/symbol/{symbol}.
func (c *Client) GetSymbolSector(ctx context.Context, symbol string) (sectorPerformance, error) {
	var out sectorPerformance
	if err := c.get(ctx, "get_sector_performance", "/v1/sectors/symbol/"+url.PathEscape(symbol), nil, &out); err != nil {
		return sectorPerformance{}, err
	}
	return out, nil
}

// GetMarketHours calls /hours.
func (c *Client) GetMarketHours(ctx context.Context) (marketHours, error) {
	var out marketHours
	if err := c.get(ctx, "get_market_hours", "/hours", nil, &out); err != nil {
		return marketHours{}, err
	}
	return out, nil
}

// GetSimilar calls /v1/similar.
func (c *Client) GetSimilar(ctx context.Context, symbol string, limit int) ([]simpleQuote, error) {
	params := url.Values{"symbol": {symbol}, "limit": {fmt.Sprintf("%d", limit)}}
	var out []simpleQuote
	if err := c.get(ctx, "get_similar_stocks", "/v1/similar", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func joinSymbols(symbols []string) string {
	return strings.Join(symbols, ",")
}
