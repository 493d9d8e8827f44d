// Package polygon adapts the Polygon.io REST API. The key travels as a
// bearer token; aggregate bars arrive already typed, which makes this
// the only provider that needs no string-to-number parsing.
package polygon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"marketdata/internal/httpx"
	"marketdata/internal/provider"
)

const defaultBaseURL = "https://api.polygon.io"

// Client is a raw Polygon API client.
//
//go:generate mockgen -package=polygon_test -destination=mock_doer_test.go marketdata/internal/httpx Doer
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a raw Polygon client.
func NewClient(apiKey string, options ...Option) *Client {
	c := &Client{baseURL: defaultBaseURL, apiKey: apiKey, httpClient: http.DefaultClient}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, dest any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return provider.NewError(provider.Polygon, provider.KindNetwork, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return provider.ClassifyHTTP(provider.Polygon, op, 0, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return provider.ClassifyHTTP(provider.Polygon, op, res.StatusCode, nil)
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return provider.Errorf(provider.Polygon, provider.KindFormat, op, "decode response: %v", err)
	}
	return nil
}

// aggBar mirrors one aggregate result. The timestamp is epoch
// milliseconds.
type aggBar struct {
	Timestamp int64   `json:"t"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

type aggsResponse struct {
	Ticker  string   `json:"ticker"`
	Status  string   `json:"status"`
	Results []aggBar `json:"results"`
}

// tickerDetails mirrors /v3/reference/tickers/{ticker} results.
type tickerDetails struct {
	Ticker          string   `json:"ticker"`
	Name            string   `json:"name"`
	Locale          string   `json:"locale"`
	PrimaryExchange string   `json:"primary_exchange"`
	CurrencyName    string   `json:"currency_name"`
	Description     string   `json:"description"`
	HomepageURL     string   `json:"homepage_url"`
	SICDescription  string   `json:"sic_description"`
	TotalEmployees  *int64   `json:"total_employees"`
	MarketCap       *float64 `json:"market_cap"`
}

type tickerDetailsResponse struct {
	Results tickerDetails `json:"results"`
	Status  string        `json:"status"`
}

// newsItem mirrors one /v2/reference/news result.
type newsItem struct {
	Title        string `json:"title"`
	ArticleURL   string `json:"article_url"`
	PublishedUTC string `json:"published_utc"`
	ImageURL     string `json:"image_url"`
	Description  string `json:"description"`
	Publisher    struct {
		Name string `json:"name"`
	} `json:"publisher"`
}

type newsResponse struct {
	Results []newsItem `json:"results"`
}

// financialValue is one cell of a financials report, already labelled
// and positioned by the upstream.
type financialValue struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
	Order int      `json:"order"`
	Unit  string   `json:"unit"`
}

// financialsResult mirrors one /vX/reference/financials result.
type financialsResult struct {
	FiscalPeriod string                               `json:"fiscal_period"`
	FiscalYear   string                               `json:"fiscal_year"`
	EndDate      string                               `json:"end_date"`
	Financials   map[string]map[string]financialValue `json:"financials"`
}

type financialsResponse struct {
	Results []financialsResult `json:"results"`
	Status  string             `json:"status"`
}

// GetPreviousClose calls /v2/aggs/ticker/{ticker}/prev.
func (c *Client) GetPreviousClose(ctx context.Context, ticker string) (aggsResponse, error) {
	params := url.Values{"adjusted": {"true"}}
	var out aggsResponse
	if err := c.get(ctx, "get_quote", "/v2/aggs/ticker/"+url.PathEscape(ticker)+"/prev", params, &out); err != nil {
		return aggsResponse{}, err
	}
	return out, nil
}

// GetAggregates calls /v2/aggs/ticker/{ticker}/range/{mult}/{timespan}/{from}/{to}.
func (c *Client) GetAggregates(ctx context.Context, ticker, multiplier, timespan, from, to string) (aggsResponse, error) {
	params := url.Values{"adjusted": {"true"}, "sort": {"asc"}, "limit": {"50000"}}
	path := "/v2/aggs/ticker/" + url.PathEscape(ticker) + "/range/" + multiplier + "/" + timespan + "/" + from + "/" + to
	var out aggsResponse
	if err := c.get(ctx, "get_historical", path, params, &out); err != nil {
		return aggsResponse{}, err
	}
	return out, nil
}

// GetTickerDetails calls /v3/reference/tickers/{ticker}.
func (c *Client) GetTickerDetails(ctx context.Context, ticker string) (tickerDetails, error) {
	var out tickerDetailsResponse
	if err := c.get(ctx, "get_company_profile", "/v3/reference/tickers/"+url.PathEscape(ticker), nil, &out); err != nil {
		return tickerDetails{}, err
	}
	return out.Results, nil
}

// GetNews calls /v2/reference/news.
func (c *Client) GetNews(ctx context.Context, ticker string, limit int) ([]newsItem, error) {
	params := url.Values{"ticker": {ticker}, "limit": {strconv.Itoa(limit)}, "order": {"desc"}}
	var out newsResponse
	if err := c.get(ctx, "get_news", "/v2/reference/news", params, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// GetFinancials calls /vX/reference/financials. timeframe is "annual"
// or "quarterly".
func (c *Client) GetFinancials(ctx context.Context, ticker, timeframe string) ([]financialsResult, error) {
	params := url.Values{"ticker": {ticker}, "timeframe": {timeframe}, "limit": {"8"}}
	var out financialsResponse
	if err := c.get(ctx, "get_financial_statement", "/vX/reference/financials", params, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
