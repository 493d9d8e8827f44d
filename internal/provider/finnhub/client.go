// Package finnhub adapts the Finnhub REST API. The API key travels in
// the X-Finnhub-Token header, never in the URL, so it cannot leak into
// request logs.
package finnhub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"marketdata/internal/httpx"
	"marketdata/internal/provider"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Client is a raw Finnhub API client.
//
//go:generate mockgen -package=finnhub_test -destination=mock_doer_test.go marketdata/internal/httpx Doer
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

// NewClient creates a raw Finnhub client.
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
		return provider.NewError(provider.Finnhub, provider.KindNetwork, op, err)
	}
	req.Header.Set("X-Finnhub-Token", c.apiKey)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return provider.ClassifyHTTP(provider.Finnhub, op, 0, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return provider.ClassifyHTTP(provider.Finnhub, op, res.StatusCode, nil)
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return provider.Errorf(provider.Finnhub, provider.KindFormat, op, "decode response: %v", err)
	}
	return nil
}

// quote mirrors /quote. Finnhub answers 200 with all-zero fields for
// unknown symbols; T==0 is the tell.
type quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// companyProfile mirrors /stock/profile2. MarketCapitalization is
// reported in millions.
type companyProfile struct {
	Country              string  `json:"country"`
	Currency             string  `json:"currency"`
	Exchange             string  `json:"exchange"`
	Industry             string  `json:"finnhubIndustry"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	WebURL               string  `json:"weburl"`
}

// newsItem mirrors one /company-news row.
type newsItem struct {
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// transcriptRef mirrors one /stock/transcripts/list entry.
type transcriptRef struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Time    string `json:"time"`
	Year    int    `json:"year"`
	Quarter int    `json:"quarter"`
}

type transcriptList struct {
	Symbol      string          `json:"symbol"`
	Transcripts []transcriptRef `json:"transcripts"`
}

// transcript mirrors /stock/transcripts.
type transcript struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	Quarter     int    `json:"quarter"`
	Participant []struct {
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"participant"`
	Transcript []struct {
		Name   string   `json:"name"`
		Speech []string `json:"speech"`
	} `json:"transcript"`
}

// GetQuote calls /quote.
func (c *Client) GetQuote(ctx context.Context, symbol string) (quote, error) {
	var out quote
	if err := c.get(ctx, "get_quote", "/quote", url.Values{"symbol": {symbol}}, &out); err != nil {
		return quote{}, err
	}
	return out, nil
}

// GetCompanyProfile calls /stock/profile2.
func (c *Client) GetCompanyProfile(ctx context.Context, symbol string) (companyProfile, error) {
	var out companyProfile
	if err := c.get(ctx, "get_company_profile", "/stock/profile2", url.Values{"symbol": {symbol}}, &out); err != nil {
		return companyProfile{}, err
	}
	return out, nil
}

// GetCompanyNews calls /company-news for a closed date window
// (YYYY-MM-DD bounds, inclusive).
func (c *Client) GetCompanyNews(ctx context.Context, symbol, from, to string) ([]newsItem, error) {
	params := url.Values{"symbol": {symbol}, "from": {from}, "to": {to}}
	var out []newsItem
	if err := c.get(ctx, "get_news", "/company-news", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTranscripts calls /stock/transcripts/list.
func (c *Client) ListTranscripts(ctx context.Context, symbol string) (transcriptList, error) {
	var out transcriptList
	if err := c.get(ctx, "get_earnings_transcript", "/stock/transcripts/list", url.Values{"symbol": {symbol}}, &out); err != nil {
		return transcriptList{}, err
	}
	return out, nil
}

// GetTranscript calls /stock/transcripts for one transcript id.
func (c *Client) GetTranscript(ctx context.Context, id string) (transcript, error) {
	var out transcript
	if err := c.get(ctx, "get_earnings_transcript", "/stock/transcripts", url.Values{"id": {id}}, &out); err != nil {
		return transcript{}, err
	}
	return out, nil
}
