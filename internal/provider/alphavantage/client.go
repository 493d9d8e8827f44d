// Package alphavantage adapts the Alpha Vantage REST API. Every call
// goes to /query with a function selector; the free tier answers rate
// limit hits as 200s with an in-band note, which get re-classified
// here so fallback treats them like any other 429.
package alphavantage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"marketdata/internal/httpx"
	"marketdata/internal/provider"
)

const defaultBaseURL = "https://www.alphavantage.co"

// Client is a raw Alpha Vantage API client.
//
//go:generate mockgen -package=alphavantage_test -destination=mock_doer_test.go marketdata/internal/httpx Doer
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

// NewClient creates a raw Alpha Vantage client.
func NewClient(apiKey string, options ...Option) *Client {
	c := &Client{baseURL: defaultBaseURL, apiKey: apiKey, httpClient: http.DefaultClient}
	for _, option := range options {
		option(c)
	}
	return c
}

// inBandError catches the notes Alpha Vantage smuggles into 200
// responses: "Note" and "Information" flag throttling, "Error Message"
// flags a bad request.
type inBandError struct {
	Note        string `json:"Note"`
	Information string `json:"Information"`
	ErrorMsg    string `json:"Error Message"`
}

func (c *Client) query(ctx context.Context, op string, params url.Values, dest any) error {
	params.Set("apikey", c.apiKey)
	u := c.baseURL + "/query?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return provider.NewError(provider.AlphaVantage, provider.KindNetwork, op, err)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return provider.ClassifyHTTP(provider.AlphaVantage, op, 0, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return provider.ClassifyHTTP(provider.AlphaVantage, op, res.StatusCode, nil)
	}
	var body json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "decode response: %v", err)
	}
	var note inBandError
	if err := json.Unmarshal(body, &note); err == nil {
		if note.Note != "" || note.Information != "" {
			return provider.Errorf(provider.AlphaVantage, provider.KindRateLimit, op, "throttled: %s%s", note.Note, note.Information)
		}
		if note.ErrorMsg != "" {
			return provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "api error: %s", note.ErrorMsg)
		}
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "decode response: %v", err)
	}
	return nil
}

// globalQuote mirrors the GLOBAL_QUOTE payload; every value is a string.
type globalQuote struct {
	Symbol        string `json:"01. symbol"`
	Open          string `json:"02. open"`
	High          string `json:"03. high"`
	Low           string `json:"04. low"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	PreviousClose string `json:"08. previous close"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

type globalQuoteResponse struct {
	GlobalQuote globalQuote `json:"Global Quote"`
}

// overview mirrors the OVERVIEW payload. Absent numerics arrive as the
// string "None".
type overview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Description          string `json:"Description"`
	Exchange             string `json:"Exchange"`
	Currency             string `json:"Currency"`
	Country              string `json:"Country"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
	OfficialSite         string `json:"OfficialSite"`
}

type searchMatch struct {
	Symbol string `json:"1. symbol"`
	Name   string `json:"2. name"`
	Type   string `json:"3. type"`
	Region string `json:"4. region"`
}

type searchResponse struct {
	BestMatches []searchMatch `json:"bestMatches"`
}

// dailyBar mirrors one TIME_SERIES_DAILY value.
type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type dailySeriesResponse struct {
	Series map[string]dailyBar `json:"Time Series (Daily)"`
}

// statementResponse mirrors INCOME_STATEMENT, BALANCE_SHEET and
// CASH_FLOW. Reports stay raw so the adapter can recover the field
// order the payload was emitted in.
type statementResponse struct {
	Symbol           string            `json:"symbol"`
	AnnualReports    []json.RawMessage `json:"annualReports"`
	QuarterlyReports []json.RawMessage `json:"quarterlyReports"`
}

// GetGlobalQuote calls function=GLOBAL_QUOTE.
func (c *Client) GetGlobalQuote(ctx context.Context, symbol string) (globalQuote, error) {
	params := url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}}
	var out globalQuoteResponse
	if err := c.query(ctx, "get_quote", params, &out); err != nil {
		return globalQuote{}, err
	}
	return out.GlobalQuote, nil
}

// GetOverview calls function=OVERVIEW.
func (c *Client) GetOverview(ctx context.Context, symbol string) (overview, error) {
	params := url.Values{"function": {"OVERVIEW"}, "symbol": {symbol}}
	var out overview
	if err := c.query(ctx, "get_company_profile", params, &out); err != nil {
		return overview{}, err
	}
	return out, nil
}

// SearchSymbols calls function=SYMBOL_SEARCH.
func (c *Client) SearchSymbols(ctx context.Context, keywords string) ([]searchMatch, error) {
	params := url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {keywords}}
	var out searchResponse
	if err := c.query(ctx, "search_symbols", params, &out); err != nil {
		return nil, err
	}
	return out.BestMatches, nil
}

// GetDailySeries calls function=TIME_SERIES_DAILY. outputsize is
// "compact" (trailing 100 sessions) or "full".
func (c *Client) GetDailySeries(ctx context.Context, symbol, outputsize string) (map[string]dailyBar, error) {
	params := url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {symbol},
		"outputsize": {outputsize},
	}
	var out dailySeriesResponse
	if err := c.query(ctx, "get_historical", params, &out); err != nil {
		return nil, err
	}
	return out.Series, nil
}

// GetStatement calls one of INCOME_STATEMENT, BALANCE_SHEET, CASH_FLOW.
func (c *Client) GetStatement(ctx context.Context, function, symbol string) (statementResponse, error) {
	params := url.Values{"function": {function}, "symbol": {symbol}}
	var out statementResponse
	if err := c.query(ctx, "get_financial_statement", params, &out); err != nil {
		return statementResponse{}, err
	}
	return out, nil
}
