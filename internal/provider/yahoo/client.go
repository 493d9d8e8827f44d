// Package yahoo adapts the Yahoo Finance v8 chart and v10 quoteSummary
// APIs. Yahoo needs no credentials but is picky about the User-Agent,
// so requests go through httpx.Client which always sets one.
package yahoo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"marketdata/internal/httpx"
	"marketdata/internal/provider"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client is a raw Yahoo Finance client.
//
//go:generate mockgen -package=yahoo_test -destination=mock_doer_test.go marketdata/internal/httpx Doer
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

// NewClient creates a raw Yahoo Finance client.
func NewClient(options ...Option) *Client {
	c := &Client{baseURL: defaultBaseURL, httpClient: http.DefaultClient}
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
		return provider.NewError(provider.Yahoo, provider.KindNetwork, op, err)
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.httpClient.Do(req)
	if err != nil {
		return provider.ClassifyHTTP(provider.Yahoo, op, 0, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return provider.ClassifyHTTP(provider.Yahoo, op, res.StatusCode, nil)
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return provider.Errorf(provider.Yahoo, provider.KindFormat, op, "decode response: %v", err)
	}
	return nil
}

// chartResponse mirrors /v8/finance/chart/{symbol}. Value arrays run
// parallel to Timestamp and may carry nulls for missing points.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency           string  `json:"currency"`
		Symbol             string  `json:"symbol"`
		ExchangeName       string  `json:"exchangeName"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		PreviousClose      float64 `json:"chartPreviousClose"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// quoteSummaryResponse mirrors /v10/finance/quoteSummary/{symbol}.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *apiError            `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	AssetProfile *struct {
		Sector              string `json:"sector"`
		Industry            string `json:"industry"`
		LongBusinessSummary string `json:"longBusinessSummary"`
		Country             string `json:"country"`
		Website             string `json:"website"`
		FullTimeEmployees   *int64 `json:"fullTimeEmployees"`
	} `json:"assetProfile"`
	Price *struct {
		LongName     string `json:"longName"`
		ShortName    string `json:"shortName"`
		Currency     string `json:"currency"`
		ExchangeName string `json:"exchangeName"`
		MarketCap    struct {
			Raw *float64 `json:"raw"`
		} `json:"marketCap"`
	} `json:"price"`
}

// GetChart calls /v8/finance/chart/{symbol} for one range and interval.
func (c *Client) GetChart(ctx context.Context, symbol, rng, interval string) (chartResult, error) {
	const op = "get_historical"
	params := url.Values{
		"range":    {rng},
		"interval": {interval},
		"events":   {"div,splits"},
	}
	var out chartResponse
	if err := c.get(ctx, op, "/v8/finance/chart/"+url.PathEscape(symbol), params, &out); err != nil {
		return chartResult{}, err
	}
	if out.Chart.Error != nil {
		return chartResult{}, provider.Errorf(provider.Yahoo, provider.KindFormat, op, "chart error: %s", out.Chart.Error.Description)
	}
	if len(out.Chart.Result) == 0 {
		return chartResult{}, provider.Errorf(provider.Yahoo, provider.KindFormat, op, "empty chart result for %q", symbol)
	}
	return out.Chart.Result[0], nil
}

// GetQuoteSummary calls /v10/finance/quoteSummary/{symbol} with the
// assetProfile and price modules.
func (c *Client) GetQuoteSummary(ctx context.Context, symbol string) (quoteSummaryResult, error) {
	const op = "get_company_profile"
	params := url.Values{"modules": {"assetProfile,price"}}
	var out quoteSummaryResponse
	if err := c.get(ctx, op, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &out); err != nil {
		return quoteSummaryResult{}, err
	}
	if out.QuoteSummary.Error != nil {
		return quoteSummaryResult{}, provider.Errorf(provider.Yahoo, provider.KindFormat, op, "quoteSummary error: %s", out.QuoteSummary.Error.Description)
	}
	if len(out.QuoteSummary.Result) == 0 {
		return quoteSummaryResult{}, provider.Errorf(provider.Yahoo, provider.KindFormat, op, "empty quoteSummary result for %q", symbol)
	}
	return out.QuoteSummary.Result[0], nil
}
