package yahoo

import (
	"context"

	"github.com/shopspring/decimal"

	"marketdata/internal/model"
	"marketdata/internal/provider"
)

// Adapter normalizes Yahoo Finance responses into canonical models.
type Adapter struct {
	client *Client
}

func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) ID() provider.ID { return provider.Yahoo }

// GetHistorical maps one chart result into bars. Yahoo emits parallel
// arrays with nulls where a point is missing; rows without a close are
// dropped rather than fabricated as zeros.
func (a *Adapter) GetHistorical(ctx context.Context, symbol string, rng model.Range, interval model.Interval) ([]model.HistoricalBar, error) {
	const op = "get_historical"
	result, err := a.client.GetChart(ctx, symbol, string(rng), string(interval))
	if err != nil {
		return nil, err
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, provider.Errorf(provider.Yahoo, provider.KindFormat, op, "chart result has no quote indicators")
	}
	q := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}
	bars := make([]model.HistoricalBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		bar := model.HistoricalBar{
			Timestamp: interval.BarTime(model.ParseEpoch(ts)),
			Close:     decimal.NewFromFloat(*q.Close[i]),
		}
		if i < len(q.Open) && q.Open[i] != nil {
			bar.Open = decimal.NewFromFloat(*q.Open[i])
		}
		if i < len(q.High) && q.High[i] != nil {
			bar.High = decimal.NewFromFloat(*q.High[i])
		}
		if i < len(q.Low) && q.Low[i] != nil {
			bar.Low = decimal.NewFromFloat(*q.Low[i])
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		if i < len(adj) {
			bar.AdjClose = model.DecimalPtr(adj[i])
		}
		bars = append(bars, bar)
	}
	model.SortBarsAscending(bars)
	return bars, nil
}

// GetCompanyProfile maps the assetProfile and price quoteSummary modules
// into one profile.
func (a *Adapter) GetCompanyProfile(ctx context.Context, symbol string) (model.CompanyProfile, error) {
	const op = "get_company_profile"
	result, err := a.client.GetQuoteSummary(ctx, symbol)
	if err != nil {
		return model.CompanyProfile{}, err
	}
	if result.Price == nil && result.AssetProfile == nil {
		return model.CompanyProfile{}, provider.Errorf(provider.Yahoo, provider.KindFormat, op, "quoteSummary has neither price nor assetProfile for %q", symbol)
	}
	p := model.CompanyProfile{
		Symbol:   model.NormalizeSymbol(symbol),
		Provider: string(provider.Yahoo),
	}
	if price := result.Price; price != nil {
		p.Name = price.LongName
		if p.Name == "" {
			p.Name = price.ShortName
		}
		p.Currency = price.Currency
		p.Exchange = price.ExchangeName
		p.MarketCap = model.DecimalPtr(price.MarketCap.Raw)
	}
	if profile := result.AssetProfile; profile != nil {
		p.Sector = profile.Sector
		p.Industry = profile.Industry
		p.Description = profile.LongBusinessSummary
		p.Country = profile.Country
		p.Website = profile.Website
		p.Employees = profile.FullTimeEmployees
	}
	return p, nil
}
