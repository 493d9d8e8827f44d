package alphavantage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"marketdata/internal/model"
	"marketdata/internal/provider"
)

// statementFunctions maps canonical statement kinds onto the API
// function selectors.
var statementFunctions = map[model.StatementKind]string{
	model.StatementIncome:   "INCOME_STATEMENT",
	model.StatementBalance:  "BALANCE_SHEET",
	model.StatementCashflow: "CASH_FLOW",
}

// Adapter normalizes Alpha Vantage responses into canonical models.
type Adapter struct {
	client *Client
	now    func() time.Time
}

func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client, now: time.Now}
}

func (a *Adapter) ID() provider.ID { return provider.AlphaVantage }

// GetQuote maps a GLOBAL_QUOTE payload. An empty quote object means the
// symbol is unknown.
func (a *Adapter) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	const op = "get_quote"
	raw, err := a.client.GetGlobalQuote(ctx, symbol)
	if err != nil {
		return model.Quote{}, err
	}
	if raw.Symbol == "" {
		return model.Quote{}, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "empty global quote for %q", symbol)
	}
	price, err := model.ParseDecimal(raw.Price)
	if err != nil {
		return model.Quote{}, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "price %q: %v", raw.Price, err)
	}
	q := model.Quote{
		Symbol:   model.NormalizeSymbol(raw.Symbol),
		Price:    price,
		Provider: string(provider.AlphaVantage),
	}
	// Display-string fields degrade to absent rather than failing the
	// whole quote; only price is load-bearing.
	q.Open, _ = model.ParseOptionalDecimal(raw.Open)
	q.High, _ = model.ParseOptionalDecimal(raw.High)
	q.Low, _ = model.ParseOptionalDecimal(raw.Low)
	q.PreviousClose, _ = model.ParseOptionalDecimal(raw.PreviousClose)
	q.Change, _ = model.ParseOptionalDecimal(raw.Change)
	q.ChangePercent, _ = model.ParseOptionalDecimal(raw.ChangePercent)
	if v, err := model.ParseDecimal(raw.Volume); err == nil {
		vol := v.IntPart()
		q.Volume = &vol
	}
	return q, nil
}

// GetCompanyProfile maps an OVERVIEW payload. Absent numerics arrive as
// the literal string "None" and become nil.
func (a *Adapter) GetCompanyProfile(ctx context.Context, symbol string) (model.CompanyProfile, error) {
	raw, err := a.client.GetOverview(ctx, symbol)
	if err != nil {
		return model.CompanyProfile{}, err
	}
	if raw.Symbol == "" {
		return model.CompanyProfile{}, provider.Errorf(provider.AlphaVantage, provider.KindFormat, "get_company_profile", "empty overview for %q", symbol)
	}
	p := model.CompanyProfile{
		Symbol:      model.NormalizeSymbol(raw.Symbol),
		Name:        raw.Name,
		Sector:      raw.Sector,
		Industry:    raw.Industry,
		Description: raw.Description,
		Country:     raw.Country,
		Currency:    raw.Currency,
		Exchange:    raw.Exchange,
		Website:     raw.OfficialSite,
		Provider:    string(provider.AlphaVantage),
	}
	p.MarketCap, _ = model.ParseOptionalDecimal(raw.MarketCapitalization)
	return p, nil
}

// SearchSymbols maps SYMBOL_SEARCH best matches. The region stands in
// for an exchange name, which Alpha Vantage does not report.
func (a *Adapter) SearchSymbols(ctx context.Context, query string) ([]model.SymbolSearchResult, error) {
	rows, err := a.client.SearchSymbols(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]model.SymbolSearchResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.SymbolSearchResult{
			Symbol:   r.Symbol,
			Name:     r.Name,
			Exchange: r.Region,
			Type:     r.Type,
		})
	}
	return out, nil
}

// GetHistorical serves daily bars from TIME_SERIES_DAILY, clipped to
// the requested range. Alpha Vantage has no keyed intraday surface
// here, so finer intervals report a format failure and let the chain
// move on to a provider that has one.
func (a *Adapter) GetHistorical(ctx context.Context, symbol string, rng model.Range, interval model.Interval) ([]model.HistoricalBar, error) {
	const op = "get_historical"
	if interval != model.Interval1D {
		return nil, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "interval %s not served", interval)
	}
	series, err := a.client.GetDailySeries(ctx, symbol, outputSize(rng))
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "empty daily series for %q", symbol)
	}
	cutoff := rangeCutoff(a.now().UTC(), rng)
	bars := make([]model.HistoricalBar, 0, len(series))
	for date, row := range series {
		ts, err := model.ParseBarTime(date)
		if err != nil {
			return nil, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "bar date: %v", err)
		}
		if ts.Before(cutoff) {
			continue
		}
		bar := model.HistoricalBar{Timestamp: ts}
		for _, cell := range []struct {
			raw  string
			dest *decimal.Decimal
		}{
			{row.Open, &bar.Open},
			{row.High, &bar.High},
			{row.Low, &bar.Low},
			{row.Close, &bar.Close},
		} {
			d, err := model.ParseDecimal(cell.raw)
			if err != nil {
				return nil, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "bar value %q: %v", cell.raw, err)
			}
			*cell.dest = d
		}
		if v, err := model.ParseDecimal(row.Volume); err == nil {
			bar.Volume = v.IntPart()
		}
		bars = append(bars, bar)
	}
	model.SortBarsAscending(bars)
	return bars, nil
}

// GetFinancialStatement pivots period-keyed reports into labelled line
// items. Labels keep the order of the first report; cells a period did
// not report stay invalid, never zero.
func (a *Adapter) GetFinancialStatement(ctx context.Context, symbol string, kind model.StatementKind, freq model.Frequency) (model.FinancialStatement, error) {
	const op = "get_financial_statement"
	function, ok := statementFunctions[kind]
	if !ok {
		return model.FinancialStatement{}, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "unknown statement kind %q", kind)
	}
	raw, err := a.client.GetStatement(ctx, function, symbol)
	if err != nil {
		return model.FinancialStatement{}, err
	}
	reports := raw.AnnualReports
	if freq == model.FrequencyQuarterly {
		reports = raw.QuarterlyReports
	}
	if len(reports) == 0 {
		return model.FinancialStatement{}, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "no %s reports for %q", freq, symbol)
	}

	seen := map[string]int{}
	items := []model.LineItem{}
	for _, report := range reports {
		keys, values, err := decodeReport(report)
		if err != nil {
			return model.FinancialStatement{}, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "report: %v", err)
		}
		period := values["fiscalDateEnding"]
		if period == "" {
			return model.FinancialStatement{}, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "report missing fiscalDateEnding")
		}
		for _, key := range keys {
			if key == "fiscalDateEnding" || key == "reportedCurrency" {
				continue
			}
			idx, ok := seen[key]
			if !ok {
				idx = len(items)
				seen[key] = idx
				items = append(items, model.LineItem{Label: key, Values: map[string]decimal.NullDecimal{}})
			}
			cell, err := model.ParseCell(values[key])
			if err != nil {
				return model.FinancialStatement{}, provider.Errorf(provider.AlphaVantage, provider.KindFormat, op, "cell %s[%s]=%q: %v", key, period, values[key], err)
			}
			items[idx].Values[period] = cell
		}
	}
	return model.FinancialStatement{
		Symbol:    model.NormalizeSymbol(symbol),
		Kind:      kind,
		Frequency: freq,
		LineItems: items,
		Provider:  string(provider.AlphaVantage),
	}, nil
}

// decodeReport returns a report's keys in emission order along with its
// values. encoding/json maps forget order, so keys come from a token
// walk.
func decodeReport(report json.RawMessage) ([]string, map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(report))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("report is not an object")
	}
	var keys []string
	values := map[string]string{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("non-string report key")
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		switch v := valTok.(type) {
		case string:
			values[key] = v
		case nil:
			values[key] = ""
		default:
			values[key] = fmt.Sprint(v)
		}
	}
	return keys, values, nil
}

// outputSize picks compact (trailing 100 sessions) when the range fits
// inside it, full otherwise.
func outputSize(rng model.Range) string {
	switch rng {
	case model.Range1D, model.Range5D, model.Range1M, model.Range3M:
		return "compact"
	}
	return "full"
}

// rangeCutoff converts a range token into the earliest admissible bar
// timestamp.
func rangeCutoff(now time.Time, rng model.Range) time.Time {
	switch rng {
	case model.Range1D:
		return now.AddDate(0, 0, -1)
	case model.Range5D:
		return now.AddDate(0, 0, -7)
	case model.Range1M:
		return now.AddDate(0, -1, 0)
	case model.Range3M:
		return now.AddDate(0, -3, 0)
	case model.Range6M:
		return now.AddDate(0, -6, 0)
	case model.RangeYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case model.Range1Y:
		return now.AddDate(-1, 0, 0)
	case model.Range5Y:
		return now.AddDate(-5, 0, 0)
	}
	return time.Time{}
}
