package polygon

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"marketdata/internal/model"
	"marketdata/internal/provider"
)

const newsLimit = 20

// statementSections maps canonical statement kinds onto the financials
// payload section keys.
var statementSections = map[model.StatementKind]string{
	model.StatementIncome:   "income_statement",
	model.StatementBalance:  "balance_sheet",
	model.StatementCashflow: "cash_flow_statement",
}

// intervalSpans maps canonical intervals onto aggregate
// multiplier/timespan pairs.
var intervalSpans = map[model.Interval]struct {
	multiplier string
	timespan   string
}{
	model.Interval1Min:  {"1", "minute"},
	model.Interval5Min:  {"5", "minute"},
	model.Interval15Min: {"15", "minute"},
	model.Interval30Min: {"30", "minute"},
	model.Interval1H:    {"1", "hour"},
	model.Interval1D:    {"1", "day"},
	model.Interval1W:    {"1", "week"},
	model.Interval1M:    {"1", "month"},
}

// Adapter normalizes Polygon responses into canonical models.
type Adapter struct {
	client *Client
	now    func() time.Time
}

func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client, now: time.Now}
}

func (a *Adapter) ID() provider.ID { return provider.Polygon }

// GetQuote serves the previous session's aggregate as a quote. Polygon
// has no free real-time quote surface, so this is the closest
// equivalent.
func (a *Adapter) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	const op = "get_quote"
	res, err := a.client.GetPreviousClose(ctx, symbol)
	if err != nil {
		return model.Quote{}, err
	}
	if len(res.Results) == 0 {
		return model.Quote{}, provider.Errorf(provider.Polygon, provider.KindFormat, op, "no previous close for %q", symbol)
	}
	bar := res.Results[0]
	vol := int64(bar.Volume)
	q := model.Quote{
		Symbol:   model.NormalizeSymbol(symbol),
		Price:    decimal.NewFromFloat(bar.Close),
		Volume:   &vol,
		Provider: string(provider.Polygon),
	}
	open := decimal.NewFromFloat(bar.Open)
	high := decimal.NewFromFloat(bar.High)
	low := decimal.NewFromFloat(bar.Low)
	q.Open, q.High, q.Low = &open, &high, &low
	return q, nil
}

// GetHistorical maps aggregate bars. Polygon already sorts ascending
// when asked, but the canonical ordering is enforced here regardless.
func (a *Adapter) GetHistorical(ctx context.Context, symbol string, rng model.Range, interval model.Interval) ([]model.HistoricalBar, error) {
	const op = "get_historical"
	span, ok := intervalSpans[interval]
	if !ok {
		return nil, provider.Errorf(provider.Polygon, provider.KindFormat, op, "interval %s not served", interval)
	}
	to := a.now().UTC()
	from := rangeStart(to, rng)
	res, err := a.client.GetAggregates(ctx, symbol, span.multiplier, span.timespan, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	bars := make([]model.HistoricalBar, 0, len(res.Results))
	for _, b := range res.Results {
		bars = append(bars, model.HistoricalBar{
			Timestamp: interval.BarTime(model.ParseEpoch(b.Timestamp)),
			Open:      decimal.NewFromFloat(b.Open),
			High:      decimal.NewFromFloat(b.High),
			Low:       decimal.NewFromFloat(b.Low),
			Close:     decimal.NewFromFloat(b.Close),
			Volume:    int64(b.Volume),
		})
	}
	model.SortBarsAscending(bars)
	return bars, nil
}

// GetCompanyProfile maps ticker details.
func (a *Adapter) GetCompanyProfile(ctx context.Context, symbol string) (model.CompanyProfile, error) {
	raw, err := a.client.GetTickerDetails(ctx, symbol)
	if err != nil {
		return model.CompanyProfile{}, err
	}
	if raw.Ticker == "" {
		return model.CompanyProfile{}, provider.Errorf(provider.Polygon, provider.KindFormat, "get_company_profile", "empty ticker details for %q", symbol)
	}
	return model.CompanyProfile{
		Symbol:      model.NormalizeSymbol(raw.Ticker),
		Name:        raw.Name,
		Industry:    raw.SICDescription,
		Description: raw.Description,
		Country:     raw.Locale,
		Currency:    raw.CurrencyName,
		Exchange:    raw.PrimaryExchange,
		Website:     raw.HomepageURL,
		MarketCap:   model.DecimalPtr(raw.MarketCap),
		Employees:   raw.TotalEmployees,
		Provider:    string(provider.Polygon),
	}, nil
}

// GetNews maps news results. The RFC3339 published_utc string passes
// through as-is.
func (a *Adapter) GetNews(ctx context.Context, symbol string) ([]model.NewsArticle, error) {
	rows, err := a.client.GetNews(ctx, symbol, newsLimit)
	if err != nil {
		return nil, err
	}
	out := make([]model.NewsArticle, 0, len(rows))
	for _, r := range rows {
		if r.Title == "" || r.ArticleURL == "" {
			continue
		}
		out = append(out, model.NewsArticle{
			Title:         r.Title,
			Link:          r.ArticleURL,
			Source:        r.Publisher.Name,
			ImageURL:      r.ImageURL,
			PublishedTime: r.PublishedUTC,
			Summary:       r.Description,
			Provider:      string(provider.Polygon),
		})
	}
	return out, nil
}

// GetFinancialStatement pivots the requested section of each financials
// report into labelled line items ordered by the upstream's own order
// field.
func (a *Adapter) GetFinancialStatement(ctx context.Context, symbol string, kind model.StatementKind, freq model.Frequency) (model.FinancialStatement, error) {
	const op = "get_financial_statement"
	section, ok := statementSections[kind]
	if !ok {
		return model.FinancialStatement{}, provider.Errorf(provider.Polygon, provider.KindFormat, op, "unknown statement kind %q", kind)
	}
	timeframe := "annual"
	if freq == model.FrequencyQuarterly {
		timeframe = "quarterly"
	}
	reports, err := a.client.GetFinancials(ctx, symbol, timeframe)
	if err != nil {
		return model.FinancialStatement{}, err
	}
	if len(reports) == 0 {
		return model.FinancialStatement{}, provider.Errorf(provider.Polygon, provider.KindFormat, op, "no %s financials for %q", timeframe, symbol)
	}

	type position struct {
		order int
		index int
	}
	seen := map[string]position{}
	var items []model.LineItem
	for _, report := range reports {
		cells, ok := report.Financials[section]
		if !ok {
			continue
		}
		for _, cell := range cells {
			label := cell.Label
			if label == "" {
				continue
			}
			pos, ok := seen[label]
			if !ok {
				pos = position{order: cell.Order, index: len(items)}
				seen[label] = pos
				items = append(items, model.LineItem{Label: label, Values: map[string]decimal.NullDecimal{}})
			}
			items[pos.index].Values[report.EndDate] = model.CellFromFloat(cell.Value)
		}
	}
	if len(items) == 0 {
		return model.FinancialStatement{}, provider.Errorf(provider.Polygon, provider.KindFormat, op, "financials for %q carry no %s section", symbol, section)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return seen[items[i].Label].order < seen[items[j].Label].order
	})
	return model.FinancialStatement{
		Symbol:    model.NormalizeSymbol(symbol),
		Kind:      kind,
		Frequency: freq,
		LineItems: items,
		Provider:  string(provider.Polygon),
	}, nil
}

// rangeStart converts a range token into the aggregate window start.
func rangeStart(now time.Time, rng model.Range) time.Time {
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
	// max: Polygon's aggregate history starts in 2003.
	return time.Date(2003, time.January, 1, 0, 0, 0, 0, time.UTC)
}
