package financequery

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"marketdata/internal/model"
	"marketdata/internal/provider"
)

// Adapter normalizes Finance Query responses into canonical models.
type Adapter struct {
	client *Client
}

func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) ID() provider.ID { return provider.FinanceQuery }

// GetQuote fetches a detailed quote and maps its display strings into
// canonical numerics.
func (a *Adapter) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rows, err := a.client.GetDetailedQuotes(ctx, []string{symbol})
	if err != nil {
		return model.Quote{}, err
	}
	if len(rows) == 0 {
		return model.Quote{}, provider.Errorf(provider.FinanceQuery, provider.KindFormat, "get_quote", "no quote returned for %q", symbol)
	}
	return mapDetailedQuote(rows[0])
}

func mapDetailedQuote(raw detailedQuote) (model.Quote, error) {
	const op = "get_quote"
	if strings.TrimSpace(raw.Symbol) == "" {
		return model.Quote{}, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "quote row missing symbol")
	}
	price, err := model.ParseDecimal(raw.Price)
	if err != nil {
		return model.Quote{}, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "price %q: %v", raw.Price, err)
	}
	q := model.Quote{
		Symbol:   model.NormalizeSymbol(raw.Symbol),
		Name:     raw.Name,
		Price:    price,
		Volume:   raw.Volume,
		Provider: string(provider.FinanceQuery),
	}
	// Display-string fields degrade to absent rather than failing the
	// whole quote; only price is load-bearing.
	q.Change, _ = model.ParseOptionalDecimal(raw.Change)
	q.ChangePercent, _ = model.ParseOptionalDecimal(raw.PercentChange)
	q.Open, _ = model.ParseOptionalDecimal(raw.Open)
	q.High, _ = model.ParseOptionalDecimal(raw.High)
	q.Low, _ = model.ParseOptionalDecimal(raw.Low)
	q.PreMarketPrice, _ = model.ParseOptionalDecimal(raw.PreMarketPrice)
	q.AfterHoursPrice, _ = model.ParseOptionalDecimal(raw.AfterHoursPrice)
	q.MarketCap, _ = model.ParseOptionalDecimal(raw.MarketCap)
	return q, nil
}

// GetHistorical maps the timestamp-keyed response into an ascending bar
// sequence. Daily and coarser bars carry date-only timestamps; intraday
// bars keep the full time.
func (a *Adapter) GetHistorical(ctx context.Context, symbol string, rng model.Range, interval model.Interval) ([]model.HistoricalBar, error) {
	const op = "get_historical"
	points, err := a.client.GetHistorical(ctx, symbol, string(rng), string(interval))
	if err != nil {
		return nil, err
	}
	bars := make([]model.HistoricalBar, 0, len(points))
	for key, p := range points {
		ts, err := model.ParseBarTime(key)
		if err != nil {
			return nil, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "bar timestamp: %v", err)
		}
		bars = append(bars, model.HistoricalBar{
			Timestamp: interval.BarTime(ts),
			Open:      decimal.NewFromFloat(p.Open),
			High:      decimal.NewFromFloat(p.High),
			Low:       decimal.NewFromFloat(p.Low),
			Close:     decimal.NewFromFloat(p.Close),
			AdjClose:  model.DecimalPtr(p.AdjClose),
			Volume:    p.Volume,
		})
	}
	model.SortBarsAscending(bars)
	return bars, nil
}

// GetMarketMovers maps one movers list, trimming to the requested limit
// in case the upstream over-delivers.
func (a *Adapter) GetMarketMovers(ctx context.Context, kind model.MoverKind, limit int) ([]model.MarketMover, error) {
	const op = "get_market_movers"
	rows, err := a.client.GetMovers(ctx, string(kind), limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.MarketMover, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Symbol) == "" {
			return nil, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "mover row missing symbol")
		}
		price, err := model.ParseDecimal(r.Price)
		if err != nil {
			return nil, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "mover price %q: %v", r.Price, err)
		}
		change, err := model.ParseDecimal(r.Change)
		if err != nil {
			return nil, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "mover change %q: %v", r.Change, err)
		}
		pct, err := model.ParseDecimal(r.PercentChange)
		if err != nil {
			return nil, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "mover percent %q: %v", r.PercentChange, err)
		}
		out = append(out, model.MarketMover{
			Symbol:        model.NormalizeSymbol(r.Symbol),
			Name:          r.Name,
			Price:         price,
			Change:        change,
			ChangePercent: pct,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// GetNews passes article fields through; the published time stays the
// provider's display string ("3 hours ago") untouched.
func (a *Adapter) GetNews(ctx context.Context, symbol string) ([]model.NewsArticle, error) {
	rows, err := a.client.GetNews(ctx, symbol)
	if err != nil {
		return nil, err
	}
	out := make([]model.NewsArticle, 0, len(rows))
	for _, r := range rows {
		if r.Title == "" || r.Link == "" {
			return nil, provider.Errorf(provider.FinanceQuery, provider.KindFormat, "get_news", "news row missing title or link")
		}
		out = append(out, model.NewsArticle{
			Title:         r.Title,
			Link:          r.Link,
			Source:        r.Source,
			ImageURL:      r.Img,
			PublishedTime: r.Time,
			Provider:      string(provider.FinanceQuery),
		})
	}
	return out, nil
}

// SearchSymbols maps symbol lookup hits.
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
			Exchange: r.Exchange,
			Type:     r.Type,
		})
	}
	return out, nil
}

// GetSectorPerformance returns all sectors when symbol is empty, or the
// one sector the symbol belongs to. Percent strings are parsed here so
// the canonical model is numerically comparable.
func (a *Adapter) GetSectorPerformance(ctx context.Context, symbol string) ([]model.SectorPerformance, error) {
	if symbol == "" {
		rows, err := a.client.GetAllSectors(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]model.SectorPerformance, 0, len(rows))
		for _, r := range rows {
			sp, err := mapSector(r)
			if err != nil {
				return nil, err
			}
			out = append(out, sp)
		}
		return out, nil
	}
	row, err := a.client.GetSymbolSector(ctx, symbol)
	if err != nil {
		return nil, err
	}
	sp, err := mapSector(row)
	if err != nil {
		return nil, err
	}
	return []model.SectorPerformance{sp}, nil
}

func mapSector(raw sectorPerformance) (model.SectorPerformance, error) {
	const op = "get_sector_performance"
	if raw.Sector == "" {
		return model.SectorPerformance{}, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "sector row missing name")
	}
	out := model.SectorPerformance{Sector: raw.Sector}
	for _, f := range []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{raw.DayReturn, &out.DayReturn},
		{raw.YTDReturn, &out.YTDReturn},
		{raw.YearReturn, &out.YearReturn},
		{raw.ThreeYearReturn, &out.ThreeYearReturn},
		{raw.FiveYearReturn, &out.FiveYearReturn},
	} {
		d, err := model.ParseDecimal(f.raw)
		if err != nil {
			return model.SectorPerformance{}, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "sector return %q: %v", f.raw, err)
		}
		*f.dest = d
	}
	return out, nil
}

// GetMarketHours passes the status through verbatim.
func (a *Adapter) GetMarketHours(ctx context.Context) (model.MarketHours, error) {
	raw, err := a.client.GetMarketHours(ctx)
	if err != nil {
		return model.MarketHours{}, err
	}
	return model.MarketHours{Status: raw.Status, Reason: raw.Reason, Timestamp: raw.Timestamp}, nil
}

// GetSimilarStocks maps similar-stock rows into minimal quotes.
func (a *Adapter) GetSimilarStocks(ctx context.Context, symbol string, limit int) ([]model.Quote, error) {
	const op = "get_similar_stocks"
	rows, err := a.client.GetSimilar(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.Quote, 0, len(rows))
	for _, r := range rows {
		price, err := model.ParseDecimal(r.Price)
		if err != nil {
			return nil, provider.Errorf(provider.FinanceQuery, provider.KindFormat, op, "price %q: %v", r.Price, err)
		}
		q := model.Quote{
			Symbol:   model.NormalizeSymbol(r.Symbol),
			Name:     r.Name,
			Price:    price,
			Provider: string(provider.FinanceQuery),
		}
		q.Change, _ = model.ParseOptionalDecimal(r.Change)
		q.ChangePercent, _ = model.ParseOptionalDecimal(r.PercentChange)
		out = append(out, q)
	}
	return out, nil
}
