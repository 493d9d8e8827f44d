package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the normalized quote shape returned by all providers.
// Optional fields are nil when the serving provider does not report them.
type Quote struct {
	Symbol          string           `json:"symbol"`
	Name            string           `json:"name,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	Change          *decimal.Decimal `json:"change,omitempty"`
	ChangePercent   *decimal.Decimal `json:"change_percent,omitempty"`
	Open            *decimal.Decimal `json:"open,omitempty"`
	High            *decimal.Decimal `json:"high,omitempty"`
	Low             *decimal.Decimal `json:"low,omitempty"`
	PreviousClose   *decimal.Decimal `json:"previous_close,omitempty"`
	PreMarketPrice  *decimal.Decimal `json:"pre_market_price,omitempty"`
	AfterHoursPrice *decimal.Decimal `json:"after_hours_price,omitempty"`
	Volume          *int64           `json:"volume,omitempty"`
	MarketCap       *decimal.Decimal `json:"market_cap,omitempty"`
	Provider        string           `json:"provider"`
}

// HistoricalBar is one OHLCV row. Sequences are ordered ascending by
// Timestamp regardless of how the provider emitted them, so that the
// last element is always the latest bar.
type HistoricalBar struct {
	Timestamp time.Time        `json:"timestamp"`
	Open      decimal.Decimal  `json:"open"`
	High      decimal.Decimal  `json:"high"`
	Low       decimal.Decimal  `json:"low"`
	Close     decimal.Decimal  `json:"close"`
	AdjClose  *decimal.Decimal `json:"adj_close,omitempty"`
	Volume    int64            `json:"volume"`
}

// CompanyProfile describes a listed company. Only Symbol and Name are
// guaranteed to be present.
type CompanyProfile struct {
	Symbol      string           `json:"symbol"`
	Name        string           `json:"name"`
	Sector      string           `json:"sector,omitempty"`
	Industry    string           `json:"industry,omitempty"`
	Description string           `json:"description,omitempty"`
	Country     string           `json:"country,omitempty"`
	Currency    string           `json:"currency,omitempty"`
	Exchange    string           `json:"exchange,omitempty"`
	Website     string           `json:"website,omitempty"`
	MarketCap   *decimal.Decimal `json:"market_cap,omitempty"`
	Employees   *int64           `json:"employees,omitempty"`
	Provider    string           `json:"provider"`
}

// LineItem is a single labelled statement row. Values maps a period end
// date (or "TTM") to the reported figure; a cell the provider did not
// report is an invalid NullDecimal, never zero.
type LineItem struct {
	Label  string                         `json:"label"`
	Values map[string]decimal.NullDecimal `json:"values"`
}

// FinancialStatement holds one statement for one company. LineItems keep
// the exact order the provider emitted.
type FinancialStatement struct {
	Symbol    string        `json:"symbol"`
	Kind      StatementKind `json:"kind"`
	Frequency Frequency     `json:"frequency"`
	LineItems []LineItem    `json:"line_items"`
	Provider  string        `json:"provider"`
}

// NewsArticle keeps PublishedTime exactly as the provider sent it.
// Providers disagree wildly here (RFC3339, "3 hours ago", epoch strings),
// so parsing it would fabricate precision the source does not have.
type NewsArticle struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	Source        string `json:"source"`
	ImageURL      string `json:"image_url,omitempty"`
	PublishedTime string `json:"published_time,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Provider      string `json:"provider"`
}

// MarketMover is one row of a gainers/losers/actives list.
type MarketMover struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

// SectorPerformance stores return percentages as parsed decimals; the
// "+6.61%" formatting is stripped at the mapping boundary.
type SectorPerformance struct {
	Sector          string          `json:"sector"`
	DayReturn       decimal.Decimal `json:"day_return"`
	YTDReturn       decimal.Decimal `json:"ytd_return"`
	YearReturn      decimal.Decimal `json:"year_return"`
	ThreeYearReturn decimal.Decimal `json:"three_year_return"`
	FiveYearReturn  decimal.Decimal `json:"five_year_return"`
}

// SymbolSearchResult is one symbol lookup hit.
type SymbolSearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
}

// EarningsTranscript is one earnings call transcript.
type EarningsTranscript struct {
	Symbol       string   `json:"symbol"`
	Quarter      Quarter  `json:"quarter"`
	Year         int      `json:"year"`
	Transcript   string   `json:"transcript"`
	Participants []string `json:"participants,omitempty"`
	Provider     string   `json:"provider"`
}

// MarketHours reports whether the market is open. Timestamp is the
// provider's display string, passed through verbatim.
type MarketHours struct {
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
