package finnhub

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketdata/internal/model"
	"marketdata/internal/provider"
)

// newsWindow is how far back GetNews looks. Finnhub requires explicit
// date bounds on /company-news.
const newsWindow = 30 * 24 * time.Hour

// Adapter normalizes Finnhub responses into canonical models.
type Adapter struct {
	client *Client
	now    func() time.Time
}

func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client, now: time.Now}
}

func (a *Adapter) ID() provider.ID { return provider.Finnhub }

// GetQuote maps /quote fields. Finnhub reports zeros with a zero
// timestamp for unknown symbols, which must not pass as a real quote.
func (a *Adapter) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	raw, err := a.client.GetQuote(ctx, symbol)
	if err != nil {
		return model.Quote{}, err
	}
	if raw.Timestamp == 0 && raw.Current == 0 {
		return model.Quote{}, provider.Errorf(provider.Finnhub, provider.KindFormat, "get_quote", "no quote data for %q", symbol)
	}
	return model.Quote{
		Symbol:        model.NormalizeSymbol(symbol),
		Price:         decimal.NewFromFloat(raw.Current),
		Change:        floatPtr(raw.Change),
		ChangePercent: floatPtr(raw.ChangePercent),
		Open:          floatPtr(raw.Open),
		High:          floatPtr(raw.High),
		Low:           floatPtr(raw.Low),
		PreviousClose: floatPtr(raw.PreviousClose),
		Provider:      string(provider.Finnhub),
	}, nil
}

// GetCompanyProfile maps /stock/profile2. Market cap is scaled up from
// the millions Finnhub reports in.
func (a *Adapter) GetCompanyProfile(ctx context.Context, symbol string) (model.CompanyProfile, error) {
	raw, err := a.client.GetCompanyProfile(ctx, symbol)
	if err != nil {
		return model.CompanyProfile{}, err
	}
	if raw.Ticker == "" && raw.Name == "" {
		return model.CompanyProfile{}, provider.Errorf(provider.Finnhub, provider.KindFormat, "get_company_profile", "no profile data for %q", symbol)
	}
	p := model.CompanyProfile{
		Symbol:   model.NormalizeSymbol(symbol),
		Name:     raw.Name,
		Industry: raw.Industry,
		Country:  raw.Country,
		Currency: raw.Currency,
		Exchange: raw.Exchange,
		Website:  raw.WebURL,
		Provider: string(provider.Finnhub),
	}
	if raw.MarketCapitalization > 0 {
		mc := decimal.NewFromFloat(raw.MarketCapitalization).Shift(6)
		p.MarketCap = &mc
	}
	return p, nil
}

// GetNews maps /company-news over the trailing window. Epoch seconds
// become an RFC3339 published time string.
func (a *Adapter) GetNews(ctx context.Context, symbol string) ([]model.NewsArticle, error) {
	to := a.now().UTC()
	from := to.Add(-newsWindow)
	rows, err := a.client.GetCompanyNews(ctx, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	out := make([]model.NewsArticle, 0, len(rows))
	for _, r := range rows {
		if r.Headline == "" || r.URL == "" {
			continue
		}
		article := model.NewsArticle{
			Title:    r.Headline,
			Link:     r.URL,
			Source:   r.Source,
			ImageURL: r.Image,
			Summary:  r.Summary,
			Provider: string(provider.Finnhub),
		}
		if r.Datetime > 0 {
			article.PublishedTime = model.ParseEpoch(r.Datetime).Format(time.RFC3339)
		}
		out = append(out, article)
	}
	return out, nil
}

// GetEarningsTranscript resolves the transcript id for the requested
// quarter from the symbol's transcript list, then fetches and flattens
// the speeches.
func (a *Adapter) GetEarningsTranscript(ctx context.Context, symbol string, quarter model.Quarter, year int) (model.EarningsTranscript, error) {
	const op = "get_earnings_transcript"
	list, err := a.client.ListTranscripts(ctx, symbol)
	if err != nil {
		return model.EarningsTranscript{}, err
	}
	var id string
	for _, ref := range list.Transcripts {
		if ref.Year == year && ref.Quarter == quarter.Number() {
			id = ref.ID
			break
		}
	}
	if id == "" {
		return model.EarningsTranscript{}, provider.Errorf(provider.Finnhub, provider.KindFormat, op, "no transcript for %s %s %d", symbol, quarter, year)
	}
	raw, err := a.client.GetTranscript(ctx, id)
	if err != nil {
		return model.EarningsTranscript{}, err
	}
	var b strings.Builder
	for _, section := range raw.Transcript {
		for _, speech := range section.Speech {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(section.Name)
			b.WriteString(": ")
			b.WriteString(speech)
		}
	}
	participants := make([]string, 0, len(raw.Participant))
	for _, p := range raw.Participant {
		name := p.Name
		if p.Role != "" {
			name += " (" + p.Role + ")"
		}
		participants = append(participants, name)
	}
	return model.EarningsTranscript{
		Symbol:       model.NormalizeSymbol(symbol),
		Quarter:      quarter,
		Year:         year,
		Transcript:   b.String(),
		Participants: participants,
		Provider:     string(provider.Finnhub),
	}, nil
}

func floatPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
