package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"marketdata/internal/cache"
	"marketdata/internal/model"
	"marketdata/internal/orchestrator"
	"marketdata/internal/provider"
)

// marketData is the slice of the orchestrator the HTTP layer consumes.
// Keeping it an interface lets handler tests run against a stub.
type marketData interface {
	GetQuote(ctx context.Context, symbol string, options ...orchestrator.CallOption) (model.Quote, error)
	GetQuotes(ctx context.Context, symbols []string, options ...orchestrator.CallOption) (orchestrator.BatchResult, error)
	GetHistorical(ctx context.Context, symbol string, rng model.Range, interval model.Interval, options ...orchestrator.CallOption) ([]model.HistoricalBar, error)
	GetCompanyProfile(ctx context.Context, symbol string, options ...orchestrator.CallOption) (model.CompanyProfile, error)
	GetFinancialStatement(ctx context.Context, symbol string, kind model.StatementKind, freq model.Frequency, options ...orchestrator.CallOption) (model.FinancialStatement, error)
	GetNews(ctx context.Context, symbol string, options ...orchestrator.CallOption) ([]model.NewsArticle, error)
	GetMarketMovers(ctx context.Context, kind model.MoverKind, limit int, options ...orchestrator.CallOption) ([]model.MarketMover, error)
	GetSectorPerformance(ctx context.Context, symbol string, options ...orchestrator.CallOption) ([]model.SectorPerformance, error)
	GetEarningsTranscript(ctx context.Context, symbol string, quarter model.Quarter, year int, options ...orchestrator.CallOption) (model.EarningsTranscript, error)
	SearchSymbols(ctx context.Context, query string, options ...orchestrator.CallOption) ([]model.SymbolSearchResult, error)
	GetMarketHours(ctx context.Context, options ...orchestrator.CallOption) (model.MarketHours, error)
	GetSimilarStocks(ctx context.Context, symbol string, limit int, options ...orchestrator.CallOption) ([]model.Quote, error)
}

type server struct {
	data marketData
	log  zerolog.Logger

	// Market-wide lists change slowly compared to how often dashboards
	// poll them, so they get a short response cache.
	movers  *cache.Cache[[]model.MarketMover]
	sectors *cache.Cache[[]model.SectorPerformance]
	hours   *cache.Cache[model.MarketHours]
}

func newServer(data marketData, log zerolog.Logger, cacheTTL time.Duration) *server {
	return &server{
		data:    data,
		log:     log,
		movers:  cache.New[[]model.MarketMover](cacheTTL, 16),
		sectors: cache.New[[]model.SectorPerformance](cacheTTL, 32),
		hours:   cache.New[model.MarketHours](cacheTTL, 1),
	}
}

func (s *server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/quote", s.getOnly(s.handleQuote))
	mux.HandleFunc("/api/quotes", s.handleQuotes)
	mux.HandleFunc("/api/historical", s.getOnly(s.handleHistorical))
	mux.HandleFunc("/api/profile", s.getOnly(s.handleProfile))
	mux.HandleFunc("/api/statement", s.getOnly(s.handleStatement))
	mux.HandleFunc("/api/news", s.getOnly(s.handleNews))
	mux.HandleFunc("/api/movers", s.getOnly(s.handleMovers))
	mux.HandleFunc("/api/sectors", s.getOnly(s.handleSectors))
	mux.HandleFunc("/api/search", s.getOnly(s.handleSearch))
	mux.HandleFunc("/api/transcript", s.getOnly(s.handleTranscript))
	mux.HandleFunc("/api/hours", s.getOnly(s.handleHours))
	mux.HandleFunc("/api/similar", s.getOnly(s.handleSimilar))
}

func (s *server) getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r)
	}
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	quote, err := s.data.GetQuote(r.Context(), symbol, callOptions(r)...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, quote)
}

type quotesResponse struct {
	Quotes map[string]model.Quote `json:"quotes"`
	Errors map[string]string      `json:"errors,omitempty"`
}

type postBody struct {
	Symbols []string `json:"symbols"`
}

func (s *server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	switch r.Method {
	case http.MethodGet:
		raw := r.URL.Query().Get("symbols")
		if strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusBadRequest, "missing symbols query param")
			return
		}
		symbols = splitCSV(raw)
	case http.MethodPost:
		var b postBody
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		symbols = b.Symbols
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols cannot be empty")
		return
	}
	if len(symbols) > 100 {
		writeError(w, http.StatusBadRequest, "too many symbols (max 100)")
		return
	}
	result, err := s.data.GetQuotes(r.Context(), symbols, callOptions(r)...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	resp := quotesResponse{Quotes: result.Quotes}
	if len(result.Errors) > 0 {
		resp.Errors = make(map[string]string, len(result.Errors))
		for symbol, symErr := range result.Errors {
			resp.Errors[symbol] = symErr.Error()
		}
	}
	writeJSON(w, resp)
}

type historicalResponse struct {
	Symbol   string                `json:"symbol"`
	Range    model.Range           `json:"range"`
	Interval model.Interval        `json:"interval"`
	Bars     []model.HistoricalBar `json:"bars"`
}

func (s *server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	rng, err := model.ParseRange(queryDefault(r, "range", "1y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	interval, err := model.ParseInterval(queryDefault(r, "interval", "1d"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bars, err := s.data.GetHistorical(r.Context(), symbol, rng, interval, callOptions(r)...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, historicalResponse{Symbol: symbol, Range: rng, Interval: interval, Bars: bars})
}

func (s *server) handleProfile(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	profile, err := s.data.GetCompanyProfile(r.Context(), symbol, callOptions(r)...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, profile)
}

func (s *server) handleStatement(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	kind, err := model.ParseStatementKind(queryDefault(r, "kind", "income"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	freq, err := model.ParseFrequency(queryDefault(r, "frequency", "annual"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	statement, err := s.data.GetFinancialStatement(r.Context(), symbol, kind, freq, callOptions(r)...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, statement)
}

type newsResponse struct {
	Symbol   string              `json:"symbol"`
	Articles []model.NewsArticle `json:"articles"`
}

func (s *server) handleNews(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	articles, err := s.data.GetNews(r.Context(), symbol, callOptions(r)...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, newsResponse{Symbol: symbol, Articles: articles})
}

type moversResponse struct {
	Kind   model.MoverKind     `json:"kind"`
	Movers []model.MarketMover `json:"movers"`
}

func (s *server) handleMovers(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseMoverKind(queryDefault(r, "kind", "gainers"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := strconv.Atoi(queryDefault(r, "limit", "25"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	options := callOptions(r)
	key := string(kind) + ":" + strconv.Itoa(limit)
	if len(options) == 0 {
		if movers, ok := s.movers.Get(key); ok {
			writeJSON(w, moversResponse{Kind: kind, Movers: movers})
			return
		}
	}
	movers, err := s.data.GetMarketMovers(r.Context(), kind, limit, options...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	if len(options) == 0 {
		s.movers.Set(key, movers)
	}
	writeJSON(w, moversResponse{Kind: kind, Movers: movers})
}

type sectorsResponse struct {
	Sectors []model.SectorPerformance `json:"sectors"`
}

func (s *server) handleSectors(w http.ResponseWriter, r *http.Request) {
	symbol := model.NormalizeSymbol(r.URL.Query().Get("symbol"))
	options := callOptions(r)
	key := symbol
	if key == "" {
		key = "*"
	}
	if len(options) == 0 {
		if sectors, ok := s.sectors.Get(key); ok {
			writeJSON(w, sectorsResponse{Sectors: sectors})
			return
		}
	}
	sectors, err := s.data.GetSectorPerformance(r.Context(), symbol, options...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	if len(options) == 0 {
		s.sectors.Set(key, sectors)
	}
	writeJSON(w, sectorsResponse{Sectors: sectors})
}

type searchResponse struct {
	Query   string                     `json:"query"`
	Results []model.SymbolSearchResult `json:"results"`
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing q query param")
		return
	}
	results, err := s.data.SearchSymbols(r.Context(), query, callOptions(r)...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, searchResponse{Query: query, Results: results})
}

func (s *server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	quarter, err := model.ParseQuarter(strings.ToUpper(r.URL.Query().Get("quarter")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1990 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	transcript, err := s.data.GetEarningsTranscript(r.Context(), symbol, quarter, year, callOptions(r)...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, transcript)
}

func (s *server) handleHours(w http.ResponseWriter, r *http.Request) {
	options := callOptions(r)
	if len(options) == 0 {
		if hours, ok := s.hours.Get("hours"); ok {
			writeJSON(w, hours)
			return
		}
	}
	hours, err := s.data.GetMarketHours(r.Context(), options...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	if len(options) == 0 {
		s.hours.Set("hours", hours)
	}
	writeJSON(w, hours)
}

type similarResponse struct {
	Symbol  string        `json:"symbol"`
	Similar []model.Quote `json:"similar"`
}

func (s *server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(queryDefault(r, "limit", "10"))
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	similar, err := s.data.GetSimilarStocks(r.Context(), symbol, limit, callOptions(r)...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, similarResponse{Symbol: symbol, Similar: similar})
}

// callOptions translates the optional provider pin. Validation is the
// orchestrator's job; an unknown id comes back as a configuration error.
func callOptions(r *http.Request) []orchestrator.CallOption {
	if p := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("provider"))); p != "" {
		return []orchestrator.CallOption{orchestrator.WithProvider(provider.ID(p))}
	}
	return nil
}

func symbolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := model.NormalizeSymbol(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol query param")
		return "", false
	}
	return symbol, true
}

func queryDefault(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, v any) {
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(errorResponse{Error: msg})
}

// writeProviderError maps a typed provider failure onto an HTTP status.
// Configuration problems are the caller's (bad pin, bad limit);
// everything upstream-shaped becomes a gateway-class status.
func (s *server) writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	var exhausted *provider.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		status = http.StatusBadGateway
	default:
		switch provider.KindOf(err) {
		case provider.KindConfiguration:
			status = http.StatusBadRequest
		case provider.KindUnavailable:
			status = http.StatusServiceUnavailable
		case provider.KindRateLimit:
			status = http.StatusTooManyRequests
		}
	}
	s.log.Warn().Str("path", r.URL.Path).Int("status", status).Err(err).Msg("request failed")
	writeError(w, status, err.Error())
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
