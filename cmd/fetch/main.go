// Command fetch is a one-shot CLI in front of the orchestrator, handy
// for smoke-testing provider credentials without running the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"marketdata/internal/config"
	"marketdata/internal/logging"
	"marketdata/internal/model"
	"marketdata/internal/orchestrator"
	"marketdata/internal/provider"
)

func main() {
	var (
		op         string
		symbolsCSV string
		rng        string
		interval   string
		kind       string
		frequency  string
		quarter    string
		year       int
		limit      int
		query      string
		pin        string
		timeout    int
		configPath string
	)

	flag.StringVar(&op, "op", getenv("OP", "quote"), "operation: quote|historical|profile|statement|news|movers|sectors|search|transcript|hours|similar")
	flag.StringVar(&symbolsCSV, "symbols", getenv("SYMBOLS", "AAPL"), "comma-separated ticker symbols")
	flag.StringVar(&rng, "range", getenv("RANGE", "1y"), "historical range (1d,5d,1mo,3mo,6mo,ytd,1y,5y,max)")
	flag.StringVar(&interval, "interval", getenv("INTERVAL", "1d"), "bar interval (1m,5m,15m,30m,1h,1d,1wk,1mo)")
	flag.StringVar(&kind, "kind", getenv("KIND", "income"), "statement kind (income,balance,cashflow) or movers kind (gainers,losers,actives)")
	flag.StringVar(&frequency, "frequency", getenv("FREQUENCY", "annual"), "statement frequency (annual,quarterly)")
	flag.StringVar(&quarter, "quarter", getenv("QUARTER", "Q1"), "earnings call quarter (Q1..Q4)")
	flag.IntVar(&year, "year", getenvInt("YEAR", time.Now().Year()), "earnings call year")
	flag.IntVar(&limit, "limit", getenvInt("LIMIT", 25), "list size for movers/similar")
	flag.StringVar(&query, "query", getenv("QUERY", ""), "search query")
	flag.StringVar(&pin, "provider", getenv("PROVIDER", ""), "pin one provider, disabling fallback")
	flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 15), "request timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.yaml (optional)")
	flag.Parse()

	log := logging.New(getenv("LOG_LEVEL", "warn"), "console")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	client := orchestrator.FromConfig(cfg, log, nil)

	var options []orchestrator.CallOption
	if pin != "" {
		options = append(options, orchestrator.WithProvider(provider.ID(strings.ToLower(pin))))
	}

	symbols := splitCSV(symbolsCSV)
	symbol := ""
	if len(symbols) > 0 {
		symbol = symbols[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	out, err := dispatch(ctx, client, op, dispatchArgs{
		symbol:    symbol,
		symbols:   symbols,
		rng:       rng,
		interval:  interval,
		kind:      kind,
		frequency: frequency,
		quarter:   quarter,
		year:      year,
		limit:     limit,
		query:     query,
	}, options)
	if err != nil {
		log.Fatal().Str("op", op).Err(err).Msg("fetch failed")
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

type dispatchArgs struct {
	symbol    string
	symbols   []string
	rng       string
	interval  string
	kind      string
	frequency string
	quarter   string
	year      int
	limit     int
	query     string
}

func dispatch(ctx context.Context, client *orchestrator.Client, op string, a dispatchArgs, options []orchestrator.CallOption) (any, error) {
	switch op {
	case "quote":
		if len(a.symbols) > 1 {
			result, err := client.GetQuotes(ctx, a.symbols, options...)
			if err != nil {
				return nil, err
			}
			return result.Quotes, nil
		}
		return client.GetQuote(ctx, a.symbol, options...)
	case "historical":
		rng, err := model.ParseRange(a.rng)
		if err != nil {
			return nil, err
		}
		interval, err := model.ParseInterval(a.interval)
		if err != nil {
			return nil, err
		}
		return client.GetHistorical(ctx, a.symbol, rng, interval, options...)
	case "profile":
		return client.GetCompanyProfile(ctx, a.symbol, options...)
	case "statement":
		kind, err := model.ParseStatementKind(a.kind)
		if err != nil {
			return nil, err
		}
		freq, err := model.ParseFrequency(a.frequency)
		if err != nil {
			return nil, err
		}
		return client.GetFinancialStatement(ctx, a.symbol, kind, freq, options...)
	case "news":
		return client.GetNews(ctx, a.symbol, options...)
	case "movers":
		kind, err := model.ParseMoverKind(a.kind)
		if err != nil {
			// -kind defaults to a statement kind; movers wants its own.
			kind = model.MoverGainers
		}
		return client.GetMarketMovers(ctx, kind, a.limit, options...)
	case "sectors":
		// All sectors unless a symbol was asked for explicitly.
		sectorSymbol := ""
		if flagWasSet("symbols") {
			sectorSymbol = a.symbol
		}
		return client.GetSectorPerformance(ctx, sectorSymbol, options...)
	case "search":
		if a.query == "" {
			return nil, fmt.Errorf("-query is required for search")
		}
		return client.SearchSymbols(ctx, a.query, options...)
	case "transcript":
		quarter, err := model.ParseQuarter(strings.ToUpper(a.quarter))
		if err != nil {
			return nil, err
		}
		return client.GetEarningsTranscript(ctx, a.symbol, quarter, a.year, options...)
	case "hours":
		return client.GetMarketHours(ctx, options...)
	case "similar":
		return client.GetSimilarStocks(ctx, a.symbol, a.limit, options...)
	}
	return nil, fmt.Errorf("unknown op %q", op)
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
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

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x != 0 {
			return x
		}
	}
	return def
}
