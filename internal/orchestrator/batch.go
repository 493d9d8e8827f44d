package orchestrator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"marketdata/internal/model"
)

// batchConcurrency bounds how many symbols a batch resolves at once.
const batchConcurrency = 8

// BatchResult is the partial-success outcome of a batch quote call.
// Every requested symbol appears in exactly one of the two maps, keyed
// by its normalized form.
type BatchResult struct {
	Quotes map[string]model.Quote
	Errors map[string]error
}

// GetQuotes resolves many symbols concurrently, each through its own
// fallback chain. One symbol failing never poisons the rest; only a
// canceled context stops the batch early.
func (c *Client) GetQuotes(ctx context.Context, symbols []string, options ...CallOption) (BatchResult, error) {
	result := BatchResult{
		Quotes: make(map[string]model.Quote, len(symbols)),
		Errors: map[string]error{},
	}

	// Dedupe after normalization so "aapl" and "AAPL" cost one fetch.
	seen := make(map[string]struct{}, len(symbols))
	unique := make([]string, 0, len(symbols))
	for _, s := range symbols {
		key := model.NormalizeSymbol(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, key)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, symbol := range unique {
		symbol := symbol
		g.Go(func() error {
			quote, err := c.GetQuote(gctx, symbol, options...)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[symbol] = err
				// Partial success: swallow the per-symbol error unless
				// the whole batch is being torn down.
				return gctx.Err()
			}
			result.Quotes[symbol] = quote
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}
