package quote

import (
	"context"
	"fmt"

	"github.com/piquette/finance-go/forex"
	"github.com/piquette/finance-go/quote"
)

// Source provides raw quoted prices. Implementations return the latest
// price for a symbol, or an error when no usable price exists.
type Source interface {
	Quote(ctx context.Context, symbol string) (float64, error)
	Rate(ctx context.Context, pair string) (float64, error)
}

// YahooSource fetches quotes from Yahoo Finance via finance-go. The
// underlying SDK call is not context-aware; cancellation is honored
// between attempts by the Fetcher, not mid-call.
type YahooSource struct{}

func (YahooSource) Quote(_ context.Context, symbol string) (float64, error) {
	q, err := quote.Get(symbol)
	if err != nil {
		return 0, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}
	if q == nil {
		return 0, fmt.Errorf("yahoo quote %s: empty response", symbol)
	}

	// Prefer the regular market price; fall back to the bid/ask midpoint
	// for thinly traded symbols.
	if q.RegularMarketPrice > 0 {
		return q.RegularMarketPrice, nil
	}
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2, nil
	}
	if q.RegularMarketPreviousClose > 0 {
		return q.RegularMarketPreviousClose, nil
	}

	return 0, fmt.Errorf("yahoo quote %s: no usable price", symbol)
}

func (YahooSource) Rate(_ context.Context, pair string) (float64, error) {
	fp, err := forex.Get(pair)
	if err != nil {
		return 0, fmt.Errorf("yahoo forex %s: %w", pair, err)
	}
	if fp == nil {
		return 0, fmt.Errorf("yahoo forex %s: empty response", pair)
	}

	if fp.RegularMarketPrice > 0 {
		return fp.RegularMarketPrice, nil
	}
	if fp.RegularMarketPreviousClose > 0 {
		return fp.RegularMarketPreviousClose, nil
	}

	return 0, fmt.Errorf("yahoo forex %s: no usable rate", pair)
}
