// Package quote fetches quoted prices and exchange rates from a market-data
// source, with a bounded per-symbol retry budget. One bad symbol degrades to
// a recorded failure; it never aborts the rest of the batch.
package quote

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotesheet/quotesheet/internal/model"
	"github.com/quotesheet/quotesheet/internal/retry"
)

// Fetcher wraps a Source with retries, validation, and sentinel filtering.
type Fetcher struct {
	source Source
	skip   model.SkipList
	policy retry.Policy
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPolicy sets the per-symbol retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(f *Fetcher) {
		f.policy = p
	}
}

// WithSkipList sets the sentinel labels excluded from fetching.
func WithSkipList(s model.SkipList) Option {
	return func(f *Fetcher) {
		f.skip = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithClock sets the timestamp source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// NewFetcher creates a Fetcher over the given source.
func NewFetcher(source Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		source: source,
		skip:   model.NewSkipList(nil),
		policy: retry.DefaultPolicy(),
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// FetchAll fetches a price for every non-sentinel ticker, sequentially.
// Each ticker gets its own retry budget; a ticker that exhausts it is
// recorded with its error and the loop moves on. Cancelling ctx stops
// further attempts; already-fetched readings are kept.
func (f *Fetcher) FetchAll(ctx context.Context, tickers []model.Ticker) map[model.Ticker]model.Reading {
	readings := make(map[model.Ticker]model.Reading, len(tickers))

	for _, ticker := range tickers {
		if f.skip.Skip(ticker) {
			f.logger.Debug("skipping sentinel label", "ticker", ticker)
			continue
		}

		price, err := f.fetchOne(ctx, strings.TrimSpace(string(ticker)))
		reading := model.Reading{
			Ticker:    ticker,
			FetchedAt: f.now(),
			Err:       err,
		}
		if err != nil {
			f.logger.Warn("price fetch failed",
				"ticker", ticker,
				"attempts", f.policy.MaxAttempts,
				"err", err,
			)
		} else {
			reading.Price = decimal.NewFromFloat(price)
			f.logger.Debug("price fetched", "ticker", ticker, "price", price)
		}
		readings[ticker] = reading
	}

	return readings
}

// FetchRate fetches the exchange rate for a currency pair, with the same
// retry budget as a single ticker.
func (f *Fetcher) FetchRate(ctx context.Context, pair string) (model.Rate, error) {
	var value float64
	err := retry.Do(ctx, f.policy, func(ctx context.Context) error {
		v, err := f.source.Rate(ctx, pair)
		if err != nil {
			return err
		}
		if err := validPrice(v); err != nil {
			return fmt.Errorf("rate %s: %w", pair, err)
		}
		value = v
		return nil
	})
	if err != nil {
		return model.Rate{}, err
	}

	return model.Rate{
		Pair:      pair,
		Value:     decimal.NewFromFloat(value),
		FetchedAt: f.now(),
	}, nil
}

// fetchOne retrieves a single validated price with retries. Each retry
// attempt logs its failure with the attempt number.
func (f *Fetcher) fetchOne(ctx context.Context, symbol string) (float64, error) {
	var price float64
	attempt := 0

	err := retry.Do(ctx, f.policy, func(ctx context.Context) error {
		attempt++

		v, err := f.source.Quote(ctx, symbol)
		if err != nil {
			f.logger.Debug("quote attempt failed",
				"ticker", symbol,
				"attempt", attempt,
				"err", err,
			)
			return err
		}
		if err := validPrice(v); err != nil {
			f.logger.Debug("quote attempt returned invalid price",
				"ticker", symbol,
				"attempt", attempt,
				"price", v,
			)
			return err
		}

		price = v
		return nil
	})
	if err != nil {
		return 0, err
	}

	return price, nil
}

// validPrice rejects non-positive and non-finite values.
func validPrice(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("price %v is not finite", v)
	}
	if v <= 0 {
		return fmt.Errorf("price %v is not positive", v)
	}
	return nil
}
