package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is a short symbol identifying a quotable security (e.g., "AAPL").
type Ticker string

func (t Ticker) String() string { return string(t) }

// Reading is the result of one price lookup for a ticker. A failed fetch
// carries Err and a zero Price.
type Reading struct {
	Ticker    Ticker
	Price     decimal.Decimal
	FetchedAt time.Time
	Err       error
}

// OK reports whether the reading carries a usable price.
func (r Reading) OK() bool { return r.Err == nil }

// Rate is a fetched currency-pair exchange rate (e.g., "CADUSD=X").
type Rate struct {
	Pair      string
	Value     decimal.Decimal
	FetchedAt time.Time
}

// CycleSummary describes one completed fetch+write cycle, for logging.
type CycleSummary struct {
	Tickers  int // tickers remaining after sentinel filtering
	Fetched  int
	Failed   int
	Duration time.Duration
}

// SkipList decides which header-row labels are sentinels rather than real
// tickers: reserved column labels ("Total", "Unused"), blank cells, and
// anything containing '@'.
type SkipList struct {
	names map[string]struct{}
}

// NewSkipList builds a SkipList from the configured sentinel names.
func NewSkipList(names []string) SkipList {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.TrimSpace(n)] = struct{}{}
	}
	return SkipList{names: set}
}

// Skip reports whether the given header label is excluded from price
// fetching and cell updates.
func (s SkipList) Skip(t Ticker) bool {
	label := strings.TrimSpace(string(t))
	if label == "" {
		return true
	}
	if strings.Contains(label, "@") {
		return true
	}
	_, ok := s.names[label]
	return ok
}

// Filter returns the tickers that are not sentinels, trimmed, in order.
func (s SkipList) Filter(tickers []Ticker) []Ticker {
	out := make([]Ticker, 0, len(tickers))
	for _, t := range tickers {
		if !s.Skip(t) {
			out = append(out, Ticker(strings.TrimSpace(string(t))))
		}
	}
	return out
}
