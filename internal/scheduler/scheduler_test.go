package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotesheet/quotesheet/internal/config"
	"github.com/quotesheet/quotesheet/internal/market"
	"github.com/quotesheet/quotesheet/internal/model"
	"github.com/quotesheet/quotesheet/internal/sheet"
)

// fakeFetcher returns scripted readings; sentinels are omitted like the
// real fetcher does.
type fakeFetcher struct {
	prices  map[model.Ticker]float64 // missing entry = fetch failure
	skip    model.SkipList
	rate    float64
	rateErr error
}

func (f *fakeFetcher) FetchAll(_ context.Context, tickers []model.Ticker) map[model.Ticker]model.Reading {
	out := make(map[model.Ticker]model.Reading)
	for _, t := range tickers {
		if f.skip.Skip(t) {
			continue
		}
		if p, ok := f.prices[t]; ok {
			out[t] = model.Reading{Ticker: t, Price: decimal.NewFromFloat(p)}
		} else {
			out[t] = model.Reading{Ticker: t, Err: errors.New("fetch failed")}
		}
	}
	return out
}

func (f *fakeFetcher) FetchRate(_ context.Context, pair string) (model.Rate, error) {
	if f.rateErr != nil {
		return model.Rate{}, f.rateErr
	}
	return model.Rate{Pair: pair, Value: decimal.NewFromFloat(f.rate)}, nil
}

// fakeSheet records batch writes.
type fakeSheet struct {
	tickers    []model.Ticker
	readErr    error
	writeErr   error
	cycleCount atomic.Int32
	batches    [][]sheet.Update
}

func (f *fakeSheet) ReadTickers(context.Context) ([]model.Ticker, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.tickers, nil
}

func (f *fakeSheet) BatchWrite(_ context.Context, updates []sheet.Update) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.cycleCount.Add(1)
	f.batches = append(f.batches, updates)
	return nil
}

func testLayout() sheet.Layout {
	return sheet.Layout{
		SheetName:      "Sheet1",
		TickerRow:      1,
		PriceRow:       3,
		FirstTickerCol: 2,
		TimestampCell:  "A1",
		RateCell:       "A100",
	}
}

func testScheduler(t *testing.T, fetcher PriceFetcher, sheets SheetClient) *Scheduler {
	t.Helper()
	hours, err := market.FromConfig(config.MarketConfig{
		Timezone: "America/New_York",
		Open:     "09:00",
		Close:    "16:00",
		Days:     []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	cfg := Config{
		Interval: 10 * time.Minute,
		RatePair: "CADUSD=X",
		Layout:   testLayout(),
	}
	return New(cfg, hours, fetcher, sheets, nil)
}

func findUpdate(batch []sheet.Update, rng string) (sheet.Update, bool) {
	for _, u := range batch {
		if u.Range == rng {
			return u, true
		}
	}
	return sheet.Update{}, false
}

// Header ["AAPL","Total","MSFT"], AAPL succeeds, Total is a sentinel, MSFT
// exhausts retries: the single batch must carry AAPL's price and the
// timestamp, with no cell for Total or MSFT.
func TestRunOnceDegradedCycle(t *testing.T) {
	fetcher := &fakeFetcher{
		prices: map[model.Ticker]float64{"AAPL": 150.25},
		skip:   model.NewSkipList([]string{"Total"}),
		rate:   0.7312,
	}
	sheets := &fakeSheet{tickers: []model.Ticker{"AAPL", "Total", "MSFT"}}

	s := testScheduler(t, fetcher, sheets)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if got := sheets.cycleCount.Load(); got != 1 {
		t.Fatalf("batch writes = %d, want exactly 1", got)
	}

	batch := sheets.batches[0]

	// AAPL sits at header offset 0 -> column B.
	aapl, ok := findUpdate(batch, "Sheet1!B3")
	if !ok {
		t.Fatal("batch missing AAPL price cell Sheet1!B3")
	}
	if aapl.Value != 150.25 {
		t.Errorf("AAPL cell = %v, want 150.25", aapl.Value)
	}

	// Total (offset 1 -> C3) and MSFT (offset 2 -> D3) get no cells.
	if _, ok := findUpdate(batch, "Sheet1!C3"); ok {
		t.Error("sentinel Total should not produce a cell update")
	}
	if _, ok := findUpdate(batch, "Sheet1!D3"); ok {
		t.Error("failed MSFT fetch should omit its price cell")
	}

	if _, ok := findUpdate(batch, "Sheet1!A1"); !ok {
		t.Error("batch missing timestamp cell Sheet1!A1")
	}
	rate, ok := findUpdate(batch, "Sheet1!A100")
	if !ok {
		t.Fatal("batch missing rate cell Sheet1!A100")
	}
	if rate.Value != 0.7312 {
		t.Errorf("rate cell = %v, want 0.7312", rate.Value)
	}
}

func TestRunOnceIgnoresMarketHours(t *testing.T) {
	fetcher := &fakeFetcher{
		prices: map[model.Ticker]float64{"AAPL": 150.25},
		rate:   0.73,
	}
	sheets := &fakeSheet{tickers: []model.Ticker{"AAPL"}}

	s := testScheduler(t, fetcher, sheets)
	// Pin the clock to a Sunday: the market is closed, the cycle runs anyway.
	loc, _ := time.LoadLocation("America/New_York")
	s.now = func() time.Time { return time.Date(2026, time.August, 30, 12, 0, 0, 0, loc) }

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if got := sheets.cycleCount.Load(); got != 1 {
		t.Errorf("batch writes = %d, want 1", got)
	}
	if s.State() != StateShuttingDown {
		t.Errorf("state after RunOnce = %v, want shutting_down", s.State())
	}
}

func TestRunOnceHeaderReadError(t *testing.T) {
	sheets := &fakeSheet{readErr: errors.New("quota exceeded")}
	s := testScheduler(t, &fakeFetcher{}, sheets)

	if err := s.RunOnce(context.Background()); err == nil {
		t.Error("RunOnce should surface header read failure")
	}
}

func TestRunOnceWriteError(t *testing.T) {
	sheets := &fakeSheet{
		tickers:  []model.Ticker{"AAPL"},
		writeErr: errors.New("backend unavailable"),
	}
	fetcher := &fakeFetcher{prices: map[model.Ticker]float64{"AAPL": 1.0}, rate: 1}

	s := testScheduler(t, fetcher, sheets)
	err := s.RunOnce(context.Background())
	if err == nil {
		t.Fatal("RunOnce should surface batch write failure")
	}
	if !strings.Contains(err.Error(), "backend unavailable") {
		t.Errorf("err = %v, want wrapped write failure", err)
	}
}

func TestRunOnceRateFailureStillWrites(t *testing.T) {
	fetcher := &fakeFetcher{
		prices:  map[model.Ticker]float64{"AAPL": 150.25},
		rateErr: errors.New("forex down"),
	}
	sheets := &fakeSheet{tickers: []model.Ticker{"AAPL"}}

	s := testScheduler(t, fetcher, sheets)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	batch := sheets.batches[0]
	if _, ok := findUpdate(batch, "Sheet1!A100"); ok {
		t.Error("failed rate fetch should omit the rate cell")
	}
	if _, ok := findUpdate(batch, "Sheet1!B3"); !ok {
		t.Error("price cell should still be written when the rate fetch fails")
	}
}

func TestRunStopsPromptlyOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{rate: 1}
	sheets := &fakeSheet{}

	s := testScheduler(t, fetcher, sheets)
	// Pin the clock to Saturday so Run parks in the long wait-for-open sleep.
	loc, _ := time.LoadLocation("America/New_York")
	s.now = func() time.Time { return time.Date(2026, time.August, 29, 12, 0, 0, 0, loc) }

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if st := s.State(); st != StateWaitingMarketOpen {
		t.Errorf("state while parked = %v, want waiting_market_open", st)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop promptly after cancel")
	}

	if s.State() != StateShuttingDown {
		t.Errorf("state after Run = %v, want shutting_down", s.State())
	}
	if got := sheets.cycleCount.Load(); got != 0 {
		t.Errorf("cycles while market closed = %d, want 0", got)
	}
}

func TestRunCyclesDuringMarketHours(t *testing.T) {
	fetcher := &fakeFetcher{
		prices: map[model.Ticker]float64{"AAPL": 150.25},
		rate:   0.73,
	}
	sheets := &fakeSheet{tickers: []model.Ticker{"AAPL"}}

	s := testScheduler(t, fetcher, sheets)
	s.cfg.Interval = 50 * time.Millisecond
	// Pin the clock inside market hours on a Monday.
	loc, _ := time.LoadLocation("America/New_York")
	s.now = func() time.Time { return time.Date(2026, time.August, 24, 10, 0, 0, 0, loc) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Enough wall time for several interval boundaries.
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	if got := sheets.cycleCount.Load(); got < 2 {
		t.Errorf("cycles = %d, want at least 2", got)
	}
}

func TestStateString(t *testing.T) {
	if StateWaitingMarketOpen.String() != "waiting_market_open" {
		t.Error("unexpected state name")
	}
	if State(99).String() != "unknown" {
		t.Error("out-of-range state should be unknown")
	}
}
