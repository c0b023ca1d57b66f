package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/quotesheet/quotesheet/internal/market"
	"github.com/quotesheet/quotesheet/internal/model"
	"github.com/quotesheet/quotesheet/internal/sheet"
)

// batchWriteTimeout bounds the cycle's single write call. The write runs on
// a context detached from shutdown so a cycle already in flight lands its
// batch instead of leaving the sheet stale.
const batchWriteTimeout = 30 * time.Second

// State is the scheduler's current phase.
type State int32

const (
	StateWaitingMarketOpen State = iota
	StateActivePolling
	StateSleepingBetweenUpdates
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateWaitingMarketOpen:
		return "waiting_market_open"
	case StateActivePolling:
		return "active_polling"
	case StateSleepingBetweenUpdates:
		return "sleeping_between_updates"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// PriceFetcher provides validated price readings and the exchange rate.
type PriceFetcher interface {
	FetchAll(ctx context.Context, tickers []model.Ticker) map[model.Ticker]model.Reading
	FetchRate(ctx context.Context, pair string) (model.Rate, error)
}

// SheetClient reads the header row and applies the cycle's batched write.
type SheetClient interface {
	ReadTickers(ctx context.Context) ([]model.Ticker, error)
	BatchWrite(ctx context.Context, updates []sheet.Update) error
}

// Config holds scheduler settings.
type Config struct {
	Interval time.Duration // update cadence during market hours
	RatePair string        // currency pair written to the rate cell
	Layout   sheet.Layout
}

// Scheduler drives the fetch+write cycle on a market-hours schedule.
// Execution is sequential throughout; the only suspension points are the
// interruptible sleeps between cycles and between retry attempts.
type Scheduler struct {
	cfg     Config
	hours   market.Hours
	fetcher PriceFetcher
	sheets  SheetClient
	logger  *slog.Logger

	state atomic.Int32
	now   func() time.Time
}

// New creates a Scheduler.
func New(cfg Config, hours market.Hours, fetcher PriceFetcher, sheets SheetClient, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:     cfg,
		hours:   hours,
		fetcher: fetcher,
		sheets:  sheets,
		logger:  logger,
		now:     time.Now,
	}
}

// State returns the scheduler's current phase.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(st State) {
	if State(s.state.Swap(int32(st))) != st {
		s.logger.Debug("scheduler state", "state", st.String())
	}
}

// Run loops until ctx is cancelled: outside trading hours it sleeps until
// the next open; inside, it runs one cycle per interval boundary. A cycle
// in progress when shutdown arrives completes its batch write first.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started",
		"interval", s.cfg.Interval,
		"rate_pair", s.cfg.RatePair,
	)

	for {
		now := s.now()

		if !s.hours.IsOpen(now) {
			s.setState(StateWaitingMarketOpen)
			open := s.hours.NextOpen(now)
			s.logger.Info("market closed, waiting for open",
				"next_open", open,
				"wait", open.Sub(now).Round(time.Second),
			)
			if !s.sleep(ctx, open.Sub(now)) {
				s.shutdown()
				return
			}
			continue
		}

		s.setState(StateActivePolling)
		// Cycle errors are logged inside; the loop continues at the next
		// boundary either way.
		_ = s.runCycle(ctx)
		if ctx.Err() != nil {
			s.shutdown()
			return
		}

		s.setState(StateSleepingBetweenUpdates)
		next := market.NextTick(s.now(), s.cfg.Interval)
		if !s.sleep(ctx, next.Sub(s.now())) {
			s.shutdown()
			return
		}
	}
}

// RunOnce performs exactly one fetch+write cycle regardless of market
// hours. The returned error reflects sheet read/write failure only;
// individual ticker failures degrade within the cycle.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.setState(StateActivePolling)
	err := s.runCycle(ctx)
	s.setState(StateShuttingDown)
	return err
}

func (s *Scheduler) shutdown() {
	s.setState(StateShuttingDown)
	s.logger.Info("scheduler stopped")
}

// sleep blocks for d, returning false if ctx was cancelled first.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// runCycle performs one fetch+write cycle: re-read the header row, fetch a
// price per non-sentinel ticker, fetch the exchange rate, and coalesce
// everything into a single batch write. Tickers whose fetch failed get no
// cell update this cycle.
func (s *Scheduler) runCycle(ctx context.Context) error {
	cycleID := uuid.NewString()[:8]
	log := s.logger.With("cycle", cycleID)
	start := s.now()

	labels, err := s.sheets.ReadTickers(ctx)
	if err != nil {
		log.Error("header row read failed", "err", err)
		return err
	}
	if len(labels) == 0 {
		log.Warn("no tickers in header row, skipping cycle")
		return nil
	}

	readings := s.fetcher.FetchAll(ctx, labels)

	updates := make([]sheet.Update, 0, len(labels)+2)
	summary := model.CycleSummary{Tickers: len(readings)}

	for i, label := range labels {
		reading, ok := readings[label]
		if !ok {
			// sentinel, no cell written
			continue
		}
		if !reading.OK() {
			summary.Failed++
			continue
		}
		summary.Fetched++
		updates = append(updates, sheet.Update{
			Range: s.cfg.Layout.PriceCellRange(i),
			Value: reading.Price.InexactFloat64(),
		})
	}

	rate, err := s.fetcher.FetchRate(ctx, s.cfg.RatePair)
	if err != nil {
		log.Warn("exchange rate fetch failed", "pair", s.cfg.RatePair, "err", err)
	} else {
		updates = append(updates, sheet.Update{
			Range: s.cfg.Layout.CellRange(s.cfg.Layout.RateCell),
			Value: rate.Value.InexactFloat64(),
		})
	}

	updates = append(updates, sheet.Update{
		Range: s.cfg.Layout.CellRange(s.cfg.Layout.TimestampCell),
		Value: sheet.Timestamp(s.now()),
	})

	// Detached from shutdown: a started cycle lands its write.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), batchWriteTimeout)
	defer cancel()

	if err := s.sheets.BatchWrite(writeCtx, updates); err != nil {
		log.Error("batch write failed", "cells", len(updates), "err", err)
		return err
	}

	summary.Duration = s.now().Sub(start)
	log.Info("cycle complete",
		"tickers", summary.Tickers,
		"fetched", summary.Fetched,
		"failed", summary.Failed,
		"cells", len(updates),
		"duration", summary.Duration,
	)
	return nil
}
