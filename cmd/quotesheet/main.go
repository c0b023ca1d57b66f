package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quotesheet/quotesheet/internal/config"
	"github.com/quotesheet/quotesheet/internal/market"
	"github.com/quotesheet/quotesheet/internal/model"
	"github.com/quotesheet/quotesheet/internal/quote"
	"github.com/quotesheet/quotesheet/internal/retry"
	"github.com/quotesheet/quotesheet/internal/scheduler"
	"github.com/quotesheet/quotesheet/internal/sheet"
	"github.com/quotesheet/quotesheet/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/quotesheet.yaml", "path to config file")
	once := flag.Bool("once", false, "run one fetch+write cycle regardless of market hours, then exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// A .env file is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level, *debug),
	}))
	slog.SetDefault(logger)

	logger.Info("starting quotesheet",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"once", *once,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	hours, err := market.FromConfig(cfg.Market)
	if err != nil {
		logger.Error("invalid market hours", "error", err)
		os.Exit(1)
	}

	sheetClient, err := sheet.NewClient(ctx, cfg.Spreadsheet, logger)
	if err != nil {
		logger.Error("failed to create sheets client", "error", err)
		os.Exit(1)
	}

	logger.Info("sheets client ready",
		"spreadsheet", cfg.Spreadsheet.ID,
		"sheet", cfg.Spreadsheet.SheetName,
	)

	fetcher := quote.NewFetcher(quote.YahooSource{},
		quote.WithLogger(logger),
		quote.WithPolicy(retry.Policy{
			MaxAttempts: cfg.Fetch.MaxAttempts,
			Delay:       cfg.Fetch.RetryDelay,
			Multiplier:  cfg.Fetch.BackoffMultiplier,
		}),
		quote.WithSkipList(model.NewSkipList(cfg.Fetch.SkipTickers)),
	)

	sched := scheduler.New(scheduler.Config{
		Interval: cfg.Poll.Interval,
		RatePair: cfg.Rate.Pair,
		Layout:   sheetClient.Layout(),
	}, hours, fetcher, sheetClient, logger)

	if *once {
		if err := sched.RunOnce(ctx); err != nil {
			logger.Error("cycle failed", "error", err)
			os.Exit(1)
		}
		logger.Info("single cycle complete")
		return
	}

	sched.Run(ctx)
	logger.Info("quotesheet stopped")
}

// logLevel resolves the effective log level; --debug wins over config.
func logLevel(level string, debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
