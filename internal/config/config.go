package config

import "time"

// Config is the root configuration for a quotesheet instance.
type Config struct {
	Spreadsheet SpreadsheetConfig `yaml:"spreadsheet"`
	Market      MarketConfig      `yaml:"market"`
	Poll        PollConfig        `yaml:"poll"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Rate        RateConfig        `yaml:"rate"`
	Log         LogConfig         `yaml:"log"`
}

// SpreadsheetConfig identifies the target sheet and its fixed cell layout.
type SpreadsheetConfig struct {
	ID              string       `yaml:"id"`               // spreadsheet key from the sheet URL
	CredentialsFile string       `yaml:"credentials_file"` // service-account JSON path
	SheetName       string       `yaml:"sheet_name"`
	Layout          LayoutConfig `yaml:"layout"`
}

// LayoutConfig pins the fixed addressing convention: tickers along one
// header row, prices in one data row at the same columns, plus two
// standalone cells.
type LayoutConfig struct {
	TickerRow      int    `yaml:"ticker_row"`
	PriceRow       int    `yaml:"price_row"`
	FirstTickerCol int    `yaml:"first_ticker_col"` // 1-based column index
	TimestampCell  string `yaml:"timestamp_cell"`
	RateCell       string `yaml:"rate_cell"`
}

// MarketConfig holds the trading-hours window.
type MarketConfig struct {
	Timezone string   `yaml:"timezone"`
	Open     string   `yaml:"open"`  // "HH:MM"
	Close    string   `yaml:"close"` // "HH:MM"
	Days     []string `yaml:"days"`  // weekday names; default Monday-Friday
}

// PollConfig holds the in-hours update cadence.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// FetchConfig holds per-ticker retry settings and sentinel labels.
type FetchConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"` // 1 = fixed delay
	SkipTickers       []string      `yaml:"skip_tickers"`
}

// RateConfig names the currency pair written to the rate cell.
type RateConfig struct {
	Pair string `yaml:"pair"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
