package config

import "time"

// Default values for optional configuration fields. The cell layout matches
// the long-standing sheet convention: tickers across row 1 starting at
// column B, prices in row 3 beneath them, the write timestamp in A1, and
// the exchange rate in A100.
const (
	DefaultSheetName      = "Sheet1"
	DefaultTickerRow      = 1
	DefaultPriceRow       = 3
	DefaultFirstTickerCol = 2
	DefaultTimestampCell  = "A1"
	DefaultRateCell       = "A100"

	DefaultTimezone    = "America/New_York"
	DefaultMarketOpen  = "09:00"
	DefaultMarketClose = "16:00"

	DefaultPollInterval = 10 * time.Minute

	DefaultMaxAttempts       = 3
	DefaultRetryDelay        = 5 * time.Second
	DefaultBackoffMultiplier = 1.0

	DefaultRatePair = "CADUSD=X"

	DefaultLogLevel = "info"
)

// DefaultSkipTickers are the reserved header labels never treated as
// quotable symbols.
var DefaultSkipTickers = []string{"Total", "Unused"}

// DefaultTradingDays covers Monday through Friday.
var DefaultTradingDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func (c *Config) applyDefaults() {
	// Spreadsheet defaults
	if c.Spreadsheet.SheetName == "" {
		c.Spreadsheet.SheetName = DefaultSheetName
	}
	if c.Spreadsheet.Layout.TickerRow == 0 {
		c.Spreadsheet.Layout.TickerRow = DefaultTickerRow
	}
	if c.Spreadsheet.Layout.PriceRow == 0 {
		c.Spreadsheet.Layout.PriceRow = DefaultPriceRow
	}
	if c.Spreadsheet.Layout.FirstTickerCol == 0 {
		c.Spreadsheet.Layout.FirstTickerCol = DefaultFirstTickerCol
	}
	if c.Spreadsheet.Layout.TimestampCell == "" {
		c.Spreadsheet.Layout.TimestampCell = DefaultTimestampCell
	}
	if c.Spreadsheet.Layout.RateCell == "" {
		c.Spreadsheet.Layout.RateCell = DefaultRateCell
	}

	// Market defaults
	if c.Market.Timezone == "" {
		c.Market.Timezone = DefaultTimezone
	}
	if c.Market.Open == "" {
		c.Market.Open = DefaultMarketOpen
	}
	if c.Market.Close == "" {
		c.Market.Close = DefaultMarketClose
	}
	if len(c.Market.Days) == 0 {
		c.Market.Days = DefaultTradingDays
	}

	// Poll defaults
	if c.Poll.Interval == 0 {
		c.Poll.Interval = DefaultPollInterval
	}

	// Fetch defaults
	if c.Fetch.MaxAttempts == 0 {
		c.Fetch.MaxAttempts = DefaultMaxAttempts
	}
	if c.Fetch.RetryDelay == 0 {
		c.Fetch.RetryDelay = DefaultRetryDelay
	}
	if c.Fetch.BackoffMultiplier == 0 {
		c.Fetch.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if c.Fetch.SkipTickers == nil {
		c.Fetch.SkipTickers = DefaultSkipTickers
	}

	// Rate defaults
	if c.Rate.Pair == "" {
		c.Rate.Pair = DefaultRatePair
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
