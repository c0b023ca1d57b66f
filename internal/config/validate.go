package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
// It is called after defaults are applied, so only fields with no sane
// default can be missing.
func (c *Config) Validate() error {
	if c.Spreadsheet.ID == "" {
		return errors.New("spreadsheet.id is required (or set SPREADSHEET_ID)")
	}
	if c.Spreadsheet.CredentialsFile == "" {
		return errors.New("spreadsheet.credentials_file is required (or set GOOGLE_CREDENTIALS_FILE)")
	}

	layout := c.Spreadsheet.Layout
	if layout.TickerRow < 1 {
		return errors.New("spreadsheet.layout.ticker_row must be >= 1")
	}
	if layout.PriceRow < 1 {
		return errors.New("spreadsheet.layout.price_row must be >= 1")
	}
	if layout.TickerRow == layout.PriceRow {
		return fmt.Errorf("spreadsheet.layout.price_row (%d) cannot equal ticker_row", layout.PriceRow)
	}
	if layout.FirstTickerCol < 1 {
		return errors.New("spreadsheet.layout.first_ticker_col must be >= 1")
	}

	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone %q is not a valid location: %w", c.Market.Timezone, err)
	}
	openMins, err := parseClock(c.Market.Open)
	if err != nil {
		return fmt.Errorf("market.open: %w", err)
	}
	closeMins, err := parseClock(c.Market.Close)
	if err != nil {
		return fmt.Errorf("market.close: %w", err)
	}
	if openMins >= closeMins {
		return fmt.Errorf("market.open (%s) must be before market.close (%s)", c.Market.Open, c.Market.Close)
	}
	for _, d := range c.Market.Days {
		if _, ok := weekdayNames[d]; !ok {
			return fmt.Errorf("market.days: unknown weekday %q", d)
		}
	}

	if c.Poll.Interval < time.Second {
		return fmt.Errorf("poll.interval must be >= 1s, got %v", c.Poll.Interval)
	}

	if c.Fetch.MaxAttempts < 1 {
		return errors.New("fetch.max_attempts must be >= 1")
	}
	if c.Fetch.RetryDelay < 0 {
		return errors.New("fetch.retry_delay must be >= 0")
	}
	if c.Fetch.BackoffMultiplier < 1 {
		return fmt.Errorf("fetch.backoff_multiplier must be >= 1, got %v", c.Fetch.BackoffMultiplier)
	}

	if c.Rate.Pair == "" {
		return errors.New("rate.pair is required")
	}

	return nil
}

var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// Weekday resolves a configured weekday name.
func Weekday(name string) (time.Weekday, bool) {
	d, ok := weekdayNames[name]
	return d, ok
}

// parseClock parses "HH:MM" into minutes past midnight.
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q (want HH:MM)", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}
