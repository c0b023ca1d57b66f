// Package market answers one question: is the exchange trading right now,
// and if not, when does it open next. It knows nothing about prices or
// sheets; the scheduler drives its decisions off this calendar.
package market

import (
	"fmt"
	"time"

	"github.com/quotesheet/quotesheet/internal/config"
)

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	var ct ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &ct.Hour, &ct.Minute); err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q (want HH:MM)", s)
	}
	if ct.Hour < 0 || ct.Hour > 23 || ct.Minute < 0 || ct.Minute > 59 {
		return ClockTime{}, fmt.Errorf("clock time %q out of range", s)
	}
	return ct, nil
}

func (ct ClockTime) minutes() int { return ct.Hour*60 + ct.Minute }

// on anchors the clock time to the calendar day of t, in t's location.
func (ct ClockTime) on(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), ct.Hour, ct.Minute, 0, 0, t.Location())
}

// Hours is the trading calendar: an open/close window on a set of weekdays,
// interpreted in the exchange's time zone.
type Hours struct {
	Open  ClockTime
	Close ClockTime
	Days  map[time.Weekday]bool
	Loc   *time.Location
}

// FromConfig builds trading hours from validated configuration.
func FromConfig(cfg config.MarketConfig) (Hours, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Hours{}, fmt.Errorf("load timezone: %w", err)
	}
	open, err := ParseClockTime(cfg.Open)
	if err != nil {
		return Hours{}, fmt.Errorf("market open: %w", err)
	}
	closeTime, err := ParseClockTime(cfg.Close)
	if err != nil {
		return Hours{}, fmt.Errorf("market close: %w", err)
	}

	days := make(map[time.Weekday]bool, len(cfg.Days))
	for _, name := range cfg.Days {
		d, ok := config.Weekday(name)
		if !ok {
			return Hours{}, fmt.Errorf("unknown weekday %q", name)
		}
		days[d] = true
	}

	return Hours{Open: open, Close: closeTime, Days: days, Loc: loc}, nil
}

// IsOpen reports whether t falls inside the trading window on a trading
// day. The window is half-open: the open minute counts, the close minute
// does not.
func (h Hours) IsOpen(t time.Time) bool {
	local := t.In(h.Loc)
	if !h.Days[local.Weekday()] {
		return false
	}
	mins := local.Hour()*60 + local.Minute()
	return mins >= h.Open.minutes() && mins < h.Close.minutes()
}

// NextOpen returns the next instant at or after t when the market opens.
// If t is already inside the window on a trading day, t is returned
// unchanged.
func (h Hours) NextOpen(t time.Time) time.Time {
	local := t.In(h.Loc)
	if h.IsOpen(local) {
		return local
	}

	// Today's open still ahead?
	if h.Days[local.Weekday()] && local.Before(h.Open.on(local)) {
		return h.Open.on(local)
	}

	// Scan forward to the next trading day, capped at a week in case Days
	// is empty.
	day := local
	for i := 0; i < 7; i++ {
		day = day.AddDate(0, 0, 1)
		if h.Days[day.Weekday()] {
			return h.Open.on(day)
		}
	}
	return h.Open.on(local.AddDate(0, 0, 1))
}

// NextTick returns the next interval boundary strictly after t, aligned to
// the interval grid (e.g. a 10m interval fires at :00, :10, :20, ...).
func NextTick(t time.Time, interval time.Duration) time.Time {
	return t.Truncate(interval).Add(interval)
}
