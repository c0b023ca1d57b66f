package sheet

import (
	"fmt"
	"time"

	"github.com/quotesheet/quotesheet/internal/config"
)

// TimestampFormat is how the cycle timestamp is rendered into its cell,
// e.g. "02:30PM @ 2026-08-24".
const TimestampFormat = "03:04PM @ 2006-01-02"

// Layout is the fixed cell-addressing convention: ticker symbols along one
// header row, prices in one data row at the same columns, and two
// standalone cells for the write timestamp and the exchange rate.
type Layout struct {
	SheetName      string
	TickerRow      int
	PriceRow       int
	FirstTickerCol int // 1-based
	TimestampCell  string
	RateCell       string
}

// LayoutFromConfig builds a Layout from validated configuration.
func LayoutFromConfig(cfg config.SpreadsheetConfig) Layout {
	return Layout{
		SheetName:      cfg.SheetName,
		TickerRow:      cfg.Layout.TickerRow,
		PriceRow:       cfg.Layout.PriceRow,
		FirstTickerCol: cfg.Layout.FirstTickerCol,
		TimestampCell:  cfg.Layout.TimestampCell,
		RateCell:       cfg.Layout.RateCell,
	}
}

// ColumnName converts a 1-based column index to its A1 letters:
// 1 -> A, 26 -> Z, 27 -> AA.
func ColumnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}

// TickerRowRange is the A1 range covering the whole header row.
func (l Layout) TickerRowRange() string {
	return fmt.Sprintf("%s!%d:%d", l.SheetName, l.TickerRow, l.TickerRow)
}

// PriceCellRange addresses the price cell for the ticker at offset i
// (0-based) from the first ticker column.
func (l Layout) PriceCellRange(i int) string {
	return fmt.Sprintf("%s!%s%d", l.SheetName, ColumnName(l.FirstTickerCol+i), l.PriceRow)
}

// CellRange addresses a single named cell like "A1".
func (l Layout) CellRange(cell string) string {
	return fmt.Sprintf("%s!%s", l.SheetName, cell)
}

// Timestamp renders t for the timestamp cell.
func Timestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}
