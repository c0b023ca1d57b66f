package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSkipList(t *testing.T) {
	skip := NewSkipList([]string{"Total", "Unused"})

	tests := []struct {
		label Ticker
		want  bool
	}{
		{"AAPL", false},
		{"MSFT", false},
		{"BRK-B", false},
		{"Total", true},
		{"Unused", true},
		{" Total ", true}, // whitespace-padded sentinel
		{"", true},
		{"   ", true},
		{"foo@bar", true},
		{"total", false}, // sentinel match is case-sensitive
	}

	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			if got := skip.Skip(tt.label); got != tt.want {
				t.Errorf("Skip(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestSkipListFilter(t *testing.T) {
	skip := NewSkipList([]string{"Total"})

	got := skip.Filter([]Ticker{"AAPL", "Total", " MSFT ", "", "GOOG"})
	want := []Ticker{"AAPL", "MSFT", "GOOG"}

	if len(got) != len(want) {
		t.Fatalf("Filter returned %d tickers, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Filter[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadingOK(t *testing.T) {
	good := Reading{Ticker: "AAPL", Price: decimal.NewFromFloat(150.25)}
	if !good.OK() {
		t.Error("reading with price should be OK")
	}

	bad := Reading{Ticker: "MSFT", Err: errors.New("no quote")}
	if bad.OK() {
		t.Error("reading with error should not be OK")
	}
}
