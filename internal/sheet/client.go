// Package sheet talks to the Google Sheets API: reading the ticker header
// row and applying one batched cell update per cycle. All cell addressing
// goes through Layout so the fixed sheet convention lives in one place.
package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/quotesheet/quotesheet/internal/config"
	"github.com/quotesheet/quotesheet/internal/model"
)

// Update is one cell assignment within a batch write.
type Update struct {
	Range string // A1 notation including the sheet name
	Value any
}

// values is the narrow slice of the Sheets API the client uses. Tests
// substitute a fake.
type values interface {
	get(ctx context.Context, rng string) ([][]any, error)
	batchUpdate(ctx context.Context, data []*sheets.ValueRange) error
}

// googleValues backs the values seam with the real Sheets service.
type googleValues struct {
	svc           *sheets.Service
	spreadsheetID string
}

func (g *googleValues) get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *googleValues) batchUpdate(ctx context.Context, data []*sheets.ValueRange) error {
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	_, err := g.svc.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return err
}

// Client reads and writes the target spreadsheet.
type Client struct {
	vals   values
	layout Layout
	logger *slog.Logger
}

// NewClient builds a Client authenticated with the configured
// service-account credentials file. Failure here is a startup
// (configuration) error, not a per-cycle one.
func NewClient(ctx context.Context, cfg config.SpreadsheetConfig, logger *slog.Logger) (*Client, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return newClient(&googleValues{svc: svc, spreadsheetID: cfg.ID}, LayoutFromConfig(cfg), logger), nil
}

func newClient(vals values, layout Layout, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{vals: vals, layout: layout, logger: logger}
}

// Layout returns the client's cell-addressing convention.
func (c *Client) Layout() Layout { return c.layout }

// ReadTickers reads the header row in column order, starting at the first
// ticker column and stopping at the first empty cell. Sentinel labels are
// returned as-is; callers filter them, keeping column positions intact.
// The row is re-read every cycle since symbols may change between cycles.
func (c *Client) ReadTickers(ctx context.Context) ([]model.Ticker, error) {
	rows, err := c.vals.get(ctx, c.layout.TickerRowRange())
	if err != nil {
		return nil, fmt.Errorf("read ticker row: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	var tickers []model.Ticker
	for i := c.layout.FirstTickerCol - 1; i < len(row); i++ {
		label, _ := row[i].(string)
		if strings.TrimSpace(label) == "" {
			break
		}
		tickers = append(tickers, model.Ticker(label))
	}

	c.logger.Debug("read header row", "tickers", len(tickers))
	return tickers, nil
}

// BatchWrite applies all updates in a single BatchUpdate call. Either the
// whole batch is accepted or the cycle's write fails; there are no
// per-cell writes and no immediate retry.
func (c *Client) BatchWrite(ctx context.Context, updates []Update) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  u.Range,
			Values: [][]any{{u.Value}},
		})
	}

	if err := c.vals.batchUpdate(ctx, data); err != nil {
		return fmt.Errorf("batch update %d cells: %w", len(updates), err)
	}

	c.logger.Debug("batch write applied", "cells", len(updates))
	return nil
}
