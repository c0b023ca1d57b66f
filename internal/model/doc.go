// Package model defines the shared domain types used across quotesheet:
// tickers, price readings, exchange rates, and the sentinel-label skip list.
//
// All values are ephemeral. Nothing here persists across cycles; every cycle
// rebuilds its readings from the sheet's current header row.
package model
