// Package trades defines the typed trade record model and the normalization
// layer that turns raw tabular input into immutable, comparable records.
package trades

import (
	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"
)

// Canonical column names shared by both ledgers.
const (
	FieldTradeID   = "trade_id"
	FieldSymbol    = "symbol"
	FieldSide      = "side"
	FieldQuantity  = "quantity"
	FieldPrice     = "price"
	FieldCurrency  = "currency"
	FieldTradeTime = "trade_time"
	FieldAccountID = "account_id"
)

// Columns is the required column set for any input dataset, in canonical
// order. Schema validation runs against this set before any join logic.
func Columns() []string {
	return []string{
		FieldTradeID,
		FieldSymbol,
		FieldSide,
		FieldQuantity,
		FieldPrice,
		FieldCurrency,
		FieldTradeTime,
		FieldAccountID,
	}
}

// Well-known side values. Sides are compared as exact strings during
// reconciliation; these constants exist for writers, not for folding.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Dataset names used in diagnostics.
const (
	DatasetBroker   = "broker"
	DatasetExchange = "exchange"
)

// Record is one normalized trade row from a single source system.
// Records are immutable after normalization; the engine only reads them.
type Record struct {
	TradeID   string
	Symbol    string
	Side      string
	Quantity  decimal.NullDecimal
	Price     decimal.NullDecimal
	Currency  string
	TradeTime utc.Time
	AccountID string

	// Raw holds the original input strings per column for display in
	// exception snapshots.
	Raw map[string]string

	// Err carries the first parse failure hit while normalizing this
	// record, if any. A record with a non-nil Err still joins by key;
	// its pair is reported as a comparison error instead of being
	// compared or dropped.
	Err error
}

// RawValue returns the original input string for a column, or the empty
// string if the column was absent from the source row.
func (r *Record) RawValue(field string) string {
	if r.Raw == nil {
		return ""
	}
	return r.Raw[field]
}

// Dataset is an ordered collection of records from one source system.
// Ordering is the source order and is load-bearing: it drives the
// deterministic ordering of the exception sequence.
type Dataset struct {
	Name    string
	Records []Record
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Table is a raw tabular dataset before normalization: a header row plus
// data rows, as loaded from CSV or assembled by a caller.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}
