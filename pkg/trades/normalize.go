package trades

import (
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"

	"github.com/tradeops/traderecon/pkg/errors"
)

// Timestamp layouts accepted for trade_time, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Normalize validates a raw table against the required trade schema and
// produces a typed dataset. The schema check runs first: a missing required
// column fails the whole dataset with a SchemaError naming the column and
// dataset. Per-record parse failures (malformed timestamp, non-numeric
// quantity or price) do not fail normalization; the failure is attached to
// the record so the engine can surface it as a comparison-error exception.
//
// The input table is never mutated; records copy every value they keep.
func Normalize(t *Table) (*Dataset, error) {
	if t == nil {
		return nil, &errors.ValidationError{Field: "table", Message: "table cannot be nil"}
	}

	index, err := columnIndex(t)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Name:    t.Name,
		Records: make([]Record, 0, len(t.Rows)),
	}

	for _, row := range t.Rows {
		rec := normalizeRow(t.Name, row, index)
		if rec.TradeID == "" {
			return nil, &errors.SchemaError{
				Dataset: t.Name,
				Message: "record with empty trade_id",
			}
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

// columnIndex maps required column names to their positions in the table
// header, failing on the first missing column.
func columnIndex(t *Table) (map[string]int, error) {
	index := make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		index[strings.TrimSpace(col)] = i
	}

	for _, required := range Columns() {
		if _, ok := index[required]; !ok {
			return nil, errors.NewSchemaError(t.Name, required)
		}
	}

	return index, nil
}

// normalizeRow builds one typed record from a raw row. Values are read by
// column name so extra columns in the input are carried in Raw but ignored
// by comparison.
func normalizeRow(dataset string, row []string, index map[string]int) Record {
	cell := func(field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := Record{
		TradeID:   cell(FieldTradeID),
		Symbol:    cell(FieldSymbol),
		Side:      cell(FieldSide),
		Currency:  cell(FieldCurrency),
		AccountID: cell(FieldAccountID),
		Raw:       make(map[string]string, len(index)),
	}
	for field, i := range index {
		if i < len(row) {
			rec.Raw[field] = strings.TrimSpace(row[i])
		}
	}

	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	var err error
	rec.Quantity, err = parseAmount(dataset, rec.TradeID, FieldQuantity, cell(FieldQuantity))
	keep(err)
	rec.Price, err = parseAmount(dataset, rec.TradeID, FieldPrice, cell(FieldPrice))
	keep(err)
	rec.TradeTime, err = parseTime(dataset, rec.TradeID, cell(FieldTradeTime))
	keep(err)

	rec.Err = firstErr
	return rec
}

// parseAmount parses a decimal amount. An empty cell is a legitimate missing
// value, not a parse failure: both sides missing counts as agreement during
// comparison.
func parseAmount(dataset, tradeID, field, value string) (decimal.NullDecimal, error) {
	if value == "" {
		return decimal.NullDecimal{}, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, errors.WrapParse(dataset, tradeID, field, value, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// parseTime parses trade_time into a UTC instant. Unlike amounts, an empty
// trade_time is a parse failure: a trade without a timestamp cannot satisfy
// the timing tolerance check.
func parseTime(dataset, tradeID, value string) (utc.Time, error) {
	if value == "" {
		return utc.Time{}, errors.WrapParse(dataset, tradeID, FieldTradeTime, value, errors.New("empty timestamp"))
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return utc.New(t), nil
		}
	}

	return utc.Time{}, errors.WrapParse(dataset, tradeID, FieldTradeTime, value, errors.New("unrecognized timestamp format"))
}
