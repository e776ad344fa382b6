package recon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradeops/traderecon/pkg/errors"
	"github.com/tradeops/traderecon/pkg/trades"
)

// Default tolerances. A difference at the boundary is still considered
// equal; only a strictly greater difference mismatches.
var (
	// DefaultAmountTolerance applies to quantity and price.
	DefaultAmountTolerance = decimal.NewFromFloat(0.01)
	// DefaultTimeTolerance applies to trade_time.
	DefaultTimeTolerance = time.Second
)

// FieldRule pairs a field name with its comparison. The set of compared
// fields is data: adding a field to the reconciliation is a registry change,
// not a code change in the engine.
type FieldRule struct {
	// Name is the canonical column name the rule compares.
	Name string
	// Mismatch reports whether the pair disagrees on this field.
	Mismatch func(broker, exchange *trades.Record) bool
}

// DefaultFieldRules builds the standard rule registry in the fixed
// comparison order: symbol, side, quantity, price, currency, account_id,
// then trade_time last.
func DefaultFieldRules(amountTolerance decimal.Decimal, timeTolerance time.Duration) []FieldRule {
	return []FieldRule{
		stringRule(trades.FieldSymbol, func(r *trades.Record) string { return r.Symbol }),
		stringRule(trades.FieldSide, func(r *trades.Record) string { return r.Side }),
		amountRule(trades.FieldQuantity, func(r *trades.Record) decimal.NullDecimal { return r.Quantity }, amountTolerance),
		amountRule(trades.FieldPrice, func(r *trades.Record) decimal.NullDecimal { return r.Price }, amountTolerance),
		stringRule(trades.FieldCurrency, func(r *trades.Record) string { return r.Currency }),
		stringRule(trades.FieldAccountID, func(r *trades.Record) string { return r.AccountID }),
		timeRule(trades.FieldTradeTime, timeTolerance),
	}
}

// stringRule compares the stringified values exactly: no case folding, no
// whitespace trimming beyond input normalization.
func stringRule(name string, value func(*trades.Record) string) FieldRule {
	return FieldRule{
		Name: name,
		Mismatch: func(broker, exchange *trades.Record) bool {
			return value(broker) != value(exchange)
		},
	}
}

// amountRule compares decimal amounts under a tolerance. Missing on both
// sides agrees; missing on exactly one side is a mismatch.
func amountRule(name string, value func(*trades.Record) decimal.NullDecimal, tolerance decimal.Decimal) FieldRule {
	return FieldRule{
		Name: name,
		Mismatch: func(broker, exchange *trades.Record) bool {
			b, e := value(broker), value(exchange)
			if !b.Valid && !e.Valid {
				return false
			}
			if b.Valid != e.Valid {
				return true
			}
			return b.Decimal.Sub(e.Decimal).Abs().GreaterThan(tolerance)
		},
	}
}

// timeRule compares trade_time under a duration tolerance.
func timeRule(name string, tolerance time.Duration) FieldRule {
	return FieldRule{
		Name: name,
		Mismatch: func(broker, exchange *trades.Record) bool {
			diff := broker.TradeTime.Sub(exchange.TradeTime)
			if diff < 0 {
				diff = -diff
			}
			return diff > tolerance
		},
	}
}

// comparePair applies the rule registry to a matched-by-key pair. It returns
// the ordered list of mismatched field names and both sides' raw values for
// those fields. A pair where either side carries a parse failure yields a
// ComparisonError: such records are reported, never silently matched.
func comparePair(broker, exchange *trades.Record, rules []FieldRule) (fields []string, brokerVals, exchangeVals map[string]string, err error) {
	if broker.Err != nil {
		return nil, nil, nil, &errors.ComparisonError{TradeID: broker.TradeID, Err: broker.Err}
	}
	if exchange.Err != nil {
		return nil, nil, nil, &errors.ComparisonError{TradeID: exchange.TradeID, Err: exchange.Err}
	}

	brokerVals = make(map[string]string)
	exchangeVals = make(map[string]string)

	for _, rule := range rules {
		if !rule.Mismatch(broker, exchange) {
			continue
		}
		fields = append(fields, rule.Name)
		brokerVals[rule.Name] = broker.RawValue(rule.Name)
		exchangeVals[rule.Name] = exchange.RawValue(rule.Name)
	}

	return fields, brokerVals, exchangeVals, nil
}

// summarySnapshot captures the identifying fields of a record for one-sided
// and uncomparable outcomes.
func summarySnapshot(r *trades.Record) map[string]string {
	return map[string]string{
		trades.FieldSymbol:   r.RawValue(trades.FieldSymbol),
		trades.FieldQuantity: r.RawValue(trades.FieldQuantity),
		trades.FieldPrice:    r.RawValue(trades.FieldPrice),
	}
}
