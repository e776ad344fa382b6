package recon

import (
	"github.com/tradeops/traderecon/pkg/errors"
	"github.com/tradeops/traderecon/pkg/logging"
	"github.com/tradeops/traderecon/pkg/trades"
)

// DuplicatePolicy controls how a trade_id appearing more than once within a
// single dataset is handled. A generic outer join would expand duplicates
// into a cartesian product; that is never acceptable here, so the policy is
// explicit.
type DuplicatePolicy int

const (
	// DuplicateReject fails the run with a SchemaError naming the dataset
	// and trade identifier. This is the default.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateKeepFirst keeps the first occurrence in source order and
	// drops the rest with a warning.
	DuplicateKeepFirst
)

// ParseDuplicatePolicy converts a policy name to a DuplicatePolicy. The
// empty string selects the default.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "reject":
		return DuplicateReject, nil
	case "keep-first":
		return DuplicateKeepFirst, nil
	default:
		return DuplicateReject, errors.NewValidationError("duplicates", s,
			"must be one of: reject, keep-first")
	}
}

// pair is one distinct trade identifier with its record from each side.
// Exactly one of broker/exchange may be nil for one-sided records.
type pair struct {
	tradeID  string
	broker   *trades.Record
	exchange *trades.Record
}

// join performs the full outer join on trade_id. Output order is stable:
// trade identifiers in broker source order first, then exchange-only
// identifiers in exchange source order. This ordering carries through to the
// exception sequence, so repeated runs over identical input produce
// identical output.
func join(broker, exchange *trades.Dataset, policy DuplicatePolicy) ([]pair, error) {
	brokerByID, brokerOrder, err := indexDataset(broker, policy)
	if err != nil {
		return nil, err
	}
	exchangeByID, exchangeOrder, err := indexDataset(exchange, policy)
	if err != nil {
		return nil, err
	}

	pairs := make([]pair, 0, len(brokerOrder)+len(exchangeOrder))

	for _, id := range brokerOrder {
		pairs = append(pairs, pair{
			tradeID:  id,
			broker:   brokerByID[id],
			exchange: exchangeByID[id],
		})
	}

	for _, id := range exchangeOrder {
		if _, inBroker := brokerByID[id]; inBroker {
			continue
		}
		pairs = append(pairs, pair{
			tradeID:  id,
			exchange: exchangeByID[id],
		})
	}

	return pairs, nil
}

// indexDataset builds the id→record index and the first-appearance order,
// applying the duplicate policy.
func indexDataset(ds *trades.Dataset, policy DuplicatePolicy) (map[string]*trades.Record, []string, error) {
	byID := make(map[string]*trades.Record, len(ds.Records))
	order := make([]string, 0, len(ds.Records))

	for i := range ds.Records {
		rec := &ds.Records[i]
		if _, seen := byID[rec.TradeID]; seen {
			if policy == DuplicateReject {
				return nil, nil, &errors.SchemaError{
					Dataset: ds.Name,
					TradeID: rec.TradeID,
					Message: "duplicate trade_id",
				}
			}
			logging.Warn().
				Str("dataset", ds.Name).
				Str("trade_id", rec.TradeID).
				Msg("Dropping duplicate trade record, keeping first occurrence")
			continue
		}
		byID[rec.TradeID] = rec
		order = append(order, rec.TradeID)
	}

	return byID, order, nil
}
