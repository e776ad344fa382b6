// Package recon implements the trade reconciliation engine: a keyed full
// outer join of two trade ledgers, per-field comparison under configurable
// tolerances, severity classification, and aggregation into a deterministic
// summary.
package recon

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Classification describes how a trade identifier reconciled across the two
// ledgers.
type Classification string

const (
	// ClassificationMatched means the pair agreed on every tracked field.
	ClassificationMatched Classification = "matched"
	// ClassificationMismatch means the pair disagreed on at least one field.
	ClassificationMismatch Classification = "mismatch"
	// ClassificationMissingInExchange means the trade exists only in the broker ledger.
	ClassificationMissingInExchange Classification = "missing_in_exchange"
	// ClassificationMissingInBroker means the trade exists only in the exchange ledger.
	ClassificationMissingInBroker Classification = "missing_in_broker"
	// ClassificationComparisonError means the pair could not be compared,
	// typically because one side failed numeric or timestamp parsing.
	ClassificationComparisonError Classification = "comparison_error"
)

// IsException reports whether the classification belongs in the exception
// sequence.
func (c Classification) IsException() bool {
	return c != ClassificationMatched
}

// IsMissing reports whether the classification is a one-sided record.
func (c Classification) IsMissing() bool {
	return c == ClassificationMissingInExchange || c == ClassificationMissingInBroker
}

// Severity is the triage priority assigned to an exception.
type Severity string

const (
	// SeverityHigh requires immediate attention.
	SeverityHigh Severity = "High"
	// SeverityMedium should be reviewed within the working day.
	SeverityMedium Severity = "Medium"
	// SeverityLow follows the standard review cycle.
	SeverityLow Severity = "Low"
)

// NotFound is the sentinel display value for the absent side of a one-sided
// record.
const NotFound = "NOT FOUND"

// Outcome is the reconciliation result for one trade identifier. Outcomes
// are built once per run and never mutated afterwards.
type Outcome struct {
	TradeID          string            `json:"trade_id"`
	Classification   Classification    `json:"classification"`
	MismatchedFields []string          `json:"mismatched_fields,omitempty"`
	BrokerValues     map[string]string `json:"broker_values,omitempty"`
	ExchangeValues   map[string]string `json:"exchange_values,omitempty"`
	Severity         Severity          `json:"severity,omitempty"`

	// Detail carries the comparison failure message for
	// comparison_error outcomes.
	Detail string `json:"detail,omitempty"`
}

// BrokerDisplay renders the broker-side snapshot as a single display string,
// or the NOT FOUND sentinel when the trade is missing from the broker ledger.
func (o *Outcome) BrokerDisplay() string {
	if o.Classification == ClassificationMissingInBroker {
		return NotFound
	}
	return displayValues(o.BrokerValues)
}

// ExchangeDisplay renders the exchange-side snapshot as a single display
// string, or the NOT FOUND sentinel when the trade is missing from the
// exchange ledger.
func (o *Outcome) ExchangeDisplay() string {
	if o.Classification == ClassificationMissingInExchange {
		return NotFound
	}
	return displayValues(o.ExchangeValues)
}

// displayValues renders a field snapshot as "field=value | field=value" in
// sorted field order.
func displayValues(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}
	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", field, values[field]))
	}
	return strings.Join(parts, " | ")
}

// Summary aggregates one reconciliation run. Counts are exact partitions of
// the distinct trade identifiers across both ledgers:
// Matched + Mismatch + Missing == Total. Comparison-error outcomes count
// under Mismatch.
type Summary struct {
	TotalTrades   int       `json:"total_trades"`
	MatchedCount  int       `json:"matched_count"`
	MismatchCount int       `json:"mismatch_count"`
	MissingCount  int       `json:"missing_count"`
	Exceptions    []Outcome `json:"exceptions"`
}

// Stats are derived rate statistics for reporting collaborators.
type Stats struct {
	TotalTrades      int     `json:"total_trades"`
	MatchedTrades    int     `json:"matched_trades"`
	MatchRatePct     float64 `json:"match_rate_pct"`
	TotalExceptions  int     `json:"total_exceptions"`
	ExceptionRatePct float64 `json:"exception_rate_pct"`
	Mismatches       int     `json:"mismatches"`
	MissingTrades    int     `json:"missing_trades"`
}

// Stats derives rate statistics from the summary. Rates are zero on empty
// input rather than dividing by zero.
func (s *Summary) Stats() Stats {
	stats := Stats{
		TotalTrades:     s.TotalTrades,
		MatchedTrades:   s.MatchedCount,
		TotalExceptions: s.MismatchCount + s.MissingCount,
		Mismatches:      s.MismatchCount,
		MissingTrades:   s.MissingCount,
	}

	if s.TotalTrades > 0 {
		stats.MatchRatePct = round2(float64(s.MatchedCount) / float64(s.TotalTrades) * 100)
		stats.ExceptionRatePct = round2(float64(stats.TotalExceptions) / float64(s.TotalTrades) * 100)
	}

	return stats
}

// HighPriority filters the exception sequence to High-severity and missing
// records, preserving order.
func (s *Summary) HighPriority() []Outcome {
	var high []Outcome
	for _, exc := range s.Exceptions {
		if exc.Severity == SeverityHigh || exc.Classification.IsMissing() {
			high = append(high, exc)
		}
	}
	return high
}

// SeverityCounts tallies exceptions by severity, for reporting.
func (s *Summary) SeverityCounts() map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, exc := range s.Exceptions {
		counts[exc.Severity]++
	}
	return counts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
