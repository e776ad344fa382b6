package recon

import (
	"github.com/tradeops/traderecon/pkg/trades"
)

// SeverityPolicy maps a classification and its mismatched field set to a
// severity. The default policy reproduces the standard triage table; it is
// plain data, so deployments with different settlement-impact rules can
// substitute their own.
type SeverityPolicy struct {
	// HighImpact lists fields whose mismatch is always High severity,
	// regardless of how many fields mismatched. These are the fields that
	// affect economic or settlement correctness.
	HighImpact []string

	// MediumThreshold is the mismatched-field count above which a
	// non-high-impact mismatch becomes Medium instead of Low.
	MediumThreshold int
}

// DefaultSeverityPolicy returns the standard policy: quantity, price, side,
// and symbol are high impact; more than two mismatched fields is Medium;
// anything else is Low.
func DefaultSeverityPolicy() SeverityPolicy {
	return SeverityPolicy{
		HighImpact: []string{
			trades.FieldQuantity,
			trades.FieldPrice,
			trades.FieldSide,
			trades.FieldSymbol,
		},
		MediumThreshold: 2,
	}
}

// Classify assigns a severity. One-sided records and uncomparable pairs are
// always High. Fully matched records carry no severity. For mismatches the
// high-impact set is checked first, before the field-count rule.
func (p SeverityPolicy) Classify(c Classification, mismatched []string) Severity {
	switch c {
	case ClassificationMatched:
		return ""
	case ClassificationMissingInBroker, ClassificationMissingInExchange, ClassificationComparisonError:
		return SeverityHigh
	}

	for _, field := range mismatched {
		for _, impact := range p.HighImpact {
			if field == impact {
				return SeverityHigh
			}
		}
	}

	if len(mismatched) > p.MediumThreshold {
		return SeverityMedium
	}
	return SeverityLow
}
