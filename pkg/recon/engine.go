package recon

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradeops/traderecon/pkg/errors"
	"github.com/tradeops/traderecon/pkg/trades"
)

// Engine reconciles two trade ledgers into a summary with a deterministic
// exception sequence.
type Engine interface {
	// Reconcile pairs records by trade_id, compares each matched pair, and
	// aggregates the outcomes. It is a pure function of its two inputs.
	Reconcile(ctx context.Context, broker, exchange *trades.Dataset) (*Summary, error)
}

// engine is the default implementation of Engine.
type engine struct {
	amountTolerance decimal.Decimal
	timeTolerance   time.Duration
	rules           []FieldRule
	severity        SeverityPolicy
	duplicates      DuplicatePolicy
	workers         int
}

// Option configures an Engine.
type Option func(*engine) error

// New creates an Engine with options. Defaults: 0.01 amount tolerance, 1s
// time tolerance, the standard field registry and severity policy,
// duplicate rejection, sequential comparison.
func New(opts ...Option) (Engine, error) {
	e := &engine{
		amountTolerance: DefaultAmountTolerance,
		timeTolerance:   DefaultTimeTolerance,
		severity:        DefaultSeverityPolicy(),
		duplicates:      DuplicateReject,
		workers:         1,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if e.rules == nil {
		e.rules = DefaultFieldRules(e.amountTolerance, e.timeTolerance)
	}

	return e, nil
}

// Reconcile implements Engine.
func (e *engine) Reconcile(ctx context.Context, broker, exchange *trades.Dataset) (*Summary, error) {
	if broker == nil || exchange == nil {
		return nil, &errors.ValidationError{Field: "dataset", Message: "both datasets are required"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pairs, err := join(broker, exchange, e.duplicates)
	if err != nil {
		return nil, err
	}

	outcomes, err := e.resolve(ctx, pairs)
	if err != nil {
		return nil, err
	}

	return aggregate(outcomes), nil
}

// resolve produces one outcome per pair, in pair order. With more than one
// worker the comparisons run concurrently; results are written into an
// indexed slice so concurrency cannot reorder the output.
func (e *engine) resolve(ctx context.Context, pairs []pair) ([]Outcome, error) {
	outcomes := make([]Outcome, len(pairs))

	if e.workers <= 1 || len(pairs) < 2 {
		for i := range pairs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = e.outcome(&pairs[i])
		}
		return outcomes, nil
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = e.outcome(&pairs[i])
			}
		}()
	}

	var ctxErr error
feed:
	for i := range pairs {
		select {
		case indexes <- i:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	return outcomes, nil
}

// outcome resolves a single pair. Each pair reads only its own records and
// writes only its own outcome; there is no shared mutable state across
// trade identifiers.
func (e *engine) outcome(p *pair) Outcome {
	switch {
	case p.exchange == nil:
		return Outcome{
			TradeID:        p.tradeID,
			Classification: ClassificationMissingInExchange,
			BrokerValues:   summarySnapshot(p.broker),
			Severity:       e.severity.Classify(ClassificationMissingInExchange, nil),
		}

	case p.broker == nil:
		return Outcome{
			TradeID:        p.tradeID,
			Classification: ClassificationMissingInBroker,
			ExchangeValues: summarySnapshot(p.exchange),
			Severity:       e.severity.Classify(ClassificationMissingInBroker, nil),
		}
	}

	fields, brokerVals, exchangeVals, err := comparePair(p.broker, p.exchange, e.rules)
	if err != nil {
		return Outcome{
			TradeID:        p.tradeID,
			Classification: ClassificationComparisonError,
			BrokerValues:   summarySnapshot(p.broker),
			ExchangeValues: summarySnapshot(p.exchange),
			Severity:       e.severity.Classify(ClassificationComparisonError, nil),
			Detail:         err.Error(),
		}
	}

	if len(fields) == 0 {
		return Outcome{
			TradeID:        p.tradeID,
			Classification: ClassificationMatched,
		}
	}

	return Outcome{
		TradeID:          p.tradeID,
		Classification:   ClassificationMismatch,
		MismatchedFields: fields,
		BrokerValues:     brokerVals,
		ExchangeValues:   exchangeVals,
		Severity:         e.severity.Classify(ClassificationMismatch, fields),
	}
}

// aggregate partitions outcomes into counts and collects the exception
// sequence in outcome order. Comparison errors count under MismatchCount so
// the partition invariant holds.
func aggregate(outcomes []Outcome) *Summary {
	summary := &Summary{
		TotalTrades: len(outcomes),
		Exceptions:  []Outcome{},
	}

	for _, o := range outcomes {
		switch o.Classification {
		case ClassificationMatched:
			summary.MatchedCount++
		case ClassificationMismatch, ClassificationComparisonError:
			summary.MismatchCount++
		case ClassificationMissingInBroker, ClassificationMissingInExchange:
			summary.MissingCount++
		}
		if o.Classification.IsException() {
			summary.Exceptions = append(summary.Exceptions, o)
		}
	}

	return summary
}

// Option Functions
// ================

// WithAmountTolerance sets the quantity/price tolerance. Differences up to
// and including the tolerance are considered equal.
func WithAmountTolerance(tolerance decimal.Decimal) Option {
	return func(e *engine) error {
		if tolerance.IsNegative() {
			return errors.NewValidationError("amount_tolerance", tolerance, "cannot be negative")
		}
		e.amountTolerance = tolerance
		return nil
	}
}

// WithTimeTolerance sets the trade_time tolerance.
func WithTimeTolerance(tolerance time.Duration) Option {
	return func(e *engine) error {
		if tolerance < 0 {
			return errors.NewValidationError("time_tolerance", tolerance, "cannot be negative")
		}
		e.timeTolerance = tolerance
		return nil
	}
}

// WithFieldRules replaces the comparison registry. Rules are applied in the
// given order; the order of MismatchedFields follows it.
func WithFieldRules(rules ...FieldRule) Option {
	return func(e *engine) error {
		if len(rules) == 0 {
			return errors.NewValidationError("rules", rules, "at least one field rule is required")
		}
		e.rules = rules
		return nil
	}
}

// WithSeverityPolicy replaces the severity policy table.
func WithSeverityPolicy(policy SeverityPolicy) Option {
	return func(e *engine) error {
		e.severity = policy
		return nil
	}
}

// WithDuplicatePolicy sets the duplicate trade_id policy.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(e *engine) error {
		e.duplicates = policy
		return nil
	}
}

// WithWorkers sets the number of concurrent comparison workers. The summary
// is identical to a sequential run; parallelism only affects throughput.
func WithWorkers(n int) Option {
	return func(e *engine) error {
		if n < 1 {
			return errors.NewValidationError("workers", n, "must be at least 1")
		}
		e.workers = n
		return nil
	}
}
