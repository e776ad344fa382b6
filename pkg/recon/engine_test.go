package recon_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeops/traderecon/pkg/errors"
	"github.com/tradeops/traderecon/pkg/recon"
	"github.com/tradeops/traderecon/pkg/trades"
)

// row order: trade_id, symbol, side, quantity, price, currency, trade_time, account_id
func dataset(t *testing.T, name string, rows ...[]string) *trades.Dataset {
	t.Helper()
	ds, err := trades.Normalize(&trades.Table{
		Name:    name,
		Columns: trades.Columns(),
		Rows:    rows,
	})
	require.NoError(t, err)
	return ds
}

func reconcile(t *testing.T, broker, exchange *trades.Dataset, opts ...recon.Option) *recon.Summary {
	t.Helper()
	engine, err := recon.New(opts...)
	require.NoError(t, err)
	summary, err := engine.Reconcile(context.Background(), broker, exchange)
	require.NoError(t, err)
	return summary
}

func TestReconcileWithinTolerance(t *testing.T) {
	// T1: price differs by exactly the tolerance, still matched.
	broker := dataset(t, trades.DatasetBroker,
		[]string{"T1", "AAPL", "buy", "100", "50.00", "USD", "2024-03-01T10:00:00Z", "A1"},
	)
	exchange := dataset(t, trades.DatasetExchange,
		[]string{"T1", "AAPL", "buy", "100", "50.01", "USD", "2024-03-01T10:00:00Z", "A1"},
	)

	summary := reconcile(t, broker, exchange)
	assert.Equal(t, 1, summary.TotalTrades)
	assert.Equal(t, 1, summary.MatchedCount)
	assert.Empty(t, summary.Exceptions)
}

func TestReconcileQuantityMismatch(t *testing.T) {
	broker := dataset(t, trades.DatasetBroker,
		[]string{"T2", "AAPL", "buy", "100", "50.00", "USD", "2024-03-01T10:00:00Z", "A1"},
	)
	exchange := dataset(t, trades.DatasetExchange,
		[]string{"T2", "AAPL", "buy", "101", "50.00", "USD", "2024-03-01T10:00:00Z", "A1"},
	)

	summary := reconcile(t, broker, exchange)
	require.Len(t, summary.Exceptions, 1)

	exc := summary.Exceptions[0]
	assert.Equal(t, recon.ClassificationMismatch, exc.Classification)
	assert.Equal(t, []string{trades.FieldQuantity}, exc.MismatchedFields)
	assert.Equal(t, recon.SeverityHigh, exc.Severity)
	assert.Equal(t, "100", exc.BrokerValues[trades.FieldQuantity])
	assert.Equal(t, "101", exc.ExchangeValues[trades.FieldQuantity])
}

func TestReconcileMissingInExchange(t *testing.T) {
	broker := dataset(t, trades.DatasetBroker,
		[]string{"T3", "AAPL", "buy", "100", "50.00", "USD", "2024-03-01T10:00:00Z", "A1"},
	)
	exchange := dataset(t, trades.DatasetExchange)

	summary := reconcile(t, broker, exchange)
	require.Len(t, summary.Exceptions, 1)

	exc := summary.Exceptions[0]
	assert.Equal(t, recon.ClassificationMissingInExchange, exc.Classification)
	assert.Equal(t, recon.SeverityHigh, exc.Severity)
	assert.Empty(t, exc.MismatchedFields)
	assert.Equal(t, recon.NotFound, exc.ExchangeDisplay())
	assert.Contains(t, exc.BrokerDisplay(), "symbol=AAPL")
}

func TestReconcileMissingInBroker(t *testing.T) {
	broker := dataset(t, trades.DatasetBroker)
	exchange := dataset(t, trades.DatasetExchange,
		[]string{"T4", "MSFT", "sell", "10", "300", "USD", "2024-03-01T10:00:00Z", "A2"},
	)

	summary := reconcile(t, broker, exchange)
	require.Len(t, summary.Exceptions, 1)
	assert.Equal(t, recon.ClassificationMissingInBroker, summary.Exceptions[0].Classification)
	assert.Equal(t, recon.NotFound, summary.Exceptions[0].BrokerDisplay())
	assert.Equal(t, recon.SeverityHigh, summary.Exceptions[0].Severity)
}

func TestReconcileEmptyInputs(t *testing.T) {
	summary := reconcile(t, dataset(t, trades.DatasetBroker), dataset(t, trades.DatasetExchange))

	assert.Equal(t, 0, summary.TotalTrades)
	assert.Equal(t, 0, summary.MatchedCount)
	assert.Equal(t, 0, summary.MismatchCount)
	assert.Equal(t, 0, summary.MissingCount)
	assert.Empty(t, summary.Exceptions)

	stats := summary.Stats()
	assert.Zero(t, stats.MatchRatePct)
	assert.Zero(t, stats.ExceptionRatePct)
}

func TestReconcilePartitionCompleteness(t *testing.T) {
	broker := dataset(t, trades.DatasetBroker,
		[]string{"T1", "AAPL", "buy", "100", "50", "USD", "2024-03-01T10:00:00Z", "A1"},
		[]string{"T2", "MSFT", "sell", "10", "300", "USD", "2024-03-01T10:00:00Z", "A1"},
		[]string{"T3", "GOOG", "buy", "5", "140", "USD", "2024-03-01T10:00:00Z", "A1"},
	)
	exchange := dataset(t, trades.DatasetExchange,
		[]string{"T1", "AAPL", "buy", "100", "50", "USD", "2024-03-01T10:00:00Z", "A1"},
		[]string{"T2", "MSFT", "sell", "11", "300", "USD", "2024-03-01T10:00:00Z", "A1"},
		[]string{"T4", "TSLA", "buy", "7", "200", "USD", "2024-03-01T10:00:00Z", "A1"},
	)

	summary := reconcile(t, broker, exchange)
	assert.Equal(t, 4, summary.TotalTrades)
	assert.Equal(t, summary.TotalTrades, summary.MatchedCount+summary.MismatchCount+summary.MissingCount)

	seen := map[string]bool{}
	for _, exc := range summary.Exceptions {
		assert.False(t, seen[exc.TradeID], "duplicate trade_id %s in exception sequence", exc.TradeID)
		seen[exc.TradeID] = true
	}
}

func TestReconcileDeterministicOrdering(t *testing.T) {
	broker := dataset(t, trades.DatasetBroker,
		[]string{"T9", "AAPL", "buy", "1", "1", "USD", "2024-03-01T10:00:00Z", "A"},
		[]string{"T2", "MSFT", "sell", "2", "2", "USD", "2024-03-01T10:00:00Z", "A"},
		[]string{"T5", "GOOG", "buy", "3", "3", "USD", "2024-03-01T10:00:00Z", "A"},
	)
	exchange := dataset(t, trades.DatasetExchange,
		[]string{"T8", "NVDA", "buy", "4", "4", "USD", "2024-03-01T10:00:00Z", "A"},
		[]string{"T2", "MSFT", "sell", "9", "2", "USD", "2024-03-01T10:00:00Z", "A"},
		[]string{"T0", "AMD", "sell", "5", "5", "USD", "2024-03-01T10:00:00Z", "A"},
	)

	first := reconcile(t, broker, exchange)

	// Broker order first (T9, T2, T5), then exchange-only in exchange order (T8, T0).
	ids := make([]string, 0, len(first.Exceptions))
	for _, exc := range first.Exceptions {
		ids = append(ids, exc.TradeID)
	}
	assert.Equal(t, []string{"T9", "T2", "T5", "T8", "T0"}, ids)

	// Identical input, identical sequence.
	second := reconcile(t, broker, exchange)
	assert.Equal(t, first, second)
}

func TestReconcileParallelMatchesSequential(t *testing.T) {
	rows := make([][]string, 0, 50)
	exchangeRows := make([][]string, 0, 50)
	for i := 0; i < 50; i++ {
		id := "T" + string(rune('A'+i%26)) + string(rune('0'+i/26))
		rows = append(rows, []string{id, "AAPL", "buy", "100", "50.00", "USD", "2024-03-01T10:00:00Z", "A"})
		price := "50.00"
		if i%3 == 0 {
			price = "51.00" // beyond tolerance
		}
		exchangeRows = append(exchangeRows, []string{id, "AAPL", "buy", "100", price, "USD", "2024-03-01T10:00:00Z", "A"})
	}

	broker := dataset(t, trades.DatasetBroker, rows...)
	exchange := dataset(t, trades.DatasetExchange, exchangeRows...)

	sequential := reconcile(t, broker, exchange)
	parallel := reconcile(t, broker, exchange, recon.WithWorkers(8))

	assert.Equal(t, sequential, parallel)
}

func TestReconcileParseFailureBecomesComparisonError(t *testing.T) {
	broker := dataset(t, trades.DatasetBroker,
		[]string{"T1", "AAPL", "buy", "100", "not-a-price", "USD", "2024-03-01T10:00:00Z", "A"},
	)
	exchange := dataset(t, trades.DatasetExchange,
		[]string{"T1", "AAPL", "buy", "100", "50.00", "USD", "2024-03-01T10:00:00Z", "A"},
	)

	summary := reconcile(t, broker, exchange)
	require.Len(t, summary.Exceptions, 1)

	exc := summary.Exceptions[0]
	assert.Equal(t, recon.ClassificationComparisonError, exc.Classification)
	assert.Equal(t, recon.SeverityHigh, exc.Severity)
	assert.Contains(t, exc.Detail, "price")

	// Still counted, never silently matched or dropped.
	assert.Equal(t, 1, summary.TotalTrades)
	assert.Equal(t, 0, summary.MatchedCount)
	assert.Equal(t, 1, summary.MismatchCount)
}

func TestReconcileDuplicateReject(t *testing.T) {
	broker := dataset(t, trades.DatasetBroker,
		[]string{"T1", "AAPL", "buy", "100", "50", "USD", "2024-03-01T10:00:00Z", "A"},
		[]string{"T1", "AAPL", "buy", "100", "50", "USD", "2024-03-01T10:00:00Z", "A"},
	)
	exchange := dataset(t, trades.DatasetExchange)

	engine, err := recon.New()
	require.NoError(t, err)
	_, err = engine.Reconcile(context.Background(), broker, exchange)
	require.Error(t, err)
	assert.True(t, errors.IsSchema(err))
	assert.Contains(t, err.Error(), "T1")
	assert.Contains(t, err.Error(), "broker")
}

func TestReconcileDuplicateKeepFirst(t *testing.T) {
	broker := dataset(t, trades.DatasetBroker,
		[]string{"T1", "AAPL", "buy", "100", "50", "USD", "2024-03-01T10:00:00Z", "A"},
		[]string{"T1", "AAPL", "buy", "999", "50", "USD", "2024-03-01T10:00:00Z", "A"},
	)
	exchange := dataset(t, trades.DatasetExchange,
		[]string{"T1", "AAPL", "buy", "100", "50", "USD", "2024-03-01T10:00:00Z", "A"},
	)

	summary := reconcile(t, broker, exchange, recon.WithDuplicatePolicy(recon.DuplicateKeepFirst))
	assert.Equal(t, 1, summary.TotalTrades)
	assert.Equal(t, 1, summary.MatchedCount, "first occurrence (qty 100) should win")
}

func TestReconcileCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine, err := recon.New()
	require.NoError(t, err)
	_, err = engine.Reconcile(ctx,
		dataset(t, trades.DatasetBroker),
		dataset(t, trades.DatasetExchange),
	)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReconcileNilDataset(t *testing.T) {
	engine, err := recon.New()
	require.NoError(t, err)
	_, err = engine.Reconcile(context.Background(), nil, dataset(t, trades.DatasetExchange))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestNewOptionValidation(t *testing.T) {
	_, err := recon.New(recon.WithWorkers(0))
	assert.Error(t, err)

	_, err = recon.New(recon.WithFieldRules())
	assert.Error(t, err)
}

func TestParseDuplicatePolicy(t *testing.T) {
	policy, err := recon.ParseDuplicatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, recon.DuplicateReject, policy)

	policy, err = recon.ParseDuplicatePolicy("keep-first")
	require.NoError(t, err)
	assert.Equal(t, recon.DuplicateKeepFirst, policy)

	_, err = recon.ParseDuplicatePolicy("merge")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
