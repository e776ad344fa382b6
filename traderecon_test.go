package traderecon_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeops/traderecon"
	"github.com/tradeops/traderecon/pkg/analysis"
	"github.com/tradeops/traderecon/pkg/recon"
)

const header = "trade_id,symbol,side,quantity,price,currency,trade_time,account_id\n"

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReconcileFiles(t *testing.T) {
	brokerPath := writeCSV(t, "broker.csv", header+
		"T1,AAPL,BUY,100,50.25,USD,2024-01-15T10:30:00Z,ACC-1\n"+
		"T2,MSFT,SELL,200,310.00,USD,2024-01-15T11:00:00Z,ACC-1\n"+
		"T3,GOOG,BUY,50,140.10,USD,2024-01-15T11:30:00Z,ACC-2\n")
	exchangePath := writeCSV(t, "exchange.csv", header+
		"T1,AAPL,BUY,100,50.25,USD,2024-01-15T10:30:00Z,ACC-1\n"+
		"T2,MSFT,SELL,200,315.00,USD,2024-01-15T11:00:00Z,ACC-1\n")

	summary, err := traderecon.ReconcileFiles(context.Background(), brokerPath, exchangePath)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalTrades)
	assert.Equal(t, 1, summary.MatchedCount)
	assert.Equal(t, 1, summary.MismatchCount)
	assert.Equal(t, 1, summary.MissingCount)
	require.Len(t, summary.Exceptions, 2)
	assert.Equal(t, "T2", summary.Exceptions[0].TradeID)
	assert.Equal(t, recon.ClassificationMismatch, summary.Exceptions[0].Classification)
	assert.Equal(t, "T3", summary.Exceptions[1].TradeID)
	assert.Equal(t, recon.ClassificationMissingInExchange, summary.Exceptions[1].Classification)
}

func TestReconcileFilesMissingFile(t *testing.T) {
	exchangePath := writeCSV(t, "exchange.csv", header)

	_, err := traderecon.ReconcileFiles(context.Background(), "no-such-file.csv", exchangePath)
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	brokerPath := writeCSV(t, "broker.csv", header+
		"T1,AAPL,BUY,100,50.25,USD,2024-01-15T10:30:00Z,ACC-1\n")
	exchangePath := writeCSV(t, "exchange.csv", header+
		"T1,AAPL,SELL,100,50.25,USD,2024-01-15T10:30:00Z,ACC-1\n")

	summary, err := traderecon.ReconcileFiles(context.Background(), brokerPath, exchangePath)
	require.NoError(t, err)
	require.Len(t, summary.Exceptions, 1)

	analyzer := analysis.AnalyzerFunc(func(_ context.Context, exc recon.Outcome) (*analysis.Analysis, error) {
		if exc.TradeID != "T1" {
			return nil, fmt.Errorf("unexpected trade %s", exc.TradeID)
		}
		return &analysis.Analysis{TradeID: exc.TradeID}, nil
	})

	enriched := traderecon.Analyze(context.Background(), summary, analyzer)
	require.Len(t, enriched, 1)
	assert.Equal(t, "T1", enriched[0].Analysis.TradeID)
	assert.False(t, enriched[0].Analysis.Fallback)
}
