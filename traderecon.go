// Package traderecon reconciles trade records between broker and exchange
// ledgers. Records are paired by trade identifier, compared field by field
// under configurable tolerances, and classified into matched trades and
// exceptions with severity levels.
//
// The root package is a convenience facade over pkg/trades, pkg/recon, and
// pkg/analysis for embedding reconciliation in other programs:
//
//	summary, err := traderecon.ReconcileFiles(ctx, "broker.csv", "exchange.csv")
//
// For finer control, construct a recon.Engine directly.
package traderecon

import (
	"context"

	"github.com/tradeops/traderecon/pkg/analysis"
	"github.com/tradeops/traderecon/pkg/recon"
	"github.com/tradeops/traderecon/pkg/trades"
)

// Reconcile runs a reconciliation over two normalized datasets with the
// given engine options.
func Reconcile(ctx context.Context, broker, exchange *trades.Dataset, opts ...recon.Option) (*recon.Summary, error) {
	engine, err := recon.New(opts...)
	if err != nil {
		return nil, err
	}
	return engine.Reconcile(ctx, broker, exchange)
}

// ReconcileFiles loads two trade CSV files and reconciles them with the
// given engine options.
func ReconcileFiles(ctx context.Context, brokerPath, exchangePath string, opts ...recon.Option) (*recon.Summary, error) {
	broker, err := trades.LoadCSV(brokerPath, trades.DatasetBroker)
	if err != nil {
		return nil, err
	}
	exchange, err := trades.LoadCSV(exchangePath, trades.DatasetExchange)
	if err != nil {
		return nil, err
	}
	return Reconcile(ctx, broker, exchange, opts...)
}

// Analyze enriches a summary's exceptions with an Analyzer, preserving
// exception order. Failed analyses degrade to deterministic fallbacks.
func Analyze(ctx context.Context, summary *recon.Summary, analyzer analysis.Analyzer, opts ...analysis.EnricherOption) []analysis.Enriched {
	enricher := analysis.NewEnricher(analyzer, opts...)
	return enricher.EnrichAll(ctx, summary.Exceptions)
}
