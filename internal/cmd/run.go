package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tradeops/traderecon/internal/cmd/output"
	"github.com/tradeops/traderecon/internal/config"
	"github.com/tradeops/traderecon/pkg/analysis"
	"github.com/tradeops/traderecon/pkg/logging"
	"github.com/tradeops/traderecon/pkg/recon"
	"github.com/tradeops/traderecon/pkg/trades"
)

var (
	runBrokerFile   string
	runExchangeFile string
	runAnalyze      bool
	runDuplicates   string
	runWorkers      int
	runAmountTol    float64
	runTimeTol      time.Duration
)

// runCmd reconciles a broker file against an exchange file.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile broker trades against exchange trades",
	Long: `Run a reconciliation between a broker CSV file and an exchange CSV file.

Records are paired by trade_id. Matched pairs are compared field by field
under the configured tolerances; one-sided records are reported as missing.
Exceptions can optionally be enriched with automated root-cause analysis.`,
	RunE: runRecon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runBrokerFile, "broker", "", "Broker trades CSV file (required)")
	runCmd.Flags().StringVar(&runExchangeFile, "exchange", "", "Exchange trades CSV file (required)")
	runCmd.Flags().BoolVar(&runAnalyze, "analyze", false, "Enrich exceptions with automated analysis")
	runCmd.Flags().StringVar(&runDuplicates, "duplicates", "", "Duplicate trade_id policy: reject, keep-first")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Concurrent comparison workers")
	runCmd.Flags().Float64Var(&runAmountTol, "amount-tolerance", 0, "Numeric tolerance for quantity and price")
	runCmd.Flags().DurationVar(&runTimeTol, "time-tolerance", 0, "Timing tolerance for trade_time")

	_ = runCmd.MarkFlagRequired("broker")
	_ = runCmd.MarkFlagRequired("exchange")
}

func runRecon(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logging.Default()

	settings := resolveSettings(cmd)

	duplicates, err := recon.ParseDuplicatePolicy(settings.Duplicates)
	if err != nil {
		return err
	}

	broker, err := trades.LoadCSV(runBrokerFile, trades.DatasetBroker)
	if err != nil {
		return fmt.Errorf("loading broker trades: %w", err)
	}
	exchange, err := trades.LoadCSV(runExchangeFile, trades.DatasetExchange)
	if err != nil {
		return fmt.Errorf("loading exchange trades: %w", err)
	}

	log.Info().
		Str("broker_file", runBrokerFile).
		Int("broker_records", broker.Len()).
		Str("exchange_file", runExchangeFile).
		Int("exchange_records", exchange.Len()).
		Msg("Loaded trade datasets")

	engine, err := recon.New(
		recon.WithAmountTolerance(decimal.NewFromFloat(settings.AmountTolerance)),
		recon.WithTimeTolerance(settings.TimeTolerance),
		recon.WithDuplicatePolicy(duplicates),
		recon.WithWorkers(settings.Workers),
	)
	if err != nil {
		return err
	}

	summary, err := engine.Reconcile(ctx, broker, exchange)
	if err != nil {
		return err
	}

	stats := summary.Stats()
	log.Info().
		Int("total", stats.TotalTrades).
		Int("matched", stats.MatchedTrades).
		Int("mismatches", stats.Mismatches).
		Int("missing", stats.MissingTrades).
		Float64("match_rate_pct", stats.MatchRatePct).
		Msg("Reconciliation complete")

	var enriched []analysis.Enriched
	if runAnalyze && len(summary.Exceptions) > 0 {
		enriched, err = analyzeExceptions(ctx, settings, summary)
		if err != nil {
			return err
		}
	}

	report := output.NewReport(runBrokerFile, runExchangeFile, summary, enriched)
	formatter := output.NewFormatter(output.Format(flagFormat))

	if output.Format(flagFormat) == output.FormatTable && !flagQuiet {
		printSummary(stats)
	}

	return formatter.Format(os.Stdout, report)
}

// resolveSettings merges config-file and environment settings with any
// explicitly set command-line flags, flags winning.
func resolveSettings(cmd *cobra.Command) config.Settings {
	settings := config.Load()

	if cmd.Flags().Changed("duplicates") {
		settings.Duplicates = runDuplicates
	}
	if cmd.Flags().Changed("workers") {
		settings.Workers = runWorkers
	}
	if cmd.Flags().Changed("amount-tolerance") {
		settings.AmountTolerance = runAmountTol
	}
	if cmd.Flags().Changed("time-tolerance") {
		settings.TimeTolerance = runTimeTol
	}

	return settings
}

// analyzeExceptions enriches the exception sequence with automated analysis.
func analyzeExceptions(ctx context.Context, settings config.Settings, summary *recon.Summary) ([]analysis.Enriched, error) {
	apiKey, err := config.GeminiAPIKey()
	if err != nil {
		return nil, err
	}

	gemini, err := analysis.NewGemini(ctx, apiKey, analysis.WithModel(settings.AnalyzeModel))
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("model", settings.AnalyzeModel).
		Int("exceptions", len(summary.Exceptions)).
		Msg("Analyzing exceptions")

	enricher := analysis.NewEnricher(gemini, analysis.WithAttempts(settings.AnalyzeAttempts))
	return enricher.EnrichAll(ctx, summary.Exceptions), nil
}

// printSummary writes the human-readable run summary before the exception
// table.
func printSummary(stats recon.Stats) {
	fmt.Printf("Total trades:   %d\n", stats.TotalTrades)
	fmt.Printf("Matched:        %d (%.2f%%)\n", stats.MatchedTrades, stats.MatchRatePct)
	fmt.Printf("Mismatches:     %d\n", stats.Mismatches)
	fmt.Printf("Missing:        %d\n", stats.MissingTrades)
	if stats.TotalExceptions == 0 {
		fmt.Println("No exceptions.")
		return
	}
	fmt.Printf("Exceptions:     %d (%.2f%%)\n\n", stats.TotalExceptions, stats.ExceptionRatePct)
}
