package analysis

import (
	"context"
	"sync"

	"github.com/tradeops/traderecon/pkg/logging"
	"github.com/tradeops/traderecon/pkg/recon"
)

// Default enrichment budgets.
const (
	// DefaultAttempts is the per-exception analyzer budget (first call
	// plus retries).
	DefaultAttempts = 2
	// DefaultConcurrency bounds how many exceptions are analyzed at once.
	DefaultConcurrency = 4
)

// Enricher applies an Analyzer across an exception sequence. Each exception
// is analyzed independently under an at-most-N-attempts budget; on
// exhaustion the deterministic fallback is substituted, so the enriched
// sequence always has the same length and order as the input and a slow or
// failing analysis of one exception never blocks or corrupts the others.
type Enricher struct {
	analyzer    Analyzer
	attempts    int
	concurrency int
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithAttempts sets the per-exception analyzer budget. Values below 1 are
// ignored.
func WithAttempts(n int) EnricherOption {
	return func(e *Enricher) {
		if n >= 1 {
			e.attempts = n
		}
	}
}

// WithConcurrency bounds concurrent analyses. Values below 1 are ignored.
func WithConcurrency(n int) EnricherOption {
	return func(e *Enricher) {
		if n >= 1 {
			e.concurrency = n
		}
	}
}

// NewEnricher creates an Enricher around an Analyzer.
func NewEnricher(analyzer Analyzer, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		analyzer:    analyzer,
		attempts:    DefaultAttempts,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnrichAll analyzes every exception and returns the enriched sequence in
// input order. It never returns an error: collaborator failures degrade to
// fallback analyses marked with Fallback=true.
func (e *Enricher) EnrichAll(ctx context.Context, exceptions []recon.Outcome) []Enriched {
	enriched := make([]Enriched, len(exceptions))

	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup

	for i := range exceptions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			enriched[i] = Enriched{
				Exception: exceptions[i],
				Analysis:  e.Enrich(ctx, exceptions[i]),
			}
		}(i)
	}

	wg.Wait()
	return enriched
}

// Enrich analyzes one exception under the attempts budget, substituting the
// deterministic fallback when the budget is exhausted.
func (e *Enricher) Enrich(ctx context.Context, exc recon.Outcome) *Analysis {
	log := logging.Ctx(ctx)

	for attempt := 1; attempt <= e.attempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		result, err := e.analyzer.Analyze(ctx, exc)
		if err == nil {
			return result
		}

		log.Warn().
			Err(err).
			Str("analyzer", e.analyzer.Name()).
			Str("trade_id", exc.TradeID).
			Int("attempt", attempt).
			Int("budget", e.attempts).
			Msg("Exception analysis failed")
	}

	log.Info().
		Str("trade_id", exc.TradeID).
		Msg("Substituting fallback analysis")
	return Fallback(exc)
}
