// Package analysis models the exception-analysis collaborator boundary: an
// Analyzer produces a structured assessment for a single reconciliation
// exception, and an Enricher applies one across an exception sequence with a
// bounded retry budget and a deterministic fallback, so enrichment can
// partially fail without ever corrupting the reconciliation result.
package analysis

import (
	"context"

	"github.com/tradeops/traderecon/pkg/recon"
)

// Analyzer analyzes a single reconciliation exception. Implementations may
// run with arbitrary latency and must be safe for concurrent use; the
// Enricher treats every call as independent, retryable, and individually
// failable.
type Analyzer interface {
	// Name identifies the analyzer in logs and result metadata.
	Name() string

	// Analyze produces a structured analysis for one exception.
	Analyze(ctx context.Context, exc recon.Outcome) (*Analysis, error)
}

// RootCause categorizes why a discrepancy occurred.
type RootCause struct {
	Category   string  `json:"category"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence_score"`
}

// FixSuggestion describes the recommended resolution.
type FixSuggestion struct {
	ActionType    string `json:"action_type"`
	SuggestedFix  string `json:"suggested_fix"`
	EstimatedTime string `json:"estimated_time"`
}

// RiskAssessment summarizes exposure across the standard risk dimensions.
type RiskAssessment struct {
	FinancialRisk    string `json:"financial_risk"`
	OperationalRisk  string `json:"operational_risk"`
	ComplianceRisk   string `json:"compliance_risk"`
	OverallRiskLevel string `json:"overall_risk_level"`
}

// Analysis is the structured assessment of one exception. Fallback analyses
// carry the same shape as genuine ones, so downstream aggregation never
// needs to special-case failures; the Fallback marker (serialized as
// "_error") is how callers tell them apart.
type Analysis struct {
	RootCause       RootCause      `json:"root_cause"`
	Severity        recon.Severity `json:"severity"`
	FixSuggestion   FixSuggestion  `json:"fix_suggestion"`
	RiskAssessment  RiskAssessment `json:"risk_assessment"`
	ComplianceNote  string         `json:"compliance_note"`
	FullExplanation string         `json:"full_explanation"`

	Fallback bool   `json:"_error,omitempty"`
	Model    string `json:"_engine_model,omitempty"`
	TradeID  string `json:"_trade_id,omitempty"`
}

// Enriched pairs an exception with its analysis.
type Enriched struct {
	Exception recon.Outcome `json:"exception"`
	Analysis  *Analysis     `json:"analysis"`
}

// AnalyzerFunc adapts a function to the Analyzer interface, which keeps
// tests and small custom collaborators cheap.
type AnalyzerFunc func(ctx context.Context, exc recon.Outcome) (*Analysis, error)

// Name implements Analyzer.
func (f AnalyzerFunc) Name() string { return "func" }

// Analyze implements Analyzer.
func (f AnalyzerFunc) Analyze(ctx context.Context, exc recon.Outcome) (*Analysis, error) {
	return f(ctx, exc)
}
