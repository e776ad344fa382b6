package analysis

import (
	"fmt"

	"github.com/tradeops/traderecon/pkg/recon"
)

// FallbackModel is the Model value carried by fallback analyses.
const FallbackModel = "fallback"

// Fallback generates the deterministic substitute analysis used when the
// analyzer budget is exhausted. It is a pure function of the exception: the
// same exception always produces byte-identical fallback text, so enrichment
// output stays deterministic even under collaborator failure.
func Fallback(exc recon.Outcome) *Analysis {
	severity := exc.Severity
	if severity == "" {
		severity = recon.SeverityMedium
	}

	kind := string(exc.Classification)

	return &Analysis{
		RootCause: RootCause{
			Category: "System Synchronization",
			Reason: fmt.Sprintf(
				"Trade %s exhibits a %s requiring manual investigation. Automated analysis was unable to complete. "+
					"A qualified analyst should review the broker and exchange records to determine the specific cause of the discrepancy.",
				exc.TradeID, kind),
			Confidence: 0.5,
		},
		Severity: severity,
		FixSuggestion: FixSuggestion{
			ActionType: "MANUAL_REVIEW",
			SuggestedFix: fmt.Sprintf(
				"Escalate trade %s to the reconciliation team for detailed investigation. Compare source documents from both "+
					"broker and exchange systems to identify the root cause. Document findings in the trade exception log.",
				exc.TradeID),
			EstimatedTime: "2-4 hours",
		},
		RiskAssessment: RiskAssessment{
			FinancialRisk:    "Moderate financial exposure pending investigation. Potential PnL impact should be assessed during manual review.",
			OperationalRisk:  "Standard operational review required. May impact settlement timing if not resolved within SLA.",
			ComplianceRisk:   "Exception properly logged for audit trail. Requires resolution documentation for regulatory compliance.",
			OverallRiskLevel: "Medium",
		},
		ComplianceNote: fmt.Sprintf(
			"Trade %s flagged for manual review due to automated analysis limitations. Investigation initiated and documented in the exception tracking system.",
			exc.TradeID),
		FullExplanation: fmt.Sprintf(
			"Trade %s has been flagged as a %s requiring manual investigation. While automated analysis encountered technical "+
				"constraints, the exception has been properly documented and escalated to the reconciliation team for resolution.",
			exc.TradeID, kind),
		Fallback: true,
		Model:    FallbackModel,
		TradeID:  exc.TradeID,
	}
}
