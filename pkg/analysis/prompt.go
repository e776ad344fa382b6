package analysis

import (
	"fmt"
	"strings"

	"github.com/tradeops/traderecon/pkg/recon"
)

// systemPrompt frames the analyzer as a reconciliation analyst and pins the
// output contract to JSON.
const systemPrompt = `You are a senior trade reconciliation analyst specializing in financial compliance and exception resolution.

Your expertise includes root cause analysis for trade discrepancies, risk assessment (financial, operational, compliance), regulatory compliance documentation, and actionable remediation strategies.

Analyze trade exceptions with the precision expected in enterprise financial operations. Output must be valid JSON with complete, professional descriptions. Never use placeholders like "N/A" or empty values.`

// userPrompt renders one exception into the analysis request.
func userPrompt(exc recon.Outcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze the following trade exception and provide a professional assessment.\n\n")
	fmt.Fprintf(&b, "TRADE EXCEPTION DETAILS:\n")
	fmt.Fprintf(&b, "- Trade ID: %s\n", exc.TradeID)
	fmt.Fprintf(&b, "- Exception Type: %s\n", exc.Classification)
	fmt.Fprintf(&b, "- Severity (engine): %s\n", exc.Severity)
	if len(exc.MismatchedFields) > 0 {
		fmt.Fprintf(&b, "- Discrepancy Fields: %s\n", strings.Join(exc.MismatchedFields, ", "))
	}
	fmt.Fprintf(&b, "- Broker System Values: %s\n", exc.BrokerDisplay())
	fmt.Fprintf(&b, "- Exchange System Values: %s\n", exc.ExchangeDisplay())
	if exc.Detail != "" {
		fmt.Fprintf(&b, "- Comparison Failure: %s\n", exc.Detail)
	}

	b.WriteString(`
Respond with JSON in exactly this structure:
{
  "root_cause": {
    "category": "One of: Data Entry Error | Timing Mismatch | System Synchronization | Rounding Discrepancy | Missing Data | Configuration Issue | Manual Override",
    "reason": "Detailed explanation of the root cause, suitable for audit documentation",
    "confidence_score": 0.0
  },
  "severity": "High | Medium | Low",
  "fix_suggestion": {
    "action_type": "SQL_UPDATE | API_CALL | MANUAL_REVIEW | ESCALATE",
    "suggested_fix": "Specific, actionable resolution steps",
    "estimated_time": "Realistic time estimate"
  },
  "risk_assessment": {
    "financial_risk": "Assessment of financial exposure and PnL impact",
    "operational_risk": "Impact on settlement and reconciliation processes",
    "compliance_risk": "Regulatory and audit implications",
    "overall_risk_level": "Critical | High | Medium | Low"
  },
  "compliance_note": "Single sentence suitable for compliance audit logs",
  "full_explanation": "Analysis of the exception, its business impact, and recommended resolution"
}`)

	return b.String()
}
