package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeops/traderecon/pkg/errors"
	"github.com/tradeops/traderecon/pkg/recon"
)

func TestFallbackDeterministic(t *testing.T) {
	exc := recon.Outcome{
		TradeID:          "T42",
		Classification:   recon.ClassificationMismatch,
		MismatchedFields: []string{"quantity", "price"},
		Severity:         recon.SeverityHigh,
	}

	first, err := json.Marshal(Fallback(exc))
	require.NoError(t, err)
	second, err := json.Marshal(Fallback(exc))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFallbackContent(t *testing.T) {
	exc := recon.Outcome{
		TradeID:        "T7",
		Classification: recon.ClassificationMissingInExchange,
		Severity:       recon.SeverityHigh,
	}

	analysis := Fallback(exc)

	assert.True(t, analysis.Fallback)
	assert.Equal(t, FallbackModel, analysis.Model)
	assert.Equal(t, "T7", analysis.TradeID)
	assert.Equal(t, recon.SeverityHigh, analysis.Severity)
	assert.Equal(t, "System Synchronization", analysis.RootCause.Category)
	assert.InDelta(t, 0.5, analysis.RootCause.Confidence, 0.0001)
	assert.Equal(t, "MANUAL_REVIEW", analysis.FixSuggestion.ActionType)
	assert.Contains(t, analysis.RootCause.Reason, "T7")
	assert.Contains(t, analysis.RootCause.Reason, "missing_in_exchange")
}

func TestFallbackDefaultSeverity(t *testing.T) {
	analysis := Fallback(recon.Outcome{TradeID: "T1", Classification: recon.ClassificationMismatch})
	assert.Equal(t, recon.SeverityMedium, analysis.Severity)
}

func TestFallbackJSONMarkers(t *testing.T) {
	data, err := json.Marshal(Fallback(recon.Outcome{TradeID: "T1", Classification: recon.ClassificationMismatch}))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["_error"])
	assert.Equal(t, "fallback", decoded["_engine_model"])
	assert.Equal(t, "T1", decoded["_trade_id"])
}

func TestNewGeminiRequiresAPIKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}
