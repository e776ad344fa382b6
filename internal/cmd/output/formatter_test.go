package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeops/traderecon/pkg/recon"
)

func sampleReport() *Report {
	summary := &recon.Summary{
		TotalTrades:   4,
		MatchedCount:  2,
		MismatchCount: 1,
		MissingCount:  1,
		Exceptions: []recon.Outcome{
			{
				TradeID:          "T2",
				Classification:   recon.ClassificationMismatch,
				MismatchedFields: []string{"price"},
				BrokerValues:     map[string]string{"price": "100.00"},
				ExchangeValues:   map[string]string{"price": "101.00"},
				Severity:         recon.SeverityHigh,
			},
			{
				TradeID:        "T3",
				Classification: recon.ClassificationMissingInExchange,
				BrokerValues:   map[string]string{"symbol": "AAPL"},
				Severity:       recon.SeverityHigh,
			},
		},
	}
	return NewReport("broker.csv", "exchange.csv", summary, nil)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter(FormatJSON)
	require.NoError(t, formatter.Format(&buf, sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "broker.csv", decoded["broker_file"])

	exceptions, ok := decoded["exceptions"].([]any)
	require.True(t, ok)
	assert.Len(t, exceptions, 2)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter(FormatYAML)
	require.NoError(t, formatter.Format(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "trade_id: T2")
	assert.Contains(t, out, "type: missing_in_exchange")
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter(FormatCSV)
	require.NoError(t, formatter.Format(&buf, sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Trade Id,Type,Severity,Fields,Broker Values,Exchange Values", lines[0])
	assert.Contains(t, lines[1], "T2")
	assert.Contains(t, lines[2], "NOT FOUND")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter(FormatTable)
	require.NoError(t, formatter.Format(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "T2")
	assert.Contains(t, out, "T3")
	assert.Contains(t, out, "NOT FOUND")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter(FormatTable)
	require.NoError(t, formatter.Format(&buf, map[string]string{"key": "value"}))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "value", decoded["key"])
}

func TestNewFormatterFoldsCase(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewFormatter(Format("JSON"))
	require.NoError(t, formatter.Format(&buf, sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "broker.csv", decoded["broker_file"])
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "Trade Id", Header("trade_id"))
	assert.Equal(t, "Severity", Header("severity"))
}
