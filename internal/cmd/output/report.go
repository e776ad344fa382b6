package output

import (
	"strings"

	"github.com/agentstation/utc"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/tradeops/traderecon/pkg/analysis"
	"github.com/tradeops/traderecon/pkg/recon"
)

// Report is the presentation model for one reconciliation run. It carries
// the derived statistics alongside the exception sequence so a single value
// renders to any output format.
type Report struct {
	GeneratedAt  utc.Time    `json:"generated_at" yaml:"generated_at"`
	BrokerFile   string      `json:"broker_file" yaml:"broker_file"`
	ExchangeFile string      `json:"exchange_file" yaml:"exchange_file"`
	Stats        recon.Stats `json:"stats" yaml:"stats"`
	Exceptions   []Exception `json:"exceptions" yaml:"exceptions"`
}

// Exception is one exception row, optionally enriched with analysis.
type Exception struct {
	TradeID        string             `json:"trade_id" yaml:"trade_id"`
	Type           string             `json:"type" yaml:"type"`
	Severity       string             `json:"severity" yaml:"severity"`
	Fields         []string           `json:"fields,omitempty" yaml:"fields,omitempty"`
	BrokerValues   string             `json:"broker_values" yaml:"broker_values"`
	ExchangeValues string             `json:"exchange_values" yaml:"exchange_values"`
	Detail         string             `json:"detail,omitempty" yaml:"detail,omitempty"`
	Analysis       *analysis.Analysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// NewReport builds the presentation model from a reconciliation summary and
// the optional enriched analyses. When enriched is non-nil it must be
// index-aligned with the summary's exceptions.
func NewReport(brokerFile, exchangeFile string, summary *recon.Summary, enriched []analysis.Enriched) *Report {
	report := &Report{
		GeneratedAt:  utc.Now(),
		BrokerFile:   brokerFile,
		ExchangeFile: exchangeFile,
		Stats:        summary.Stats(),
		Exceptions:   make([]Exception, 0, len(summary.Exceptions)),
	}

	for i, exc := range summary.Exceptions {
		row := Exception{
			TradeID:        exc.TradeID,
			Type:           string(exc.Classification),
			Severity:       string(exc.Severity),
			Fields:         exc.MismatchedFields,
			BrokerValues:   exc.BrokerDisplay(),
			ExchangeValues: exc.ExchangeDisplay(),
			Detail:         exc.Detail,
		}
		if enriched != nil && i < len(enriched) {
			row.Analysis = enriched[i].Analysis
		}
		report.Exceptions = append(report.Exceptions, row)
	}

	return report
}

// TableData renders the exception sequence for table and CSV output.
func (r *Report) TableData() Data {
	data := Data{
		Headers: []string{
			Header("trade_id"),
			Header("type"),
			Header("severity"),
			Header("fields"),
			Header("broker_values"),
			Header("exchange_values"),
		},
		ColumnAlignment: []tw.Align{
			tw.AlignLeft, tw.AlignLeft, tw.AlignCenter,
			tw.AlignLeft, tw.AlignLeft, tw.AlignLeft,
		},
	}

	for _, exc := range r.Exceptions {
		data.Rows = append(data.Rows, []string{
			exc.TradeID,
			exc.Type,
			exc.Severity,
			strings.Join(exc.Fields, ", "),
			exc.BrokerValues,
			exc.ExchangeValues,
		})
	}

	return data
}
