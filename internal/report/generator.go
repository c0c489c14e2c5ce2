package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"fjacquet/rabbit/internal/logging"

	"gopkg.in/yaml.v3"
)

// Report formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ReportGenerator renders a Summary in various formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	return &ReportGenerator{
		logger: logging.OrDefault(logger).WithField("component", "ReportGenerator"),
	}
}

// GenerateReport renders the summary as text, json or yaml.
func (g *ReportGenerator) GenerateReport(summary Summary, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return g.generateTextReport(summary)
	case FormatJSON:
		return g.generateJSONReport(summary)
	case FormatYAML:
		return g.generateYAMLReport(summary)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(summary Summary) ([]byte, error) {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}

func (g *ReportGenerator) generateYAMLReport(summary Summary) ([]byte, error) {
	out, err := yaml.Marshal(summary)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return out, nil
}

// generateTextReport renders an aligned table, used as the email body.
func (g *ReportGenerator) generateTextReport(summary Summary) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Spend summary for profile %s\n\n", summary.Profile)

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Category\tCount\tSpent\tBudget\tRemaining\t")
	for _, line := range summary.Lines {
		budget, remaining := "-", "-"
		if line.HasBudget() {
			budget = line.Budget.StringFixed(2)
			remaining = line.Remaining.StringFixed(2)
			if line.OverBudget {
				remaining += " (over)"
			}
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t\n", line.Category, line.Count, line.Spent.StringFixed(2), budget, remaining)
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render text report: %w", err)
	}

	fmt.Fprintf(&buf, "\nTotal: %s over %d transactions", summary.Total.StringFixed(2), summary.Transactions)
	if summary.Uncategorized > 0 {
		fmt.Fprintf(&buf, " (%d uncategorized)", summary.Uncategorized)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
