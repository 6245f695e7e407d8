package exporter

import (
	"fmt"
	"strings"

	"sidebyside/pkg/contracts/domain"
)

const (
	// IdlePrompt is shown until both surveys are uploaded.
	IdlePrompt = "📊 Upload both MWD and DD survey files to compare."

	// ExportHeader is the first line of every non-empty export block.
	ExportHeader = "MD,INC,AZ"

	summaryTitle = "📊 Survey Comparison Summary"
	summaryRule  = 28
)

// SummaryText renders the fixed-format comparison summary. Every line,
// including the last, ends in a newline.
func SummaryText(s domain.ComparisonSummary) string {
	var b strings.Builder
	b.WriteString(summaryTitle + "\n")
	b.WriteString(strings.Repeat("─", summaryRule) + "\n")
	fmt.Fprintf(&b, "Total Rows Compared: %d\n", s.RowsCompared)
	fmt.Fprintf(&b, "Row Mismatches: %d\n", s.RowMismatches)
	for _, f := range domain.Fields {
		fmt.Fprintf(&b, "%s Mismatches: %d\n", f, s.FieldMismatch[f])
	}
	fmt.Fprintf(&b, "Accuracy: %s\n", formatPercent(s.AccuracyPct))
	return b.String()
}

// ErrorText is the summary shown in place of results when parsing fails.
func ErrorText(err error) string {
	return "❌ Error parsing files:\n" + err.Error()
}
