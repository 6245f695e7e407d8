package exporter

import (
	"fmt"
	"strings"

	"sidebyside/pkg/contracts/domain"
)

// formatPercent renders an accuracy value the way the summary shows it.
func formatPercent(f float64) string {
	return fmt.Sprintf("%.2f%%", f)
}

// columnID names a mismatch-table column, e.g. "MWD_MD".
func columnID(source string, f domain.Field) string {
	return source + "_" + string(f)
}

// exportBlock renders one side of the mismatches as "MD,INC,AZ" lines.
// It is empty when there are no rows.
func exportBlock(rows []domain.DisplayRow) string {
	if len(rows) == 0 {
		return ""
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = strings.Join(r.Values(), ",")
	}
	return ExportHeader + "\n" + strings.Join(lines, "\n")
}
