package exporter

import (
	"sidebyside/internal/comparison"
	"sidebyside/pkg/contracts/domain"
)

// Palette assigns a background color to each field.
type Palette map[domain.Field]string

var (
	// SourcePalette colors mismatched cells in the two source tables.
	SourcePalette = Palette{
		domain.FieldMD:  "#d22e2e",
		domain.FieldINC: "#d27c2e",
		domain.FieldAZ:  "#7c2ed2",
	}

	// MismatchPalette colors cells in the consolidated mismatch table.
	MismatchPalette = Palette{
		domain.FieldMD:  "#d22e2e",
		domain.FieldINC: "#e88325",
		domain.FieldAZ:  "#7c2ed2",
	}
)

const (
	highlightText   = "#fff"
	highlightWeight = "bold"
)

func (p Palette) highlight(row int, column string, f domain.Field) domain.Highlight {
	return domain.Highlight{
		RowIndex:        row,
		ColumnID:        column,
		BackgroundColor: p[f],
		Color:           highlightText,
		FontWeight:      highlightWeight,
	}
}

// SourceHighlights turns mismatched cells into directives for a source
// table. Both source tables receive the same list.
func SourceHighlights(cells []domain.CellRef) []domain.Highlight {
	out := make([]domain.Highlight, len(cells))
	for i, c := range cells {
		out[i] = SourcePalette.highlight(c.Row, string(c.Field), c.Field)
	}
	return out
}

// MismatchTable builds the consolidated table and its highlights. Row
// indexes in the highlights are positions in the mismatch list, not stations.
func MismatchTable(res *comparison.Result) ([]domain.MismatchTableRow, []domain.Highlight) {
	ps, ss := res.Summary.PrimarySource, res.Summary.SecondarySource

	rows := make([]domain.MismatchTableRow, 0, len(res.Mismatches))
	highlights := []domain.Highlight{}
	for pos, m := range res.Mismatches {
		row := domain.MismatchTableRow{"Index": m.Index}
		for _, f := range domain.Fields {
			row[columnID(ps, f)] = m.Primary.Get(f)
			row[columnID(ss, f)] = m.Secondary.Get(f)
		}
		rows = append(rows, row)

		for _, f := range m.Fields {
			highlights = append(highlights,
				MismatchPalette.highlight(pos, columnID(ps, f), f),
				MismatchPalette.highlight(pos, columnID(ss, f), f))
		}
	}
	return rows, highlights
}

// MismatchColumns lists the mismatch-table columns in display order.
func MismatchColumns(primarySource, secondarySource string) []string {
	cols := []string{"Index"}
	for _, src := range []string{primarySource, secondarySource} {
		for _, f := range domain.Fields {
			cols = append(cols, columnID(src, f))
		}
	}
	return cols
}
