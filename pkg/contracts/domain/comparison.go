package domain

import "time"

// MismatchRecord describes one compared station where at least one field disagrees.
type MismatchRecord struct {
	// Index is the 1-based station position in both tables.
	Index     int        `json:"index"`
	Fields    []Field    `json:"fields"`
	Primary   DisplayRow `json:"primary"`
	Secondary DisplayRow `json:"secondary"`
}

// Has reports whether field f disagreed on this station.
func (m MismatchRecord) Has(f Field) bool {
	for _, mf := range m.Fields {
		if mf == f {
			return true
		}
	}
	return false
}

// ComparisonSummary aggregates a positional comparison.
type ComparisonSummary struct {
	RowsCompared    int           `json:"rows_compared"`
	RowMismatches   int           `json:"row_mismatches"`
	FieldMismatch   map[Field]int `json:"field_mismatches"`
	AccuracyPct     float64       `json:"accuracy_percent"`
	PrimaryRows     int           `json:"primary_rows"`
	SecondaryRows   int           `json:"secondary_rows"`
	PrimarySource   string        `json:"primary_source"`
	SecondarySource string        `json:"secondary_source"`
}

// CellRef points at one cell of a table by zero-based row and field.
type CellRef struct {
	Row   int   `json:"row"`
	Field Field `json:"field"`
}

// DeltaStats summarises absolute differences of one field across compared stations.
type DeltaStats struct {
	Samples int     `json:"samples"`
	MeanAbs float64 `json:"mean_abs"`
	MaxAbs  float64 `json:"max_abs"`
	Median  float64 `json:"median_abs"`
}

// Highlight is a cell styling directive for the presentation layer.
type Highlight struct {
	RowIndex        int    `json:"row_index"`
	ColumnID        string `json:"column_id"`
	BackgroundColor string `json:"background_color"`
	Color           string `json:"color"`
	FontWeight      string `json:"font_weight"`
}

// MismatchTableRow is one row of the consolidated mismatch table, keyed by
// "Index" and "<SOURCE>_<FIELD>" column identifiers.
type MismatchTableRow map[string]any

// ComparisonReport bundles every output consumed by the presentation layer.
type ComparisonReport struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	PrimarySource   string `json:"primary_source"`
	SecondarySource string `json:"secondary_source"`
	PrimaryFile     string `json:"primary_file,omitempty"`
	SecondaryFile   string `json:"secondary_file,omitempty"`

	PrimaryRows   []DisplayRow `json:"primary_rows"`
	SecondaryRows []DisplayRow `json:"secondary_rows"`

	PrimaryHighlights   []Highlight `json:"primary_highlights"`
	SecondaryHighlights []Highlight `json:"secondary_highlights"`

	Summary    string               `json:"summary"`
	Stats      *ComparisonSummary   `json:"stats,omitempty"`
	Deltas     map[Field]DeltaStats `json:"deltas,omitempty"`
	Mismatches []MismatchRecord     `json:"mismatches"`

	MismatchTable      []MismatchTableRow `json:"mismatch_table"`
	MismatchHighlights []Highlight        `json:"mismatch_highlights"`

	PrimaryExport   string `json:"primary_export"`
	SecondaryExport string `json:"secondary_export"`

	Error string `json:"error,omitempty"`
}

// Failed reports whether the report is an error report.
func (r *ComparisonReport) Failed() bool { return r.Error != "" }
