package domain

import (
	"encoding/json"
	"fmt"
)

// Field identifies one canonical survey column.
type Field string

const (
	FieldMD  Field = "MD"
	FieldINC Field = "INC"
	FieldAZ  Field = "AZ"
)

// Fields lists the canonical survey columns in display order.
var Fields = [3]Field{FieldMD, FieldINC, FieldAZ}

// Valid reports whether f is one of the canonical survey columns.
func (f Field) Valid() bool {
	switch f {
	case FieldMD, FieldINC, FieldAZ:
		return true
	}
	return false
}

// SurveyRow is one survey station. Values hold the parsed numbers and
// Display the fixed two-decimal rendering of the same numbers.
type SurveyRow struct {
	MD  float64 `json:"-"`
	INC float64 `json:"-"`
	AZ  float64 `json:"-"`

	Display DisplayRow `json:"display"`
}

// NewSurveyRow builds a row and renders its display strings.
func NewSurveyRow(md, inc, az float64) SurveyRow {
	return SurveyRow{
		MD:  md,
		INC: inc,
		AZ:  az,
		Display: DisplayRow{
			MD:  FormatValue(md),
			INC: FormatValue(inc),
			AZ:  FormatValue(az),
		},
	}
}

// DisplayRow is the formatted record handed to the presentation layer.
type DisplayRow struct {
	MD  string `json:"MD"`
	INC string `json:"INC"`
	AZ  string `json:"AZ"`
}

// Get returns the formatted value of field f.
func (d DisplayRow) Get(f Field) string {
	switch f {
	case FieldINC:
		return d.INC
	case FieldAZ:
		return d.AZ
	default:
		return d.MD
	}
}

// Values returns the formatted values in canonical order.
func (d DisplayRow) Values() []string {
	return []string{d.MD, d.INC, d.AZ}
}

// FormatValue renders a survey number with exactly two decimal places.
func FormatValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// SurveyTable is the canonical MD/INC/AZ table extracted from one upload.
// A table is never mutated after construction; a new upload produces a new table.
type SurveyTable struct {
	source   string
	strategy string
	rows     []SurveyRow
}

// NewSurveyTable copies rows into a new immutable table.
func NewSurveyTable(source, strategy string, rows []SurveyRow) *SurveyTable {
	cp := make([]SurveyRow, len(rows))
	copy(cp, rows)
	return &SurveyTable{source: source, strategy: strategy, rows: cp}
}

// Source is the tag the table was uploaded under, e.g. "MWD" or "DD".
func (t *SurveyTable) Source() string { return t.source }

// Strategy names the layout strategy that produced the table.
func (t *SurveyTable) Strategy() string { return t.strategy }

// Len returns the number of stations.
func (t *SurveyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns station i.
func (t *SurveyTable) Row(i int) SurveyRow { return t.rows[i] }

// DisplayRows returns the formatted records in station order.
func (t *SurveyTable) DisplayRows() []DisplayRow {
	if t == nil {
		return []DisplayRow{}
	}
	out := make([]DisplayRow, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Display
	}
	return out
}

// MarshalJSON renders the table as its display records.
func (t *SurveyTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source   string       `json:"source"`
		Strategy string       `json:"strategy"`
		Rows     []DisplayRow `json:"rows"`
	}{t.source, t.strategy, t.DisplayRows()})
}
