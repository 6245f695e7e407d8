package domain

import "time"

// HistoryEntry is the persisted outcome of one comparison run.
type HistoryEntry struct {
	ID              string    `json:"id" db:"id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	PrimarySource   string    `json:"primary_source" db:"primary_source"`
	SecondarySource string    `json:"secondary_source" db:"secondary_source"`
	PrimaryFile     string    `json:"primary_file" db:"primary_file"`
	SecondaryFile   string    `json:"secondary_file" db:"secondary_file"`
	RowsCompared    int       `json:"rows_compared" db:"rows_compared"`
	RowMismatches   int       `json:"row_mismatches" db:"row_mismatches"`
	MDMismatches    int       `json:"md_mismatches" db:"md_mismatches"`
	INCMismatches   int       `json:"inc_mismatches" db:"inc_mismatches"`
	AZMismatches    int       `json:"az_mismatches" db:"az_mismatches"`
	AccuracyPct     float64   `json:"accuracy_percent" db:"accuracy"`
	Error           string    `json:"error,omitempty" db:"error"`
}

// NewHistoryEntry flattens a report into a history row.
func NewHistoryEntry(r *ComparisonReport) HistoryEntry {
	e := HistoryEntry{
		ID:              r.ID,
		CreatedAt:       r.CreatedAt,
		PrimarySource:   r.PrimarySource,
		SecondarySource: r.SecondarySource,
		PrimaryFile:     r.PrimaryFile,
		SecondaryFile:   r.SecondaryFile,
		Error:           r.Error,
	}
	if r.Stats != nil {
		e.RowsCompared = r.Stats.RowsCompared
		e.RowMismatches = r.Stats.RowMismatches
		e.MDMismatches = r.Stats.FieldMismatch[FieldMD]
		e.INCMismatches = r.Stats.FieldMismatch[FieldINC]
		e.AZMismatches = r.Stats.FieldMismatch[FieldAZ]
		e.AccuracyPct = r.Stats.AccuracyPct
	}
	return e
}
