package comparison

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidebyside/internal/shared/testutil"
	"sidebyside/pkg/contracts/domain"
)

func table(source string, rows ...[3]float64) *domain.SurveyTable {
	out := make([]domain.SurveyRow, len(rows))
	for i, r := range rows {
		out[i] = domain.NewSurveyRow(r[0], r[1], r[2])
	}
	return domain.NewSurveyTable(source, "keyword", out)
}

func TestCompare_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		primary      *domain.SurveyTable
		secondary    *domain.SurveyTable
		wantRows     int
		wantMismatch int
		wantFields   map[domain.Field]int
		wantAccuracy float64
	}{
		{
			name:         "md differs",
			primary:      table("MWD", [3]float64{100, 1, 10}),
			secondary:    table("DD", [3]float64{100.01, 1, 10}),
			wantRows:     1,
			wantMismatch: 1,
			wantFields:   map[domain.Field]int{domain.FieldMD: 1, domain.FieldINC: 0, domain.FieldAZ: 0},
			wantAccuracy: 0,
		},
		{
			name:         "identical",
			primary:      table("MWD", [3]float64{100, 1, 10}),
			secondary:    table("DD", [3]float64{100, 1, 10}),
			wantRows:     1,
			wantFields:   map[domain.Field]int{domain.FieldMD: 0, domain.FieldINC: 0, domain.FieldAZ: 0},
			wantAccuracy: 100,
		},
		{
			name:         "both empty",
			primary:      table("MWD"),
			secondary:    table("DD"),
			wantFields:   map[domain.Field]int{domain.FieldMD: 0, domain.FieldINC: 0, domain.FieldAZ: 0},
			wantAccuracy: 0,
		},
		{
			name:         "below display precision",
			primary:      table("MWD", [3]float64{100.001, 1, 10}),
			secondary:    table("DD", [3]float64{100.004, 1, 10}),
			wantRows:     1,
			wantFields:   map[domain.Field]int{domain.FieldMD: 0, domain.FieldINC: 0, domain.FieldAZ: 0},
			wantAccuracy: 100,
		},
		{
			name: "one of four rows",
			primary: table("MWD",
				[3]float64{100, 1, 10}, [3]float64{200, 2, 20},
				[3]float64{300, 3, 30}, [3]float64{400, 4, 40}),
			secondary: table("DD",
				[3]float64{100, 1, 10}, [3]float64{200, 2.5, 21},
				[3]float64{300, 3, 30}, [3]float64{400, 4, 40}),
			wantRows:     4,
			wantMismatch: 1,
			wantFields:   map[domain.Field]int{domain.FieldMD: 0, domain.FieldINC: 1, domain.FieldAZ: 1},
			wantAccuracy: 75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compare(tt.primary, tt.secondary)

			assert.Equal(t, tt.wantRows, res.Summary.RowsCompared)
			assert.Equal(t, tt.wantMismatch, res.Summary.RowMismatches)
			assert.Equal(t, tt.wantFields, res.Summary.FieldMismatch)
			assert.InDelta(t, tt.wantAccuracy, res.Summary.AccuracyPct, 1e-9)
			assert.Len(t, res.Mismatches, tt.wantMismatch)
			assert.NotNil(t, res.Mismatches)
		})
	}
}

func TestCompare_MismatchRecordCarriesAllValues(t *testing.T) {
	res := Compare(
		table("MWD", [3]float64{100, 1, 10}, [3]float64{200, 2, 20}),
		table("DD", [3]float64{100, 1, 10}, [3]float64{200, 2, 20.5}),
	)

	require.Len(t, res.Mismatches, 1)
	m := res.Mismatches[0]
	assert.Equal(t, 2, m.Index)
	assert.Equal(t, []domain.Field{domain.FieldAZ}, m.Fields)
	assert.True(t, m.Has(domain.FieldAZ))
	assert.False(t, m.Has(domain.FieldMD))
	assert.Equal(t, domain.DisplayRow{MD: "200.00", INC: "2.00", AZ: "20.00"}, m.Primary)
	assert.Equal(t, domain.DisplayRow{MD: "200.00", INC: "2.00", AZ: "20.50"}, m.Secondary)
	assert.Equal(t, []domain.CellRef{{Row: 1, Field: domain.FieldAZ}}, res.Cells)
}

func TestCompare_Truncation(t *testing.T) {
	long := make([][3]float64, 10)
	for i := range long {
		long[i] = [3]float64{float64(i * 100), 1, 1}
	}
	short := make([][3]float64, 7)
	copy(short, long)
	short[6][1] = 9

	res := Compare(table("MWD", long...), table("DD", short...))

	assert.Equal(t, 7, res.Summary.RowsCompared)
	assert.Equal(t, 10, res.Summary.PrimaryRows)
	assert.Equal(t, 7, res.Summary.SecondaryRows)
	assert.Equal(t, 1, res.Summary.RowMismatches)
	assert.InDelta(t, 100*(1-1.0/7), res.Summary.AccuracyPct, 1e-9)
}

func TestCompare_Symmetry(t *testing.T) {
	a := table("MWD", [3]float64{100, 1, 10}, [3]float64{200, 2, 20}, [3]float64{300, 3, 30})
	b := table("DD", [3]float64{100.5, 1, 10}, [3]float64{200, 2, 20}, [3]float64{300, 3.2, 31})

	ab := Compare(a, b)
	ba := Compare(b, a)

	assert.Equal(t, ab.Summary.RowMismatches, ba.Summary.RowMismatches)
	assert.Equal(t, ab.Summary.FieldMismatch, ba.Summary.FieldMismatch)
	assert.Equal(t, ab.Summary.AccuracyPct, ba.Summary.AccuracyPct)
	require.Len(t, ba.Mismatches, len(ab.Mismatches))
	for i := range ab.Mismatches {
		assert.Equal(t, ab.Mismatches[i].Index, ba.Mismatches[i].Index)
		assert.Equal(t, ab.Mismatches[i].Primary, ba.Mismatches[i].Secondary)
		assert.Equal(t, ab.Mismatches[i].Secondary, ba.Mismatches[i].Primary)
	}
	assert.Equal(t, "MWD", ab.Summary.PrimarySource)
	assert.Equal(t, "DD", ba.Summary.PrimarySource)
}

func TestCompare_NilTables(t *testing.T) {
	res := Compare(nil, nil)
	assert.Equal(t, 0, res.Summary.RowsCompared)
	assert.Equal(t, float64(0), res.Summary.AccuracyPct)
	assert.Empty(t, res.Mismatches)
}

func TestCompare_Deltas(t *testing.T) {
	res := Compare(
		table("MWD", [3]float64{100, 1, 10}, [3]float64{200, 2, 20}, [3]float64{300, 3, 30}),
		table("DD", [3]float64{101, 1, 10}, [3]float64{200, 2, 20}, [3]float64{303, 3, 30}),
	)

	md := res.Deltas[domain.FieldMD]
	assert.Equal(t, 3, md.Samples)
	assert.InDelta(t, 4.0/3, md.MeanAbs, 1e-9)
	assert.InDelta(t, 3.0, md.MaxAbs, 1e-9)
	assert.InDelta(t, 1.0, md.Median, 1e-9)

	inc := res.Deltas[domain.FieldINC]
	assert.Equal(t, 3, inc.Samples)
	assert.Zero(t, inc.MaxAbs)

	empty := Compare(table("MWD"), table("DD"))
	assert.Equal(t, domain.DeltaStats{}, empty.Deltas[domain.FieldAZ])
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, float64(0), Accuracy(0, 0))
	assert.Equal(t, float64(100), Accuracy(0, 5))
	assert.Equal(t, float64(0), Accuracy(5, 5))
	assert.InDelta(t, 50.0, Accuracy(1, 2), 1e-9)
}

func TestEngine_LogsLengthDifference(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	engine := NewEngine(logger)

	res := engine.Compare(context.Background(),
		table("MWD", [3]float64{1, 1, 1}, [3]float64{2, 2, 2}),
		table("DD", [3]float64{1, 1, 1}))

	assert.Equal(t, 1, res.Summary.RowsCompared)
	assert.True(t, handler.ContainsMessage("surveys compared"))
	assert.True(t, handler.ContainsMessage("survey lengths differ, trailing stations ignored"))
}
