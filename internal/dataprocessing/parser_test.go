package dataprocessing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sidebyside/pkg/contracts/domain"
)

// filler returns n non-blank rows that match no header alias.
func filler(n int) Grid {
	g := make(Grid, n)
	for i := range g {
		g[i] = []string{"note"}
	}
	return g
}

func displays(t *testing.T, table *domain.SurveyTable) []domain.DisplayRow {
	t.Helper()
	require.NotNil(t, table)
	return table.DisplayRows()
}

func TestParse_TemplatePrimary(t *testing.T) {
	g := filler(16)
	g = append(g,
		[]string{"", "MD", "Inc", "Azimuth"},
		[]string{"", "ft", "deg", "deg"},
		[]string{"", "100", "1.5", "200"},
		[]string{"", "200.457", "2", "210.1"},
	)

	table, err := NewParser(nil).Parse(context.Background(), g, "MWD")
	require.NoError(t, err)

	assert.Equal(t, StrategyTemplate, table.Strategy())
	assert.Equal(t, "MWD", table.Source())
	assert.Equal(t, []domain.DisplayRow{
		{MD: "100.00", INC: "1.50", AZ: "200.00"},
		{MD: "200.46", INC: "2.00", AZ: "210.10"},
	}, displays(t, table))
}

func TestParse_TemplateCountsRowsAfterBlankRemoval(t *testing.T) {
	g := Grid{{""}, {"  ", ""}, {}}
	g = append(g, filler(16)...)
	g = append(g,
		[]string{"", "Measured Depth", "INC", "AZI"},
		[]string{"", "", "", ""},
		[]string{"", "ft", "deg", "deg"},
		[]string{"", "50", "0.5", "90"},
	)

	table, err := NewParser(nil).Parse(context.Background(), g, "MWD")
	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, table.Strategy())
	assert.Equal(t, []domain.DisplayRow{{MD: "50.00", INC: "0.50", AZ: "90.00"}}, displays(t, table))
}

func TestParse_TemplateSecondary(t *testing.T) {
	g := filler(54)
	g = append(g,
		[]string{"Survey Depth", "Inclination", "AZM"},
		[]string{"m", "deg", "deg"},
		[]string{"10", "0.1", "5"},
		[]string{"20", "0.2", ""},
		[]string{"30", "0.3", "15"},
	)

	table, err := NewParser(nil).Parse(context.Background(), g, "DD")
	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, table.Strategy())
	assert.Equal(t, []domain.DisplayRow{
		{MD: "10.00", INC: "0.10", AZ: "5.00"},
		{MD: "30.00", INC: "0.30", AZ: "15.00"},
	}, displays(t, table))
}

func TestParse_TemplatePreferredOverKeyword(t *testing.T) {
	// Row 2 qualifies for the keyword scan but the template must win.
	g := Grid{
		{"note"},
		{"note"},
		{"MD", "INC", "AZ"},
		{"1", "1", "1"},
	}
	g = append(g, filler(12)...)
	g = append(g,
		[]string{"", "MD", "INC", "AZ"},
		[]string{"", "units", "", ""},
		[]string{"", "900", "9", "99"},
	)

	table, err := NewParser(nil).Parse(context.Background(), g, "MWD")
	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, table.Strategy())
	assert.Equal(t, []domain.DisplayRow{{MD: "900.00", INC: "9.00", AZ: "99.00"}}, displays(t, table))
}

func TestParse_KeywordLayout(t *testing.T) {
	g := Grid{
		{"Survey Report"},
		{"Company", "Acme"},
		{"Azimuth", "Comment", "MD", "Inc"},
		{"10", "tie-in", "100", "1"},
		{"", "", "", ""},
		{"12.5", "", "150", "1.25"},
		{"bad", "", "200", "2"},
	}

	table, err := NewParser(nil).Parse(context.Background(), g, "DD")
	require.NoError(t, err)
	assert.Equal(t, StrategyKeyword, table.Strategy())
	assert.Equal(t, []domain.DisplayRow{
		{MD: "100.00", INC: "1.00", AZ: "10.00"},
		{MD: "150.00", INC: "1.25", AZ: "12.50"},
	}, displays(t, table))

	row := table.Row(1)
	assert.InDelta(t, 150.0, row.MD, 1e-9)
	assert.InDelta(t, 12.5, row.AZ, 1e-9)
}

func TestParse_DropsRowsWithGoLiteralNumbers(t *testing.T) {
	g := Grid{
		{"MD", "INC", "AZ"},
		{"0x1p10", "1", "2"},
		{"1_000", "1", "2"},
		{"100", "1", "2"},
	}

	table, err := NewParser(nil).Parse(context.Background(), g, "DD")
	require.NoError(t, err)
	assert.Equal(t, StrategyKeyword, table.Strategy())
	assert.Equal(t, []domain.DisplayRow{{MD: "100.00", INC: "1.00", AZ: "2.00"}}, displays(t, table))
}

func TestParse_KeywordHeaderIsCaseAndSpaceInsensitive(t *testing.T) {
	g := Grid{
		{"  md ", "INCLINATION", " Azi"},
		{"1", "2", "3"},
	}

	table, err := NewParser(nil).Parse(context.Background(), g, "MWD")
	require.NoError(t, err)
	assert.Equal(t, StrategyKeyword, table.Strategy())
	assert.Equal(t, []domain.DisplayRow{{MD: "1.00", INC: "2.00", AZ: "3.00"}}, displays(t, table))
}

func TestParse_FallbackLayout(t *testing.T) {
	g := filler(69)
	// The extra "Survey" cell makes the keyword header ambiguous.
	g = append(g,
		[]string{"MD", "Inc", "Azi", "Survey"},
		[]string{"Depth", "Angle", "Direction"},
		[]string{"(ft)", "(deg)", "(deg)"},
		[]string{"1000", "45", "180"},
		[]string{"1100", "46.5", "181"},
	)

	table, err := NewParser(nil).Parse(context.Background(), g, "DD")
	require.NoError(t, err)
	assert.Equal(t, StrategyFallback, table.Strategy())
	assert.Equal(t, []domain.DisplayRow{
		{MD: "1000.00", INC: "45.00", AZ: "180.00"},
		{MD: "1100.00", INC: "46.50", AZ: "181.00"},
	}, displays(t, table))
}

func TestParse_FallbackNumericFirstRow(t *testing.T) {
	g := filler(69)
	g = append(g,
		[]string{"MD", "Inc", "Azi", "Survey"},
		[]string{"(ft)", "(deg)", "(deg)"},
		[]string{"1000", "45", "180"},
	)

	table, err := NewParser(nil).Parse(context.Background(), g, "DD")
	require.NoError(t, err)
	assert.Equal(t, StrategyFallback, table.Strategy())
	assert.Equal(t, []domain.DisplayRow{{MD: "1000.00", INC: "45.00", AZ: "180.00"}}, displays(t, table))
}

func TestParse_Exhausted(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
	}{
		{name: "empty sheet", grid: Grid{}},
		{name: "no headers", grid: Grid{{"Depth", "Angle", "Direction"}, {"1", "2", "3"}}},
		{name: "ambiguous keyword header", grid: Grid{{"MD", "SD", "INC", "AZ"}, {"1", "2", "3", "4"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewParser(nil).Parse(context.Background(), tt.grid, "MWD")
			require.Error(t, err)
			assert.Nil(t, table)

			var exhausted *ExhaustedError
			require.ErrorAs(t, err, &exhausted)
			assert.Len(t, exhausted.Rejections, 3)
			assert.Equal(t, StrategyFallback, exhausted.Last().Strategy)
			assert.True(t, strings.HasPrefix(err.Error(), "failed all parsing methods: "))
			assert.Equal(t, "failed all parsing methods: "+exhausted.Last().Error(), err.Error())
		})
	}
}

func TestParse_KeywordRejectionKind(t *testing.T) {
	g := Grid{{"MD", "SD", "INC", "AZ"}, {"1", "2", "3", "4"}}

	_, err := NewParser(nil).Parse(context.Background(), g, "MWD")

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, StrategyKeyword, exhausted.Rejections[1].Strategy)
	assert.ErrorIs(t, exhausted.Rejections[1], ErrHeaderResolution)
	assert.ErrorIs(t, exhausted.Rejections[0], ErrRegionOutOfRange)
	assert.ErrorIs(t, err, ErrHeaderResolution)
}

func TestParse_HeaderOnlyYieldsEmptyTable(t *testing.T) {
	table, err := NewParser(nil).Parse(context.Background(), Grid{{"MD", "INC", "AZ"}}, "DD")
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.DisplayRows())
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).Parse(ctx, Grid{{"MD", "INC", "AZ"}}, "DD")
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingObserver struct {
	calls []string
}

func (r *recordingObserver) ObserveParse(_ context.Context, strategy, outcome string) {
	r.calls = append(r.calls, strategy+":"+outcome)
}

func TestParse_ReportsStrategyOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	p := NewParser(nil, WithObserver(obs))

	_, err := p.Parse(context.Background(), Grid{{"MD", "INC", "AZ"}, {"1", "2", "3"}}, "DD")
	require.NoError(t, err)
	assert.Equal(t, []string{"template:rejected", "keyword:accepted"}, obs.calls)
}

func TestParse_CustomLayout(t *testing.T) {
	cfg := DefaultLayoutConfig()
	cfg.OtherTemplate = Template{HeaderRow: 1, HeaderCols: []int{0, 1, 2}, DataRow: 2, DataCols: []int{0, 1, 2}}

	g := Grid{
		{"title"},
		{"MD", "INC", "AZ"},
		{"5", "6", "7"},
	}
	table, err := NewParser(nil, WithLayout(cfg)).Parse(context.Background(), g, "DD")
	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, table.Strategy())
	assert.Equal(t, 1, table.Len())
}

func TestParseFile_Workbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Well", "Alpha-1"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"MD", "INC", "AZ"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{1500.25, 12.5, 270}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{1600, 13, 271.75}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := NewParser(nil).ParseFile(context.Background(), "alpha.xlsx", buf.Bytes(), "DD")
	require.NoError(t, err)
	assert.Equal(t, StrategyKeyword, table.Strategy())
	assert.Equal(t, []domain.DisplayRow{
		{MD: "1500.25", INC: "12.50", AZ: "270.00"},
		{MD: "1600.00", INC: "13.00", AZ: "271.75"},
	}, displays(t, table))
}

func TestParseFile_UnsupportedType(t *testing.T) {
	_, err := NewParser(nil).ParseFile(context.Background(), "survey.pdf", []byte("%PDF"), "MWD")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	var exhausted *ExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}
