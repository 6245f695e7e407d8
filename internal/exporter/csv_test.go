package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		wantBOM bool
	}{
		{
			name:    "headers and records",
			options: WriteOptions{Headers: []string{"MD", "INC", "AZ"}, Records: [][]string{{"1.00", "2.00", "3.00"}}},
		},
		{
			name:    "with BOM",
			options: WriteOptions{Headers: []string{"MD"}, Records: [][]string{{"1.00"}}, BOMPrefix: true},
			wantBOM: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			w := NewCSVWriter(dir, false)

			require.NoError(t, w.WriteCSV("nested/out.csv", tt.options))

			path := filepath.Join(dir, "nested", "out.csv")
			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))

			records := readCSV(t, path)
			assert.Equal(t, tt.options.Headers, records[0])
			assert.Equal(t, tt.options.Records, records[1:])
		})
	}
}

func TestCSVWriter_WriteReport(t *testing.T) {
	report := build(t,
		table("MWD", [3]float64{100, 1, 10}, [3]float64{200, 2, 20}),
		table("DD", [3]float64{100, 1, 10}, [3]float64{200.25, 2, 20}),
	)
	report.ID = "run1"

	dir := t.TempDir()
	paths, err := NewCSVWriter(dir, true).WriteReport(report)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	assert.Equal(t, [][]string{{"MD", "INC", "AZ"}, {"200.00", "2.00", "20.00"}},
		readCSV(t, filepath.Join(dir, "run1_mwd_mismatches.csv")))
	assert.Equal(t, [][]string{{"MD", "INC", "AZ"}, {"200.25", "2.00", "20.00"}},
		readCSV(t, filepath.Join(dir, "run1_dd_mismatches.csv")))
	assert.Equal(t, [][]string{
		{"Index", "MWD_MD", "MWD_INC", "MWD_AZ", "DD_MD", "DD_INC", "DD_AZ"},
		{"2", "200.00", "2.00", "20.00", "200.25", "2.00", "20.00"},
	}, readCSV(t, filepath.Join(dir, "run1_mismatches.csv")))
}

func TestCSVWriter_WriteReportWithoutMismatches(t *testing.T) {
	report := build(t, table("MWD", [3]float64{1, 1, 1}), table("DD", [3]float64{1, 1, 1}))

	dir := t.TempDir()
	paths, err := NewCSVWriter(dir, true).WriteReport(report)
	require.NoError(t, err)
	assert.Empty(t, paths)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
