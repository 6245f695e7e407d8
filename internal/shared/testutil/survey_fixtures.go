package testutil

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Station is one MD/INC/AZ triple as cell text.
type Station [3]string

// KeywordSurveyCSV renders a small export whose header row is found by the
// keyword scan: two title rows, then MD/INC/AZ with a units row beneath.
func KeywordSurveyCSV(t *testing.T, stations ...Station) []byte {
	t.Helper()

	rows := [][]string{
		{"Survey Report"},
		{"Well", "Test-1"},
		{"MD", "INC", "AZ"},
		{"ft", "deg", "deg"},
	}
	for _, s := range stations {
		rows = append(rows, s[:])
	}
	return CSV(t, rows)
}

// CSV renders rows as CSV text.
func CSV(t *testing.T, rows [][]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("failed to write csv fixture: %v", err)
	}
	return buf.Bytes()
}

// TemplateSurveyWorkbook builds an .xlsx export in the fixed MWD layout:
// header on sheet row 17 in columns B..D and stations from row 19.
func TemplateSurveyWorkbook(t *testing.T, stations ...Station) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	set := func(cell string, v any) {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("failed to set %s: %v", cell, err)
		}
	}
	for r := 1; r <= 16; r++ {
		cell, _ := excelize.CoordinatesToCellName(1, r)
		set(cell, "Job info")
	}
	set("B17", "MD")
	set("C17", "Inc")
	set("D17", "Azi")
	set("B18", "ft")
	set("C18", "deg")
	set("D18", "deg")
	for i, s := range stations {
		row := 19 + i
		for c, v := range s {
			cell, _ := excelize.CoordinatesToCellName(2+c, row)
			set(cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to write workbook fixture: %v", err)
	}
	return buf.Bytes()
}
