package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Grid is an untyped sheet: rows of cell text, no header assumed.
// Rows may have different lengths; missing cells read as blank.
type Grid [][]string

// Cell returns the text at (row, col), or "" outside the grid.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// Width returns the widest row's length.
func (g Grid) Width() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// WithoutBlankRows returns a grid without rows whose every cell is blank.
func (g Grid) WithoutBlankRows() Grid {
	out := make(Grid, 0, len(g))
	for _, r := range g {
		if !blankRow(r) {
			out = append(out, r)
		}
	}
	return out
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// FileKind is the container format selected from an upload's extension.
type FileKind string

const (
	KindCSV  FileKind = "csv"
	KindXLSX FileKind = "xlsx"
	KindXLS  FileKind = "xls"
)

// DetectKind maps a filename to its container format.
func DetectKind(filename string) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return KindCSV, nil
	case ".xlsx", ".xlsm":
		return KindXLSX, nil
	case ".xls":
		return KindXLS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, filename)
}

// Decode turns raw upload bytes into a Grid. CSV text is read as-is; for
// workbooks only the first sheet is read.
func Decode(filename string, data []byte) (Grid, error) {
	kind, err := DetectKind(filename)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindCSV:
		return decodeCSV(data)
	case KindXLS:
		return decodeXLS(data)
	default:
		return decodeXLSX(data)
	}
}

func decodeCSV(data []byte) (Grid, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		// Survey exports from Windows tools are usually cp1252 (degree signs).
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return Grid(records), nil
}

func decodeXLSX(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return Grid(rows), nil
}

func decodeXLS(data []byte) (grid Grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, fmt.Errorf("failed to read legacy workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	grid = make(Grid, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}
