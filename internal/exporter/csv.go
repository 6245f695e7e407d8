package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sidebyside/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	dir string
	bom bool
}

// NewCSVWriter creates a writer rooted at dir. With bom set, files start with
// a UTF-8 byte order mark so Excel picks the right encoding.
func NewCSVWriter(dir string, bom bool) *CSVWriter {
	return &CSVWriter{dir: dir, bom: bom}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteReport writes the two per-source mismatch exports and the combined
// mismatch table under the writer's directory, named after the report ID.
// Nothing is written for a report without mismatches.
func (w *CSVWriter) WriteReport(report *domain.ComparisonReport) ([]string, error) {
	if len(report.Mismatches) == 0 {
		return nil, nil
	}

	prefix := report.ID
	if prefix == "" {
		prefix = "comparison"
	}

	side := func(get func(domain.MismatchRecord) domain.DisplayRow) [][]string {
		out := make([][]string, len(report.Mismatches))
		for i, m := range report.Mismatches {
			out[i] = get(m).Values()
		}
		return out
	}

	files := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{
			name:    exportFileName(prefix, report.PrimarySource),
			headers: strings.Split(ExportHeader, ","),
			records: side(func(m domain.MismatchRecord) domain.DisplayRow { return m.Primary }),
		},
		{
			name:    exportFileName(prefix, report.SecondarySource),
			headers: strings.Split(ExportHeader, ","),
			records: side(func(m domain.MismatchRecord) domain.DisplayRow { return m.Secondary }),
		},
		{
			name:    prefix + "_mismatches.csv",
			headers: MismatchColumns(report.PrimarySource, report.SecondarySource),
			records: mismatchRecords(report),
		},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := w.WriteCSV(f.name, WriteOptions{Headers: f.headers, Records: f.records, BOMPrefix: w.bom}); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		paths = append(paths, w.resolvePath(f.name))
	}
	return paths, nil
}

func mismatchRecords(report *domain.ComparisonReport) [][]string {
	out := make([][]string, len(report.Mismatches))
	for i, m := range report.Mismatches {
		rec := []string{strconv.Itoa(m.Index)}
		rec = append(rec, m.Primary.Values()...)
		rec = append(rec, m.Secondary.Values()...)
		out[i] = rec
	}
	return out
}

func exportFileName(prefix, source string) string {
	return fmt.Sprintf("%s_%s_mismatches.csv", prefix, strings.ToLower(source))
}

// resolvePath places relative paths under the writer's directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.dir == "" {
		return filePath
	}
	return filepath.Join(w.dir, filePath)
}
