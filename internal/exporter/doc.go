// Package exporter turns comparison results into the outputs a reader sees.
//
// This package contains three main components:
//
// ReportBuilder: Assembles a domain.ComparisonReport from two parsed tables
// and a comparison result: the fixed-format summary, cell highlights for both
// source tables and the mismatch table, and the per-source export blocks.
//
// CSVWriter: Writes export blocks and the mismatch table to disk with an
// optional UTF-8 BOM for Excel.
//
// Markdown: Renders a report as Markdown, and as HTML through gomarkdown.
//
// Example usage:
//
//	builder := exporter.NewReportBuilder(logger)
//	report := builder.Build(ctx, mwd, dd, engine.Compare(ctx, mwd, dd))
//
//	writer := exporter.NewCSVWriter("out", true)
//	paths, err := writer.WriteReport(report)
package exporter
