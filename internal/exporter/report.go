package exporter

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"sidebyside/internal/comparison"
	"sidebyside/pkg/contracts/domain"
)

// ReportBuilder assembles presentation outputs. It keeps no state between calls.
type ReportBuilder struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewReportBuilder creates a builder. A nil logger means slog.Default().
func NewReportBuilder(logger *slog.Logger) *ReportBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportBuilder{
		logger: logger.With(slog.String("component", "report")),
		now:    time.Now,
	}
}

// Build produces the full report for two parsed tables and their comparison.
func (b *ReportBuilder) Build(ctx context.Context, primary, secondary *domain.SurveyTable, res *comparison.Result) *domain.ComparisonReport {
	_, span := otel.Tracer("sidebyside/exporter").Start(ctx, "survey.report")
	defer span.End()

	cellHighlights := SourceHighlights(res.Cells)
	table, tableHighlights := MismatchTable(res)

	primaryMismatches := make([]domain.DisplayRow, len(res.Mismatches))
	secondaryMismatches := make([]domain.DisplayRow, len(res.Mismatches))
	for i, m := range res.Mismatches {
		primaryMismatches[i] = m.Primary
		secondaryMismatches[i] = m.Secondary
	}

	summary := res.Summary
	report := &domain.ComparisonReport{
		ID:                  uuid.NewString(),
		CreatedAt:           b.now().UTC(),
		PrimarySource:       summary.PrimarySource,
		SecondarySource:     summary.SecondarySource,
		PrimaryRows:         primary.DisplayRows(),
		SecondaryRows:       secondary.DisplayRows(),
		PrimaryHighlights:   cellHighlights,
		SecondaryHighlights: append([]domain.Highlight(nil), cellHighlights...),
		Summary:             SummaryText(summary),
		Stats:               &summary,
		Deltas:              res.Deltas,
		Mismatches:          res.Mismatches,
		MismatchTable:       table,
		MismatchHighlights:  tableHighlights,
		PrimaryExport:       exportBlock(primaryMismatches),
		SecondaryExport:     exportBlock(secondaryMismatches),
	}
	if report.SecondaryHighlights == nil {
		report.SecondaryHighlights = []domain.Highlight{}
	}

	span.SetAttributes(attribute.String("report.id", report.ID))
	b.logger.DebugContext(ctx, "report built",
		slog.String("report_id", report.ID),
		slog.Int("highlights", len(cellHighlights)),
		slog.Int("mismatches", len(res.Mismatches)))
	return report
}

// BuildError produces the report shown when either survey failed to parse:
// the summary carries the error and every table output is empty.
func (b *ReportBuilder) BuildError(ctx context.Context, primarySource, secondarySource string, err error) *domain.ComparisonReport {
	b.logger.DebugContext(ctx, "error report built", slog.String("error", err.Error()))
	return &domain.ComparisonReport{
		ID:                  uuid.NewString(),
		CreatedAt:           b.now().UTC(),
		PrimarySource:       primarySource,
		SecondarySource:     secondarySource,
		PrimaryRows:         []domain.DisplayRow{},
		SecondaryRows:       []domain.DisplayRow{},
		PrimaryHighlights:   []domain.Highlight{},
		SecondaryHighlights: []domain.Highlight{},
		Summary:             ErrorText(err),
		Mismatches:          []domain.MismatchRecord{},
		MismatchTable:       []domain.MismatchTableRow{},
		MismatchHighlights:  []domain.Highlight{},
		Error:               err.Error(),
	}
}
