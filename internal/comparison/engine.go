// Package comparison pairs two survey tables station by station and counts
// the fields that disagree at two-decimal precision.
package comparison

import (
	"context"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"sidebyside/internal/dataprocessing"
	"sidebyside/pkg/contracts/domain"
)

// Result is the outcome of comparing two tables.
type Result struct {
	Summary    domain.ComparisonSummary
	Mismatches []domain.MismatchRecord
	// Cells lists every mismatched cell, zero-based, in row then field order.
	// The same references apply to both source tables.
	Cells  []domain.CellRef
	Deltas map[domain.Field]domain.DeltaStats
}

// Engine compares survey tables. It keeps no state between calls.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger means slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "comparison"))}
}

// Compare pairs rows by position. Only the first min(len(primary), len(secondary))
// rows are compared; the longer table's trailing rows are ignored.
func (e *Engine) Compare(ctx context.Context, primary, secondary *domain.SurveyTable) *Result {
	_, span := otel.Tracer("sidebyside/comparison").Start(ctx, "survey.compare")
	defer span.End()

	res := Compare(primary, secondary)

	span.SetAttributes(
		attribute.Int("survey.rows_compared", res.Summary.RowsCompared),
		attribute.Int("survey.row_mismatches", res.Summary.RowMismatches))
	e.logger.InfoContext(ctx, "surveys compared",
		slog.Int("rows_compared", res.Summary.RowsCompared),
		slog.Int("row_mismatches", res.Summary.RowMismatches),
		slog.Float64("accuracy", res.Summary.AccuracyPct))
	if primary.Len() != secondary.Len() {
		e.logger.WarnContext(ctx, "survey lengths differ, trailing stations ignored",
			slog.Int("primary_rows", primary.Len()),
			slog.Int("secondary_rows", secondary.Len()))
	}
	return res
}

// Compare is the pure comparison used by Engine.
func Compare(primary, secondary *domain.SurveyTable) *Result {
	n := min(primary.Len(), secondary.Len())

	sum := domain.ComparisonSummary{
		RowsCompared:  n,
		FieldMismatch: make(map[domain.Field]int, len(domain.Fields)),
		PrimaryRows:   primary.Len(),
		SecondaryRows: secondary.Len(),
	}
	if primary != nil {
		sum.PrimarySource = primary.Source()
	}
	if secondary != nil {
		sum.SecondarySource = secondary.Source()
	}
	for _, f := range domain.Fields {
		sum.FieldMismatch[f] = 0
	}

	res := &Result{Mismatches: []domain.MismatchRecord{}, Cells: []domain.CellRef{}}
	deltas := make(map[domain.Field]stats.Float64Data, len(domain.Fields))

	for i := 0; i < n; i++ {
		a := primary.Row(i).Display
		b := secondary.Row(i).Display

		var fields []domain.Field
		for _, f := range domain.Fields {
			av, aok := dataprocessing.ParseNumber(a.Get(f))
			bv, bok := dataprocessing.ParseNumber(b.Get(f))
			if aok && bok {
				deltas[f] = append(deltas[f], math.Abs(av-bv))
			}
			if !aok || !bok || round2(av) != round2(bv) {
				fields = append(fields, f)
				sum.FieldMismatch[f]++
				res.Cells = append(res.Cells, domain.CellRef{Row: i, Field: f})
			}
		}
		if len(fields) == 0 {
			continue
		}
		sum.RowMismatches++
		res.Mismatches = append(res.Mismatches, domain.MismatchRecord{
			Index:     i + 1,
			Fields:    fields,
			Primary:   a,
			Secondary: b,
		})
	}

	sum.AccuracyPct = Accuracy(sum.RowMismatches, n)
	res.Summary = sum
	res.Deltas = deltaStats(deltas)
	return res
}

// Accuracy is the share of compared rows without a mismatch, in percent.
// Zero compared rows yield 0.
func Accuracy(rowMismatches, compared int) float64 {
	if compared <= 0 {
		return 0
	}
	return 100 * (1 - float64(rowMismatches)/float64(compared))
}

// round2 returns v in hundredths, rounded half away from zero.
func round2(v float64) int64 {
	return int64(math.Round(v * 100))
}

func deltaStats(samples map[domain.Field]stats.Float64Data) map[domain.Field]domain.DeltaStats {
	out := make(map[domain.Field]domain.DeltaStats, len(domain.Fields))
	for _, f := range domain.Fields {
		data := samples[f]
		ds := domain.DeltaStats{Samples: data.Len()}
		if ds.Samples > 0 {
			// errors only occur on empty input
			ds.MeanAbs, _ = stats.Mean(data)
			ds.MaxAbs, _ = stats.Max(data)
			ds.Median, _ = stats.Median(data)
		}
		out[f] = ds
	}
	return out
}
