package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sidebyside/internal/comparison"
	"sidebyside/internal/dataprocessing"
	"sidebyside/internal/exporter"
	"sidebyside/internal/infrastructure"
	"sidebyside/internal/validation"
	ws "sidebyside/internal/websocket"
	"sidebyside/pkg/contracts/domain"
)

// Upload is one survey file as received from the browser or read from disk.
type Upload struct {
	Filename string
	Data     []byte
	// Source tags the side, e.g. "MWD". Empty means the configured default.
	Source string
}

// CompareRequest holds both sides of a comparison.
type CompareRequest struct {
	Primary   Upload
	Secondary Upload
}

// HistoryRecorder persists finished runs.
type HistoryRecorder interface {
	Save(ctx context.Context, e domain.HistoryEntry) error
}

// ComparisonService runs decode, parse, compare and report for one pair of
// surveys. It holds no per-request state and is safe for concurrent use.
type ComparisonService struct {
	parser    *dataprocessing.Parser
	engine    *comparison.Engine
	builder   *exporter.ReportBuilder
	validator *validation.FileValidator

	primarySource   string
	secondarySource string

	publisher ws.Publisher
	history   HistoryRecorder
	metrics   *infrastructure.SurveyMetrics
	logger    *slog.Logger
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*ComparisonService)

// WithPublisher pushes finished runs to websocket clients.
func WithPublisher(p ws.Publisher) ServiceOption {
	return func(s *ComparisonService) { s.publisher = p }
}

// WithHistory persists finished runs.
func WithHistory(h HistoryRecorder) ServiceOption {
	return func(s *ComparisonService) { s.history = h }
}

// WithMetrics records comparison outcomes.
func WithMetrics(m *infrastructure.SurveyMetrics) ServiceOption {
	return func(s *ComparisonService) { s.metrics = m }
}

// WithDefaultSources sets the tags used when an upload carries none.
func WithDefaultSources(primary, secondary string) ServiceOption {
	return func(s *ComparisonService) {
		s.primarySource = primary
		s.secondarySource = secondary
	}
}

// WithValidator replaces the default upload validator.
func WithValidator(v *validation.FileValidator) ServiceOption {
	return func(s *ComparisonService) { s.validator = v }
}

// NewComparisonService creates a new comparison service
func NewComparisonService(parser *dataprocessing.Parser, logger *slog.Logger, opts ...ServiceOption) *ComparisonService {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = dataprocessing.NewParser(nil, dataprocessing.WithLogger(logger))
	}

	s := &ComparisonService{
		parser:          parser,
		engine:          comparison.NewEngine(logger),
		builder:         exporter.NewReportBuilder(logger),
		primarySource:   "MWD",
		secondarySource: "DD",
		logger:          logger.With(slog.String("component", "comparison_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = validation.NewFileValidator(logger, 0)
	}
	return s
}

// Compare runs the whole pipeline. When either survey cannot be read the
// returned report is the error report and the error is a *SurveyError;
// callers render the report either way.
func (s *ComparisonService) Compare(ctx context.Context, req CompareRequest) (*domain.ComparisonReport, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := otel.Tracer("sidebyside/services").Start(ctx, "survey.comparison")
	defer span.End()

	primarySource := firstNonEmpty(req.Primary.Source, s.primarySource)
	secondarySource := firstNonEmpty(req.Secondary.Source, s.secondarySource)
	if primarySource == secondarySource {
		return nil, fmt.Errorf("%w: both surveys are tagged %q", ErrInvalidInput, primarySource)
	}
	span.SetAttributes(
		attribute.String("survey.primary_source", primarySource),
		attribute.String("survey.secondary_source", secondarySource),
	)

	primary, err := s.parse(ctx, "primary", primarySource, req.Primary)
	if err == nil {
		var secondary *domain.SurveyTable
		secondary, err = s.parse(ctx, "secondary", secondarySource, req.Secondary)
		if err == nil {
			return s.complete(ctx, req, primary, secondary), nil
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "survey parse failed")
	return s.fail(ctx, req, primarySource, secondarySource, err), err
}

func (s *ComparisonService) parse(ctx context.Context, side, source string, u Upload) (*domain.SurveyTable, error) {
	if err := s.validator.ValidateUpload(u.Filename, int64(len(u.Data))); err != nil {
		return nil, &SurveyError{Side: side, Source: source, Filename: u.Filename, Err: err}
	}
	table, err := s.parser.ParseFile(ctx, u.Filename, u.Data, source)
	if err != nil {
		return nil, &SurveyError{Side: side, Source: source, Filename: u.Filename, Err: err}
	}
	return table, nil
}

func (s *ComparisonService) complete(ctx context.Context, req CompareRequest, primary, secondary *domain.SurveyTable) *domain.ComparisonReport {
	res := s.engine.Compare(ctx, primary, secondary)
	report := s.builder.Build(ctx, primary, secondary, res)
	report.PrimaryFile = req.Primary.Filename
	report.SecondaryFile = req.Secondary.Filename

	s.metrics.ObserveComparison(ctx, "success", res.Summary.RowsCompared, res.Summary.AccuracyPct)
	s.logger.InfoContext(ctx, "comparison completed",
		slog.String("report_id", report.ID),
		slog.String("primary_strategy", primary.Strategy()),
		slog.String("secondary_strategy", secondary.Strategy()),
		slog.Int("rows_compared", res.Summary.RowsCompared),
		slog.Int("row_mismatches", res.Summary.RowMismatches),
		slog.Float64("accuracy", res.Summary.AccuracyPct))

	s.record(ctx, report)
	if s.publisher != nil {
		s.publisher.Publish(ctx, ws.EventComparisonComplete, map[string]interface{}{
			"id":               report.ID,
			"primary_source":   report.PrimarySource,
			"secondary_source": report.SecondarySource,
			"summary":          report.Summary,
			"stats":            report.Stats,
		})
	}
	return report
}

func (s *ComparisonService) fail(ctx context.Context, req CompareRequest, primarySource, secondarySource string, err error) *domain.ComparisonReport {
	cause := err
	var surveyErr *SurveyError
	if errors.As(err, &surveyErr) {
		cause = surveyErr.Err
	}

	report := s.builder.BuildError(ctx, primarySource, secondarySource, cause)
	report.PrimaryFile = req.Primary.Filename
	report.SecondaryFile = req.Secondary.Filename

	s.metrics.ObserveComparison(ctx, "failure", 0, 0)
	s.logger.WarnContext(ctx, "comparison failed",
		slog.String("report_id", report.ID),
		slog.String("error", err.Error()))

	s.record(ctx, report)
	if s.publisher != nil {
		s.publisher.Publish(ctx, ws.EventComparisonFailed, map[string]interface{}{
			"id":    report.ID,
			"error": report.Error,
		})
	}
	return report
}

// record saves the run; a storage failure never fails the comparison.
func (s *ComparisonService) record(ctx context.Context, report *domain.ComparisonReport) {
	if s.history == nil {
		return
	}
	if err := s.history.Save(ctx, domain.NewHistoryEntry(report)); err != nil {
		s.logger.ErrorContext(ctx, "failed to record comparison",
			slog.String("report_id", report.ID),
			slog.String("error", err.Error()))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
