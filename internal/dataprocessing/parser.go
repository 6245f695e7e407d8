package dataprocessing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sidebyside/pkg/contracts/domain"
)

// ParseObserver receives the outcome of every strategy attempt.
type ParseObserver interface {
	ObserveParse(ctx context.Context, strategy, outcome string)
}

// Parser turns a decoded sheet into a survey table by trying each layout
// strategy in turn. It holds no per-parse state and is safe for concurrent use.
type Parser struct {
	aliases  *AliasTable
	layout   LayoutConfig
	logger   *slog.Logger
	observer ParseObserver
}

// Option configures a Parser.
type Option func(*Parser)

// WithLayout overrides the fixed template positions.
func WithLayout(cfg LayoutConfig) Option {
	return func(p *Parser) { p.layout = cfg }
}

// WithLogger sets the parser logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver reports strategy outcomes, typically to metrics.
func WithObserver(o ParseObserver) Option {
	return func(p *Parser) { p.observer = o }
}

// NewParser creates a parser. A nil alias table means DefaultAliases.
func NewParser(aliases *AliasTable, opts ...Option) *Parser {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	p := &Parser{
		aliases: aliases,
		layout:  DefaultLayoutConfig(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile decodes an uploaded file and parses it.
func (p *Parser) ParseFile(ctx context.Context, filename string, data []byte, source string) (*domain.SurveyTable, error) {
	grid, err := Decode(filename, data)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, grid, source)
}

// Parse runs the layout cascade over grid. The first strategy that locates a
// canonical MD/INC/AZ header wins. When all of them reject the sheet the
// result is an *ExhaustedError carrying each rejection.
func (p *Parser) Parse(ctx context.Context, grid Grid, source string) (*domain.SurveyTable, error) {
	ctx, span := otel.Tracer("sidebyside/dataprocessing").Start(ctx, "survey.parse")
	defer span.End()
	span.SetAttributes(attribute.String("survey.source", source))

	grid = grid.WithoutBlankRows()
	exhausted := &ExhaustedError{Source: source}

	for _, s := range p.strategies() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reg, lerr := s.locate(grid, source)
		if lerr != nil {
			p.logger.DebugContext(ctx, "layout strategy rejected sheet",
				slog.String("source", source),
				slog.String("strategy", s.name),
				slog.String("reason", lerr.Reason))
			p.observe(ctx, s.name, "rejected")
			exhausted.Rejections = append(exhausted.Rejections, lerr)
			continue
		}

		rows := extract(grid, reg)
		p.logger.InfoContext(ctx, "survey parsed",
			slog.String("source", source),
			slog.String("strategy", s.name),
			slog.Int("data_row", reg.startRow),
			slog.Int("rows", len(rows)))
		p.observe(ctx, s.name, "accepted")
		span.SetAttributes(
			attribute.String("survey.strategy", s.name),
			attribute.Int("survey.rows", len(rows)))
		return domain.NewSurveyTable(source, s.name, rows), nil
	}

	p.logger.WarnContext(ctx, "no layout strategy matched",
		slog.String("source", source),
		slog.String("error", exhausted.Error()))
	span.SetStatus(codes.Error, exhausted.Error())
	return nil, exhausted
}

func (p *Parser) observe(ctx context.Context, strategy, outcome string) {
	if p.observer != nil {
		p.observer.ObserveParse(ctx, strategy, outcome)
	}
}
