package dataprocessing

import (
	"fmt"

	"sidebyside/pkg/contracts/domain"
)

// Strategy names, as reported on tables and in logs.
const (
	StrategyTemplate = "template"
	StrategyKeyword  = "keyword"
	StrategyFallback = "fallback"
)

// Template fixes where a header and its data live in a sheet. Rows and
// columns are zero-based and count rows after blank rows have been removed.
type Template struct {
	HeaderRow  int   `yaml:"header_row"`
	HeaderCols []int `yaml:"header_cols"`
	DataRow    int   `yaml:"data_row"`
	DataCols   []int `yaml:"data_cols"`
}

// LayoutConfig holds the fixed positions the cascade relies on.
type LayoutConfig struct {
	// PrimaryTag selects PrimaryTemplate; every other tag uses OtherTemplate.
	PrimaryTag      string
	PrimaryTemplate Template
	OtherTemplate   Template

	// KeywordScanRows bounds the keyword header search.
	KeywordScanRows int

	// Fallback is tried last. When its first data row is not fully numeric
	// the data start moves down one row.
	Fallback Template
}

// DefaultLayoutConfig returns the positions used by the MWD and DD exports we receive.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PrimaryTag: "MWD",
		PrimaryTemplate: Template{
			HeaderRow: 16, HeaderCols: []int{1, 2, 3},
			DataRow: 18, DataCols: []int{1, 2, 3},
		},
		OtherTemplate: Template{
			HeaderRow: 54, HeaderCols: []int{0, 1, 2},
			DataRow: 56, DataCols: []int{0, 1, 2},
		},
		KeywordScanRows: 100,
		Fallback: Template{
			HeaderRow: 69, HeaderCols: []int{0, 1, 2},
			DataRow: 71, DataCols: []int{0, 1, 2},
		},
	}
}

// region is a located header plus the data block beneath it.
type region struct {
	fields   []domain.Field
	startRow int
	cols     []int
}

// strategy locates a region under one layout assumption. It returns a
// *LayoutError when the sheet does not fit that assumption.
type strategy struct {
	name   string
	locate func(g Grid, source string) (region, *LayoutError)
}

func (p *Parser) strategies() []strategy {
	return []strategy{
		{name: StrategyTemplate, locate: p.locateTemplate},
		{name: StrategyKeyword, locate: p.locateKeyword},
		{name: StrategyFallback, locate: p.locateFallback},
	}
}

func (p *Parser) locateTemplate(g Grid, source string) (region, *LayoutError) {
	tpl := p.layout.OtherTemplate
	if source == p.layout.PrimaryTag {
		tpl = p.layout.PrimaryTemplate
	}

	headers, lerr := headerCells(StrategyTemplate, g, tpl.HeaderRow, tpl.HeaderCols)
	if lerr != nil {
		return region{}, lerr
	}
	fields := p.aliases.Standardize(headers)
	if !canonicalHeader(fields) {
		return region{}, rejectf(StrategyTemplate, ErrHeaderResolution,
			"unknown header detected in %s file: %q", source, headers)
	}
	if lerr := checkCols(StrategyTemplate, g, tpl.DataCols); lerr != nil {
		return region{}, lerr
	}
	return region{fields: fields, startRow: tpl.DataRow, cols: tpl.DataCols}, nil
}

func (p *Parser) locateKeyword(g Grid, _ string) (region, *LayoutError) {
	limit := p.layout.KeywordScanRows
	if limit > len(g) {
		limit = len(g)
	}

	width := g.Width()
	for i := 0; i < limit; i++ {
		found := make(map[domain.Field]bool, len(domain.Fields))
		var cols []int
		for j := 0; j < width; j++ {
			if f := p.aliases.Resolve(g.Cell(i, j)); f != Unresolved {
				found[f] = true
				cols = append(cols, j)
			}
		}
		if len(found) < len(domain.Fields) {
			continue
		}

		// Only the first qualifying row is considered.
		headers := make([]string, len(cols))
		for k, c := range cols {
			headers[k] = g.Cell(i, c)
		}
		fields := p.aliases.Standardize(headers)
		if !canonicalHeader(fields) {
			return region{}, rejectf(StrategyKeyword, ErrHeaderResolution,
				"keyword-based header detection failed on row %d: %q", i, headers)
		}
		return region{fields: fields, startRow: i + 1, cols: cols}, nil
	}
	return region{}, rejectf(StrategyKeyword, ErrHeaderResolution,
		"no row in the first %d contains MD, INC and AZ headers", limit)
}

func (p *Parser) locateFallback(g Grid, _ string) (region, *LayoutError) {
	tpl := p.layout.Fallback

	headers, lerr := headerCells(StrategyFallback, g, tpl.HeaderRow, tpl.HeaderCols)
	if lerr != nil {
		return region{}, lerr
	}
	fields := p.aliases.Standardize(headers)
	if !canonicalHeader(fields) {
		return region{}, rejectf(StrategyFallback, ErrHeaderResolution,
			"unknown header detected in fallback layout: %q", headers)
	}
	if lerr := checkCols(StrategyFallback, g, tpl.DataCols); lerr != nil {
		return region{}, lerr
	}

	start := tpl.DataRow
	if start >= len(g) {
		return region{}, rejectf(StrategyFallback, ErrRegionOutOfRange,
			"first data row %d out of range (sheet has %d rows)", start, len(g))
	}
	for _, c := range tpl.DataCols {
		if _, ok := parseNumber(g.Cell(start, c)); !ok {
			// units or label row under the header
			start++
			break
		}
	}
	return region{fields: fields, startRow: start, cols: tpl.DataCols}, nil
}

func headerCells(name string, g Grid, row int, cols []int) ([]string, *LayoutError) {
	if row < 0 || row >= len(g) {
		return nil, rejectf(name, ErrRegionOutOfRange,
			"header row %d out of range (sheet has %d rows)", row, len(g))
	}
	if lerr := checkCols(name, g, cols); lerr != nil {
		return nil, lerr
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = g.Cell(row, c)
	}
	return out, nil
}

func checkCols(name string, g Grid, cols []int) *LayoutError {
	width := g.Width()
	for _, c := range cols {
		if c < 0 || c >= width {
			return rejectf(name, ErrRegionOutOfRange,
				"column %d out of range (sheet has %d columns)", c, width)
		}
	}
	return nil
}

// extract applies the shared post-processing to a located region: blank rows
// are skipped, cells are coerced to numbers and any row missing a field is dropped.
func extract(g Grid, reg region) []domain.SurveyRow {
	var rows []domain.SurveyRow
	for i := reg.startRow; i < len(g); i++ {
		cells := make([]string, len(reg.cols))
		for k, c := range reg.cols {
			cells[k] = g.Cell(i, c)
		}
		if blankRow(cells) {
			continue
		}

		var vals [3]float64
		complete := true
		for k, f := range reg.fields {
			v, ok := parseNumber(cells[k])
			if !ok {
				complete = false
				break
			}
			vals[fieldIndex(f)] = v
		}
		if !complete {
			continue
		}
		rows = append(rows, domain.NewSurveyRow(vals[0], vals[1], vals[2]))
	}
	return rows
}

func fieldIndex(f domain.Field) int {
	if !f.Valid() {
		panic(fmt.Sprintf("dataprocessing: non-canonical field %q", f))
	}
	for i, cf := range domain.Fields {
		if cf == f {
			return i
		}
	}
	panic(fmt.Sprintf("dataprocessing: non-canonical field %q", f))
}
