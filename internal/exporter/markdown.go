package exporter

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"sidebyside/pkg/contracts/domain"
)

// Markdown renders a report as a Markdown document.
func Markdown(report *domain.ComparisonReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s vs %s survey comparison\n\n", report.PrimarySource, report.SecondarySource)
	if report.PrimaryFile != "" || report.SecondaryFile != "" {
		fmt.Fprintf(&b, "- %s file: `%s`\n", report.PrimarySource, report.PrimaryFile)
		fmt.Fprintf(&b, "- %s file: `%s`\n", report.SecondarySource, report.SecondaryFile)
	}
	fmt.Fprintf(&b, "- Run: `%s` at %s\n\n", report.ID, report.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Summary\n\n```\n")
	b.WriteString(report.Summary)
	if !strings.HasSuffix(report.Summary, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	if report.Failed() {
		return b.String()
	}

	if len(report.Deltas) > 0 {
		b.WriteString("\n## Deltas\n\n")
		b.WriteString("| Field | Samples | Mean abs | Median abs | Max abs |\n")
		b.WriteString("|---|---:|---:|---:|---:|\n")
		for _, f := range domain.Fields {
			d := report.Deltas[f]
			fmt.Fprintf(&b, "| %s | %d | %.4f | %.4f | %.4f |\n", f, d.Samples, d.MeanAbs, d.Median, d.MaxAbs)
		}
	}

	b.WriteString("\n## Mismatched rows\n\n")
	if len(report.Mismatches) == 0 {
		b.WriteString("No mismatches.\n")
		return b.String()
	}

	cols := MismatchColumns(report.PrimarySource, report.SecondarySource)
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---:|", len(cols)) + "\n")
	for _, m := range report.Mismatches {
		cells := []string{fmt.Sprint(m.Index)}
		for _, f := range domain.Fields {
			cells = append(cells, markCell(m.Primary.Get(f), m.Has(f)))
		}
		for _, f := range domain.Fields {
			cells = append(cells, markCell(m.Secondary.Get(f), m.Has(f)))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

func markCell(v string, mismatch bool) string {
	if mismatch {
		return "**" + v + "**"
	}
	return v
}

// RenderHTML renders the Markdown report as a standalone HTML page.
func RenderHTML(report *domain.ComparisonReport) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(report)))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: fmt.Sprintf("%s vs %s survey comparison", report.PrimarySource, report.SecondarySource),
	})
	return markdown.Render(doc, renderer)
}
