// Command sidebyside compares directional survey exports from the command line.
//
//	sidebyside compare -primary mwd.xlsx -secondary dd.csv [-format text|json|markdown] [-out DIR]
//	sidebyside batch -manifest pairs.yaml [-workers N] [-out DIR]
//	sidebyside batch -dir surveys/ [-workers N] [-out DIR]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"sidebyside/internal/app"
	"sidebyside/internal/config"
	"sidebyside/internal/exporter"
	"sidebyside/internal/files"
	"sidebyside/internal/infrastructure"
	"sidebyside/internal/services"
	"sidebyside/internal/validation"
	"sidebyside/pkg/contracts/domain"
)

// Exit codes.
const (
	exitOK       = 0
	exitMismatch = 1 // a survey could not be parsed or a batch pair failed
	exitUsage    = 2
)

var formats = []string{"text", "json", "markdown"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}
	logger := infrastructure.NewLogger(stderr, cfg.Logging.Level)

	switch args[0] {
	case "compare":
		return runCompare(ctx, cfg, logger, args[1:], stdout, stderr)
	case "batch":
		return runBatch(ctx, cfg, logger, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  sidebyside compare -primary FILE -secondary FILE [-primary-source TAG] [-secondary-source TAG] [-format %s] [-out DIR]
  sidebyside batch (-manifest FILE | -dir DIR) [-workers N] [-format text|json] [-out DIR]
`, strings.Join(formats, "|"))
}

func newService(cfg *config.Config, logger *slog.Logger) *services.ComparisonService {
	return services.NewComparisonService(
		app.NewParser(cfg.Parser, logger, nil),
		logger,
		services.WithDefaultSources(cfg.Parser.PrimarySource, cfg.Parser.SecondarySource),
		services.WithValidator(validation.NewFileValidator(logger, cfg.Parser.MaxUploadBytes)),
	)
}

func runCompare(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	primary := fs.String("primary", "", "primary survey file (.csv, .xlsx, .xlsm, .xls)")
	secondary := fs.String("secondary", "", "secondary survey file")
	primarySource := fs.String("primary-source", cfg.Parser.PrimarySource, "primary source tag")
	secondarySource := fs.String("secondary-source", cfg.Parser.SecondarySource, "secondary source tag")
	format := fs.String("format", "text", "output format: "+strings.Join(formats, ", "))
	outDir := fs.String("out", "", "write mismatch exports as CSV into this directory")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *primary == "" || *secondary == "" {
		fmt.Fprintln(stderr, "compare: -primary and -secondary are required")
		return exitUsage
	}
	if !validFormat(*format) {
		fmt.Fprintf(stderr, "compare: unknown format %q\n", *format)
		return exitUsage
	}

	validator := validation.NewFileValidator(logger, cfg.Parser.MaxUploadBytes)
	for _, path := range []string{*primary, *secondary} {
		if err := validator.ValidateFile(path); err != nil {
			fmt.Fprintf(stderr, "compare: %v\n", err)
			return exitUsage
		}
	}

	req := services.CompareRequest{}
	var err error
	if req.Primary, err = services.ReadUpload(*primary, *primarySource); err != nil {
		fmt.Fprintf(stderr, "compare: %v\n", err)
		return exitUsage
	}
	if req.Secondary, err = services.ReadUpload(*secondary, *secondarySource); err != nil {
		fmt.Fprintf(stderr, "compare: %v\n", err)
		return exitUsage
	}

	report, err := newService(cfg, logger).Compare(ctx, req)
	if report == nil {
		fmt.Fprintf(stderr, "compare: %v\n", err)
		return exitUsage
	}

	if werr := writeReport(stdout, report, *format); werr != nil {
		fmt.Fprintf(stderr, "compare: %v\n", werr)
		return exitUsage
	}
	if report.Failed() {
		return exitMismatch
	}

	if *outDir != "" {
		if err := exportCSV(logger, cfg, *outDir, report, stderr); err != nil {
			fmt.Fprintf(stderr, "compare: %v\n", err)
			return exitUsage
		}
	}
	return exitOK
}

func runBatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	manifestPath := fs.String("manifest", "", "YAML manifest listing survey pairs")
	scanDir := fs.String("dir", "", "pair survey files in this directory by the source tag in their names")
	workers := fs.Int("workers", runtime.NumCPU(), "pairs compared concurrently")
	format := fs.String("format", "text", "output format: text, json")
	outDir := fs.String("out", "", "write mismatch exports per pair into subdirectories of this directory")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if (*manifestPath == "") == (*scanDir == "") {
		fmt.Fprintln(stderr, "batch: exactly one of -manifest or -dir is required")
		return exitUsage
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "batch: unknown format %q\n", *format)
		return exitUsage
	}

	var manifest *services.Manifest
	var err error
	if *manifestPath != "" {
		manifest, err = services.LoadManifest(*manifestPath)
	} else {
		manifest, err = discoverManifest(cfg, *scanDir, stderr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "batch: %v\n", err)
		return exitUsage
	}

	results, err := services.NewBatchRunner(newService(cfg, logger), *workers, logger).Run(ctx, manifest)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "batch: %v\n", err)
		return exitUsage
	}

	if *outDir != "" {
		for _, r := range results {
			if r.Failed() || r.Report == nil {
				continue
			}
			if err := exportCSV(logger, cfg, filepath.Join(*outDir, r.Name), r.Report, stderr); err != nil {
				fmt.Fprintf(stderr, "batch: %s: %v\n", r.Name, err)
				return exitUsage
			}
		}
	}

	if *format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(stderr, "batch: %v\n", err)
			return exitUsage
		}
	} else {
		writeBatchTable(stdout, results)
	}

	for _, r := range results {
		if r.Failed() {
			return exitMismatch
		}
	}
	return exitOK
}

// discoverManifest pairs the survey files in dir using the configured
// source tags. Files left without a partner are reported on stderr.
func discoverManifest(cfg *config.Config, dir string, stderr io.Writer) (*services.Manifest, error) {
	found, err := files.NewDiscovery(".").FindSurveyFiles(dir)
	if err != nil {
		return nil, err
	}

	matched, unmatched := files.PairBySource(found, cfg.Parser.PrimarySource, cfg.Parser.SecondarySource)
	for _, f := range unmatched {
		fmt.Fprintf(stderr, "batch: skipping %s (no matching survey)\n", f.Name)
	}

	pairs := make([]services.Pair, 0, len(matched))
	for _, m := range matched {
		pairs = append(pairs, services.Pair{
			Name:      m.Well,
			Primary:   m.Primary.Path,
			Secondary: m.Secondary.Path,
		})
	}
	return services.NewManifest("", pairs)
}

func validFormat(f string) bool {
	for _, known := range formats {
		if f == known {
			return true
		}
	}
	return false
}

func writeReport(w io.Writer, report *domain.ComparisonReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "markdown":
		_, err := io.WriteString(w, exporter.Markdown(report))
		return err
	}

	if _, err := io.WriteString(w, report.Summary); err != nil {
		return err
	}
	if report.Failed() || len(report.Mismatches) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(exporter.MismatchColumns(report.PrimarySource, report.SecondarySource), "\t")+"\t")
	for _, m := range report.Mismatches {
		cells := []string{fmt.Sprint(m.Index)}
		for _, side := range []domain.DisplayRow{m.Primary, m.Secondary} {
			for _, f := range domain.Fields {
				v := side.Get(f)
				if m.Has(f) {
					v += "*"
				}
				cells = append(cells, v)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}

func writeBatchTable(w io.Writer, results []services.BatchResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAIR\tSTATUS\tROWS\tMISMATCHES\tACCURACY\tDURATION")
	for _, r := range results {
		switch {
		case r.Failed():
			fmt.Fprintf(tw, "%s\tfailed\t-\t-\t-\t%s\n", r.Name, r.Duration.Round(time.Millisecond))
			fmt.Fprintf(tw, "\t%s\t\t\t\t\n", r.Error)
		default:
			s := r.Report.Stats
			fmt.Fprintf(tw, "%s\tok\t%d\t%d\t%.2f%%\t%s\n", r.Name, s.RowsCompared, s.RowMismatches, s.AccuracyPct, r.Duration.Round(time.Millisecond))
		}
	}
	tw.Flush()
}

func exportCSV(logger *slog.Logger, cfg *config.Config, dir string, report *domain.ComparisonReport, stderr io.Writer) error {
	if err := validation.NewFileValidator(logger, 0).ValidateOutputDirectory(dir); err != nil {
		return err
	}
	paths, err := exporter.NewCSVWriter(dir, cfg.Export.BOM).WriteReport(report)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(stderr, "wrote %s\n", p)
	}
	return nil
}
