package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"sidebyside/pkg/contracts/domain"
)

// Pair is one manifest entry. Relative paths resolve against the manifest.
type Pair struct {
	Name            string `yaml:"name"`
	Primary         string `yaml:"primary"`
	Secondary       string `yaml:"secondary"`
	PrimarySource   string `yaml:"primary_source"`
	SecondarySource string `yaml:"secondary_source"`
}

// Manifest lists the survey pairs of a batch run.
type Manifest struct {
	Pairs []Pair `yaml:"pairs"`

	dir string
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	if err := m.normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// NewManifest builds a manifest from pairs found some other way, e.g. by
// scanning a directory. Relative paths resolve against dir.
func NewManifest(dir string, pairs []Pair) (*Manifest, error) {
	m := &Manifest{Pairs: pairs, dir: dir}
	if err := m.normalize(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) normalize() error {
	if len(m.Pairs) == 0 {
		return ErrEmptyManifest
	}
	for i, p := range m.Pairs {
		if p.Primary == "" || p.Secondary == "" {
			return fmt.Errorf("%w: pair %d needs both primary and secondary", ErrInvalidInput, i+1)
		}
		if p.Name == "" {
			m.Pairs[i].Name = fmt.Sprintf("pair-%d", i+1)
		}
	}
	return nil
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

// BatchResult is the outcome of one pair.
type BatchResult struct {
	Name     string                   `json:"name"`
	Report   *domain.ComparisonReport `json:"report,omitempty"`
	Err      error                    `json:"-"`
	Error    string                   `json:"error,omitempty"`
	Duration time.Duration            `json:"duration"`
}

// Failed reports whether the pair could not be compared.
func (r BatchResult) Failed() bool { return r.Err != nil }

// BatchRunner compares many survey pairs with bounded concurrency.
type BatchRunner struct {
	service *ComparisonService
	workers int
	logger  *slog.Logger
}

// NewBatchRunner creates a runner. workers < 1 means one pair at a time.
func NewBatchRunner(service *ComparisonService, workers int, logger *slog.Logger) *BatchRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &BatchRunner{
		service: service,
		workers: workers,
		logger:  logger.With(slog.String("component", "batch")),
	}
}

// Run compares every pair in the manifest. A failing pair is recorded in its
// result and never stops the others; the returned error is only ctx's.
// Results keep manifest order.
func (b *BatchRunner) Run(ctx context.Context, m *Manifest) ([]BatchResult, error) {
	results := make([]BatchResult, len(m.Pairs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, pair := range m.Pairs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				results[i] = BatchResult{Name: pair.Name, Err: err, Error: err.Error()}
				return nil
			}
			results[i] = b.runPair(gCtx, m, pair)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	b.logger.InfoContext(ctx, "batch finished",
		slog.Int("pairs", len(results)),
		slog.Int("failed", failed),
		slog.Int("workers", b.workers))

	return results, ctx.Err()
}

func (b *BatchRunner) runPair(ctx context.Context, m *Manifest, pair Pair) BatchResult {
	start := time.Now()
	result := BatchResult{Name: pair.Name}

	req, err := readPair(m, pair)
	if err == nil {
		result.Report, err = b.service.Compare(ctx, req)
	}
	result.Duration = time.Since(start)

	if err != nil {
		result.Err = err
		result.Error = err.Error()
		b.logger.WarnContext(ctx, "pair failed",
			slog.String("pair", pair.Name),
			slog.String("error", err.Error()))
		return result
	}

	b.logger.DebugContext(ctx, "pair compared",
		slog.String("pair", pair.Name),
		slog.Duration("duration", result.Duration))
	return result
}

func readPair(m *Manifest, pair Pair) (CompareRequest, error) {
	primary, err := ReadUpload(m.resolve(pair.Primary), pair.PrimarySource)
	if err != nil {
		return CompareRequest{}, err
	}
	secondary, err := ReadUpload(m.resolve(pair.Secondary), pair.SecondarySource)
	if err != nil {
		return CompareRequest{}, err
	}
	return CompareRequest{Primary: primary, Secondary: secondary}, nil
}

// ReadUpload loads a survey file from disk.
func ReadUpload(path, source string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read survey: %w", err)
	}
	return Upload{Filename: filepath.Base(path), Data: data, Source: source}, nil
}
