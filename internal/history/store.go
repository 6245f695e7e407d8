// Package history persists the outcome of every comparison run in a local
// sqlite database so recent runs can be listed by the web UI.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"sidebyside/pkg/contracts/domain"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("comparison not found")

const schema = `
CREATE TABLE IF NOT EXISTS comparisons (
	id               TEXT PRIMARY KEY,
	created_at       INTEGER NOT NULL,
	primary_source   TEXT NOT NULL,
	secondary_source TEXT NOT NULL,
	primary_file     TEXT NOT NULL DEFAULT '',
	secondary_file   TEXT NOT NULL DEFAULT '',
	rows_compared    INTEGER NOT NULL DEFAULT 0,
	row_mismatches   INTEGER NOT NULL DEFAULT 0,
	md_mismatches    INTEGER NOT NULL DEFAULT 0,
	inc_mismatches   INTEGER NOT NULL DEFAULT 0,
	az_mismatches    INTEGER NOT NULL DEFAULT 0,
	accuracy         REAL NOT NULL DEFAULT 0,
	error            TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_comparisons_created_at ON comparisons(created_at DESC);
`

const columns = `id, created_at, primary_source, secondary_source, primary_file, secondary_file,
	rows_compared, row_mismatches, md_mismatches, inc_mismatches, az_mismatches, accuracy, error`

// row mirrors the table; created_at is stored as unix milliseconds.
type row struct {
	ID              string  `db:"id"`
	CreatedAt       int64   `db:"created_at"`
	PrimarySource   string  `db:"primary_source"`
	SecondarySource string  `db:"secondary_source"`
	PrimaryFile     string  `db:"primary_file"`
	SecondaryFile   string  `db:"secondary_file"`
	RowsCompared    int     `db:"rows_compared"`
	RowMismatches   int     `db:"row_mismatches"`
	MDMismatches    int     `db:"md_mismatches"`
	INCMismatches   int     `db:"inc_mismatches"`
	AZMismatches    int     `db:"az_mismatches"`
	Accuracy        float64 `db:"accuracy"`
	Error           string  `db:"error"`
}

func toRow(e domain.HistoryEntry) row {
	return row{
		ID:              e.ID,
		CreatedAt:       e.CreatedAt.UnixMilli(),
		PrimarySource:   e.PrimarySource,
		SecondarySource: e.SecondarySource,
		PrimaryFile:     e.PrimaryFile,
		SecondaryFile:   e.SecondaryFile,
		RowsCompared:    e.RowsCompared,
		RowMismatches:   e.RowMismatches,
		MDMismatches:    e.MDMismatches,
		INCMismatches:   e.INCMismatches,
		AZMismatches:    e.AZMismatches,
		Accuracy:        e.AccuracyPct,
		Error:           e.Error,
	}
}

func (r row) entry() domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:              r.ID,
		CreatedAt:       time.UnixMilli(r.CreatedAt).UTC(),
		PrimarySource:   r.PrimarySource,
		SecondarySource: r.SecondarySource,
		PrimaryFile:     r.PrimaryFile,
		SecondaryFile:   r.SecondaryFile,
		RowsCompared:    r.RowsCompared,
		RowMismatches:   r.RowMismatches,
		MDMismatches:    r.MDMismatches,
		INCMismatches:   r.INCMismatches,
		AZMismatches:    r.AZMismatches,
		AccuracyPct:     r.Accuracy,
		Error:           r.Error,
	}
}

// Store is a sqlite-backed run history.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	logger = logger.With(slog.String("component", "history"))
	logger.Info("history store opened", slog.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Save records one run. Saving the same ID twice replaces the earlier row.
func (s *Store) Save(ctx context.Context, e domain.HistoryEntry) error {
	query := `INSERT OR REPLACE INTO comparisons (` + columns + `) VALUES (
		:id, :created_at, :primary_source, :secondary_source, :primary_file, :secondary_file,
		:rows_compared, :row_mismatches, :md_mismatches, :inc_mismatches, :az_mismatches, :accuracy, :error)`

	if _, err := s.db.NamedExecContext(ctx, query, toRow(e)); err != nil {
		return fmt.Errorf("failed to save comparison %s: %w", e.ID, err)
	}
	s.logger.DebugContext(ctx, "comparison saved", slog.String("id", e.ID))
	return nil
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		return []domain.HistoryEntry{}, nil
	}

	var rows []row
	query := `SELECT ` + columns + ` FROM comparisons ORDER BY created_at DESC, id LIMIT ?`
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list comparisons: %w", err)
	}

	entries := make([]domain.HistoryEntry, len(rows))
	for i, r := range rows {
		entries[i] = r.entry()
	}
	return entries, nil
}

// Get returns a single run by ID.
func (s *Store) Get(ctx context.Context, id string) (domain.HistoryEntry, error) {
	var r row
	query := `SELECT ` + columns + ` FROM comparisons WHERE id = ?`
	if err := s.db.GetContext(ctx, &r, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.HistoryEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return domain.HistoryEntry{}, fmt.Errorf("failed to get comparison %s: %w", id, err)
	}
	return r.entry(), nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
