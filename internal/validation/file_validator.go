package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sidebyside/internal/dataprocessing"
)

// ErrEmptyFile is returned for zero-byte survey files and uploads.
var ErrEmptyFile = errors.New("file is empty")

// ErrFileTooLarge is returned when a survey exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

// FileValidator checks survey inputs before they reach the parser. The
// command line tools and the upload handler share it.
type FileValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewFileValidator creates a new file validator. maxBytes <= 0 disables the
// size limit.
func NewFileValidator(logger *slog.Logger, maxBytes int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// ValidateName checks that name carries a survey extension and is not an
// Office lock file.
func (v *FileValidator) ValidateName(name string) (dataprocessing.FileKind, error) {
	kind, err := dataprocessing.DetectKind(name)
	if err != nil {
		v.logger.Warn("Unsupported survey file",
			slog.String("file", name),
			slog.String("extension", strings.ToLower(filepath.Ext(name))))
		return "", err
	}

	if strings.HasPrefix(filepath.Base(name), "~$") {
		v.logger.Warn("Rejected temporary Excel file",
			slog.String("file", name))
		return "", fmt.Errorf("file %s is a temporary Excel file", name)
	}
	return kind, nil
}

// ValidateUpload checks an uploaded survey's name and size.
func (v *FileValidator) ValidateUpload(name string, size int64) error {
	if _, err := v.ValidateName(name); err != nil {
		return err
	}
	return v.checkSize(name, size)
}

// ValidateFile checks that a survey file on disk exists, is readable and
// has a supported extension.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	if _, err := v.ValidateName(path); err != nil {
		return err
	}
	if err := v.checkSize(path, info.Size()); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

func (v *FileValidator) checkSize(name string, size int64) error {
	if size == 0 {
		v.logger.Warn("Empty survey file", slog.String("file", name))
		return fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("Survey file exceeds size limit",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("limit", v.maxBytes))
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, name, size, v.maxBytes)
	}
	return nil
}
