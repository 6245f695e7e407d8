package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidebyside/internal/dataprocessing"
)

func TestFileValidator_ValidateName(t *testing.T) {
	v := NewFileValidator(slog.Default(), 0)

	tests := []struct {
		name     string
		file     string
		wantKind dataprocessing.FileKind
		wantErr  string
	}{
		{"csv", "mwd.csv", dataprocessing.KindCSV, ""},
		{"upper case xlsx", "DD_SURVEY.XLSX", dataprocessing.KindXLSX, ""},
		{"macro workbook", "dd.xlsm", dataprocessing.KindXLSX, ""},
		{"legacy workbook", "dd.xls", dataprocessing.KindXLS, ""},
		{"pdf", "survey.pdf", "", "unsupported file type"},
		{"lock file", "~$survey.xlsx", "", "temporary Excel file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := v.ValidateName(tt.file)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestFileValidator_ValidateUpload(t *testing.T) {
	v := NewFileValidator(slog.Default(), 100)

	assert.NoError(t, v.ValidateUpload("mwd.csv", 50))
	assert.ErrorIs(t, v.ValidateUpload("mwd.csv", 0), ErrEmptyFile)
	assert.ErrorIs(t, v.ValidateUpload("mwd.csv", 101), ErrFileTooLarge)
	assert.ErrorIs(t, v.ValidateUpload("mwd.txt", 50), dataprocessing.ErrUnsupportedFileType)

	unlimited := NewFileValidator(nil, 0)
	assert.NoError(t, unlimited.ValidateUpload("big.xlsx", 1<<40))
}

func TestFileValidator_ValidateFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		errorContains string
	}{
		{
			name: "valid survey",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "mwd.csv")
				require.NoError(t, os.WriteFile(path, []byte("MD,INC,AZ\n"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "survey.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			errorContains: "is a directory",
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "empty.csv")
				require.NoError(t, os.WriteFile(path, nil, 0644))
				return path
			},
			errorContains: "file is empty",
		},
		{
			name: "wrong extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "notes.txt")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			errorContains: "unsupported file type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(slog.Default(), 1<<20)
			err := v.ValidateFile(tt.setupFunc(t))
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(slog.Default(), 0)
	dir := filepath.Join(t.TempDir(), "exports", "nested")

	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))
}
