package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 100, cfg.Parser.KeywordScanRows)
				assert.Equal(t, "MWD", cfg.Parser.PrimarySource)
				assert.Equal(t, "DD", cfg.Parser.SecondarySource)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.True(t, cfg.History.Enabled)
				assert.Nil(t, cfg.Parser.PrimaryTemplate)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
parser:
  keyword_scan_rows: 40
  other_template:
    header_row: 10
    header_cols: [0, 1, 2]
    data_row: 12
    data_cols: [0, 1, 2]
history:
  enabled: false
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 40, cfg.Parser.KeywordScanRows)
				require.NotNil(t, cfg.Parser.OtherTemplate)
				assert.Equal(t, 10, cfg.Parser.OtherTemplate.HeaderRow)
				assert.Equal(t, []int{0, 1, 2}, cfg.Parser.OtherTemplate.DataCols)
				assert.False(t, cfg.History.Enabled)
			},
		},
		{
			name: "env wins over file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"SBS_SERVER_PORT":           "7070",
				"SBS_LOGGING_LEVEL":         "debug",
				"SBS_HISTORY_DB_PATH":       "/tmp/runs.db",
				"SBS_PARSER_PRIMARY_SOURCE": "LWD",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "/tmp/runs.db", cfg.History.Path)
				assert.Equal(t, "LWD", cfg.Parser.PrimarySource)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"SBS_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "identical source tags",
			env:     map[string]string{"SBS_PARSER_SECONDARY_SOURCE": "MWD"},
			wantErr: true,
		},
		{
			name:    "unknown log output",
			file:    "logging:\n  output: syslog\n",
			wantErr: true,
		},
		{
			name:    "template with two columns",
			file:    "parser:\n  fallback_template:\n    header_row: 1\n    header_cols: [0, 1]\n    data_row: 2\n    data_cols: [0, 1]\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ConfigFileEnv(t *testing.T) {
	path := writeConfig(t, "export:\n  dir: reports\n")
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "reports", cfg.Export.Dir)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
