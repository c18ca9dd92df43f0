package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars or file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, 1, cfg.Pipeline.Workers)
				assert.Equal(t, DefaultPiezometerPattern, cfg.Pipeline.PiezometerPattern)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.True(t, cfg.Telemetry.MetricsEnabled)
			},
		},
		{
			name: "environment variables override defaults",
			env: map[string]string{
				"HYDRO_LOGGING_LEVEL":               "debug",
				"HYDRO_PATHS_DATA_DIR":              "/srv/monitoring",
				"HYDRO_PIPELINE_WORKERS":            "4",
				"HYDRO_PIPELINE_STRICT_INDEX_ORDER": "true",
				"HYDRO_TELEMETRY_TRACE_EXPORTER":    "stdout",
				"HYDRO_PATHS_CATALOG_FILE":          "/etc/hydro/catalog.yaml",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "/srv/monitoring", cfg.Paths.DataDir)
				assert.Equal(t, 4, cfg.Pipeline.Workers)
				assert.True(t, cfg.Pipeline.StrictIndexOrder)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
				assert.Equal(t, "/etc/hydro/catalog.yaml", cfg.Paths.CatalogFile)
			},
		},
		{
			name: "file values fill fields left unset by env",
			env: map[string]string{
				"HYDRO_PIPELINE_WORKERS": "2",
			},
			fileContent: `
logging:
  level: warn
  output: console
pipeline:
  workers: 8
  soil_pattern: "z6-*"
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, 2, cfg.Pipeline.Workers, "env wins over file")
				assert.Equal(t, "z6-*", cfg.Pipeline.SoilPattern)
				assert.Equal(t, DefaultPiezometerPattern, cfg.Pipeline.PiezometerPattern, "default kept")
			},
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"HYDRO_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "workers below one",
			env:     map[string]string{"HYDRO_PIPELINE_WORKERS": "0"},
			wantErr: true,
		},
		{
			name:    "unparseable integer",
			env:     map[string]string{"HYDRO_PIPELINE_WORKERS": "many"},
			wantErr: true,
		},
		{
			name:        "malformed yaml",
			fileContent: "logging: [unterminated",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.fileContent != "" {
				path := filepath.Join(t.TempDir(), "hydrocli.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.fileContent), 0644))
				t.Setenv("HYDRO_CONFIG_FILE", path)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Setenv("HYDRO_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{
			name:    "file output without path",
			mutate:  func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" },
			wantErr: true,
		},
		{
			name:   "console output without path",
			mutate: func(c *Config) { c.Logging.Output = "console"; c.Logging.FilePath = "" },
		},
		{
			name:    "unknown trace exporter",
			mutate:  func(c *Config) { c.Telemetry.TraceExporter = "jaeger" },
			wantErr: true,
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.Paths.DataDir = "" },
			wantErr: true,
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Pipeline.Workers = 65 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
