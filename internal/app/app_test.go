package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrocli/internal/config"
	"hydrocli/internal/infrastructure"
	"hydrocli/internal/operations"
	"hydrocli/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Logging.Output = "console"
	cfg.Logging.Level = "error"
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.LogsDir = filepath.Join(root, "logs")
	cfg.Telemetry.MetricsTextfile = filepath.Join(root, "metrics", "hydrocli.prom")
	return cfg
}

func newTestApplication(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	application, err := NewApplicationWithConfig(cfg)
	require.NoError(t, err)
	return application
}

func TestNewApplicationWithConfig(t *testing.T) {
	cfg := testConfig(t)
	application := newTestApplication(t, cfg)
	defer application.Stop(context.Background())

	assert.NotNil(t, application.Logger)
	assert.NotNil(t, application.Catalog)
	assert.NotNil(t, application.Metrics)
	assert.Equal(t, 4, application.Registry.Count())
	assert.Equal(t, []string{
		operations.StageIDFormatPiezometers,
		operations.StageIDFormatSoil,
		operations.StageIDClean,
		operations.StageIDDaily,
	}, application.Registry.ListIDs())
	assert.DirExists(t, application.Paths.FormattedDir)
	assert.DirExists(t, application.Paths.CleanedDir)
	assert.DirExists(t, application.Paths.DailyDir)
	assert.NoDirExists(t, application.Paths.RawDir, "raw inputs are never created")
}

func TestNewApplicationWithConfig_BadCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")

	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	_, err := NewApplicationWithConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
}

func TestApplicationRun(t *testing.T) {
	cfg := testConfig(t)
	application := newTestApplication(t, cfg)

	testutil.WriteWorkbook(t, filepath.Join(application.Paths.RawPiezometersDir, "Site_P1_COMPENSADA.xlsx"), [][]any{
		testutil.PiezometerHeader,
		{"2024-05-21", "00:00:00", 0, 1, 12.5, 3.2, 2450, 101},
		{"2024-05-21", "01:00:00", 0, 1, 12.6, 3.3, 2450, 101},
	})

	var out bytes.Buffer
	ctx := infrastructure.WithRunID(context.Background(), "test-run")
	resp, err := application.Run(ctx, "run", nil, &out)
	require.NoError(t, err)

	assert.Equal(t, "test-run", resp.ID)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.Contains(t, out.String(), "format_piezometers: 1 discovered, 1 written, 0 failed")
	assert.Contains(t, out.String(), "aggregate_daily: 1 discovered, 1 written, 0 failed")
	assert.FileExists(t, application.Paths.DailyPath("piezo-data_P1"))

	require.NoError(t, application.Stop(context.Background()))

	metrics, err := os.ReadFile(cfg.Telemetry.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "hydrocli_tables_written")
	assert.Contains(t, string(metrics), `command="run"`)
}

func TestApplicationRun_StageFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.MetricsTextfile = ""
	application := newTestApplication(t, cfg)
	defer application.Stop(context.Background())

	require.NoError(t, os.RemoveAll(application.Paths.DailyDir))
	require.NoError(t, os.WriteFile(application.Paths.DailyDir, []byte("not a directory"), 0644))

	var out bytes.Buffer
	resp, err := application.Run(context.Background(), "daily", operations.DailyStages, &out)
	require.Error(t, err)
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.Contains(t, out.String(), "failed in")
}
