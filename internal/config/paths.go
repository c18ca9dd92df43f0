package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the pipeline
type Paths struct {
	DataDir string
	LogsDir string

	// Raw inputs
	RawDir            string
	RawPiezometersDir string
	RawSoilDir        string

	// Stage outputs
	ProcessedDir string
	FormattedDir string
	CleanedDir   string
	DailyDir     string
}

// GetPaths resolves the pipeline layout from the configured data and logs directories.
// Relative directories are resolved against the working directory.
func (c *Config) GetPaths() (*Paths, error) {
	dataDir, err := filepath.Abs(c.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %v", err)
	}
	logsDir, err := filepath.Abs(c.Paths.LogsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve logs directory: %v", err)
	}
	return NewPaths(dataDir, logsDir), nil
}

// NewPaths builds the directory layout under dataDir:
//
//	data/
//	  raw/
//	    piezometers/     (*COMPENSADA.xlsx)
//	    soil-sensors/    (z6* datalogger exports)
//	  processed/
//	    01_formatted/
//	    02_cleaned/
//	    03_daily/
func NewPaths(dataDir, logsDir string) *Paths {
	rawDir := filepath.Join(dataDir, "raw")
	processedDir := filepath.Join(dataDir, "processed")

	return &Paths{
		DataDir:           dataDir,
		LogsDir:           logsDir,
		RawDir:            rawDir,
		RawPiezometersDir: filepath.Join(rawDir, "piezometers"),
		RawSoilDir:        filepath.Join(rawDir, "soil-sensors"),
		ProcessedDir:      processedDir,
		FormattedDir:      filepath.Join(processedDir, "01_formatted"),
		CleanedDir:        filepath.Join(processedDir, "02_cleaned"),
		DailyDir:          filepath.Join(processedDir, "03_daily"),
	}
}

// EnsureDirectories creates the output and log directories if they don't exist.
// Raw directories are inputs and are never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.FormattedDir,
		p.CleanedDir,
		p.DailyDir,
		p.LogsDir,
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// OutlierSummaryPath returns 02_cleaned/outlier_summary.csv
func (p *Paths) OutlierSummaryPath() string {
	return filepath.Join(p.CleanedDir, OutlierSummaryFile)
}

// PiezometerFormattedPath returns 01_formatted/piezo-data_{name}_formatted.csv
func (p *Paths) PiezometerFormattedPath(name string) string {
	return filepath.Join(p.FormattedDir, OutputFileName(PiezometerPrefix+"_"+name, SuffixFormatted))
}

// SoilFormattedPath returns 01_formatted/soil-data_{device}_formatted.csv
func (p *Paths) SoilFormattedPath(device string) string {
	return filepath.Join(p.FormattedDir, OutputFileName(SoilPrefix+"_"+device, SuffixFormatted))
}

// CleanedPath returns 02_cleaned/{sensor}_cleaned.csv
func (p *Paths) CleanedPath(sensor string) string {
	return filepath.Join(p.CleanedDir, OutputFileName(sensor, SuffixCleaned))
}

// DailyPath returns 03_daily/{sensor}_daily.csv
func (p *Paths) DailyPath(sensor string) string {
	return filepath.Join(p.DailyDir, OutputFileName(sensor, SuffixDaily))
}

// OutputFileName joins a sensor name and a stage suffix: {sensor}_{suffix}.csv
func OutputFileName(sensor, suffix string) string {
	return sensor + "_" + suffix + OutputExt
}

// SensorNameFromOutput strips a known stage suffix from an output file name:
// "piezo-data_P1_formatted.csv" -> "piezo-data_P1".
// Names without a known suffix are returned without their extension.
func SensorNameFromOutput(path string) string {
	base := filepath.Base(path)
	for _, suffix := range []string{SuffixFormatted, SuffixCleaned, SuffixDaily} {
		tail := "_" + suffix + OutputExt
		if strings.HasSuffix(base, tail) {
			return strings.TrimSuffix(base, tail)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Path resolution summary",
		slog.Group("raw",
			slog.String("piezometers", p.RawPiezometersDir),
			slog.String("soil_sensors", p.RawSoilDir),
		),
		slog.Group("processed",
			slog.String("formatted", p.FormattedDir),
			slog.String("cleaned", p.CleanedDir),
			slog.String("daily", p.DailyDir),
		),
		slog.String("logs", p.LogsDir))
}
