package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	CatalogFile string `yaml:"catalog_file" envconfig:"CATALOG_FILE"`
}

// PipelineConfig controls how stages discover and process files
type PipelineConfig struct {
	Workers           int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	StrictIndexOrder  bool   `yaml:"strict_index_order" envconfig:"STRICT_INDEX_ORDER"`
	PiezometerPattern string `yaml:"piezometer_pattern" envconfig:"PIEZOMETER_PATTERN" validate:"required"`
	SoilPattern       string `yaml:"soil_pattern" envconfig:"SOIL_PATTERN" validate:"required"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	MetricsEnabled  bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Load loads configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load(DotEnvFile)

	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching env var keep their current value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg; keys absent from the file are left untouched
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	if explicit := strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG_FILE")); explicit != "" {
		return explicit
	}

	locations := []string{
		DefaultConfigFile,
		"configs/" + DefaultConfigFile,
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required when output is %q", c.Logging.Output)
	}

	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: DefaultLogsDir + "/" + AppName + ".log",
		},
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
			LogsDir: DefaultLogsDir,
		},
		Pipeline: PipelineConfig{
			Workers:           DefaultWorkers,
			PiezometerPattern: DefaultPiezometerPattern,
			SoilPattern:       DefaultSoilPattern,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}
