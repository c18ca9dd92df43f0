package operations

import (
	"hydrocli/internal/config"
)

// Config controls how the manager runs stages
type Config struct {
	// Workers bounds the per-sensor fan-out inside a stage
	Workers int `json:"workers"`

	// StrictIndexOrder turns a non-increasing soil index into a per-device failure
	StrictIndexOrder bool `json:"strict_index_order"`

	// ContinueOnError runs later stages after a stage-level failure.
	// Stages that depend on the failed one are skipped either way.
	ContinueOnError bool `json:"continue_on_error"`
}

// NewConfig returns the default configuration: one worker, lenient index order
func NewConfig() *Config {
	return &Config{
		Workers: config.DefaultWorkers,
	}
}

// ConfigFrom maps the pipeline section of the application config
func ConfigFrom(p config.PipelineConfig) *Config {
	cfg := NewConfig()
	if p.Workers > 0 {
		cfg.Workers = p.Workers
	}
	cfg.StrictIndexOrder = p.StrictIndexOrder
	return cfg
}
