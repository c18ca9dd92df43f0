package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hydrocli/internal/config"
	"hydrocli/internal/operations"
)

func TestNewConfig(t *testing.T) {
	cfg := operations.NewConfig()

	assert.Equal(t, config.DefaultWorkers, cfg.Workers)
	assert.False(t, cfg.StrictIndexOrder)
	assert.False(t, cfg.ContinueOnError)
}

func TestConfigFrom(t *testing.T) {
	tests := []struct {
		name string
		in   config.PipelineConfig
		want operations.Config
	}{
		{
			name: "zero workers fall back to default",
			in:   config.PipelineConfig{},
			want: operations.Config{Workers: config.DefaultWorkers},
		},
		{
			name: "explicit values",
			in:   config.PipelineConfig{Workers: 4, StrictIndexOrder: true},
			want: operations.Config{Workers: 4, StrictIndexOrder: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *operations.ConfigFrom(tt.in))
		})
	}
}
