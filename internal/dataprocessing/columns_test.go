package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hydrocli/internal/errors"
)

func TestPiezometerName(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "/raw/Site_P1_COMPENSADA.xlsx", want: "P1"},
		{path: "Campo Norte_ PZ-07 _COMPENSADA.xlsx", want: "PZ-07"},
		{path: "a_b_c_PZ3_COMPENSADA.xlsx", want: "PZ3"},
		{path: "COMPENSADA.xlsx", wantErr: true},
		{path: "x_ _COMPENSADA.xlsx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := PiezometerName(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeviceName(t *testing.T) {
	assert.Equal(t, "z6-25818", DeviceName("/raw/z6-25818(1).csv"))
	assert.Equal(t, "z6-25818", DeviceName("z6-25818 (2)(copy).csv"))
	assert.Equal(t, "z6-26092.csv", DeviceName("z6-26092.csv"))
}

func TestSoilColumnName(t *testing.T) {
	tests := []struct {
		name        string
		sensor      string
		description string
		want        string
		wantErr     bool
	}{
		{
			name:        "water potential",
			sensor:      "TEROS12_48cm",
			description: "cbar Water Content",
			want:        "TEROS12_48cm_water-content_cbar",
		},
		{
			name:        "underscore stripped from unit",
			sensor:      "TEROS21_35cm",
			description: " m³/m³_ Soil Temperature ",
			want:        "TEROS21_35cm_soil-temperature_m³/m³",
		},
		{
			name:        "only the first space splits",
			sensor:      "S",
			description: "°C Probe  Temp",
			want:        "S_probe--temp_°C",
		},
		{
			name:        "no separator",
			sensor:      "S",
			description: "Battery",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SoilColumnName(tt.sensor, tt.description)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
