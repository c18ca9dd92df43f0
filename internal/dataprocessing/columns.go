package dataprocessing

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "hydrocli/internal/errors"
)

// PiezometerName extracts the piezometer id from an export file name: the
// second-to-last "_"-separated token, trimmed.
// "Site_P1_COMPENSADA.xlsx" -> "P1"
func PiezometerName(path string) (string, error) {
	parts := strings.Split(filepath.Base(path), "_")
	if len(parts) < 2 {
		return "", apperrors.NewSchemaError("file name has no piezometer token", nil).WithContext("path", path)
	}
	name := strings.TrimSpace(parts[len(parts)-2])
	if name == "" {
		return "", apperrors.NewSchemaError("file name has an empty piezometer token", nil).WithContext("path", path)
	}
	return name, nil
}

// DeviceName extracts the datalogger id from an export file name: everything
// before the first "(", trimmed. "z6-25818(1).csv" -> "z6-25818"
func DeviceName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "("); i >= 0 {
		base = base[:i]
	}
	return strings.TrimSpace(base)
}

// SoilColumnName builds "{sensor}_{variable}_{unit}" from a datalogger
// description cell such as "m³/m³ Water Content". The text before the first
// space is the unit with "_" removed; the rest is the variable, lower-cased
// with spaces replaced by "-".
func SoilColumnName(sensor, description string) (string, error) {
	text := strings.TrimSpace(description)
	unit, variable, ok := strings.Cut(text, " ")
	if !ok {
		return "", apperrors.NewSchemaError(fmt.Sprintf("header %q has no unit/variable separator", description), nil)
	}
	unit = strings.ReplaceAll(unit, "_", "")
	variable = strings.ToLower(strings.ReplaceAll(variable, " ", "-"))
	return sensor + "_" + variable + "_" + unit, nil
}
