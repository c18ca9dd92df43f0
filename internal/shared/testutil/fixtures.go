package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// PiezometerHeader is the column layout of a compensated piezometer export
var PiezometerHeader = []any{"Date", "Time", "ms", "LEVEL", "TEMPERATURE", "NE_m", "Cota_m", "P_baro"}

// WriteWorkbook writes rows (header first) to the first sheet of a new xlsx file
func WriteWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

// WriteSoilExport writes a datalogger export: port labels, a serial row,
// descriptions, then data rows.
func WriteSoilExport(t *testing.T, path string, ports, descriptions []string, rows [][]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	serial := make([]string, len(ports))
	for i := range serial {
		serial[i] = "SN"
	}

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(ports))
	require.NoError(t, w.Write(serial))
	require.NoError(t, w.Write(descriptions))
	require.NoError(t, w.WriteAll(rows))
}
