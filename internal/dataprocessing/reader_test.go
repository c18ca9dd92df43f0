package dataprocessing

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "hydrocli/internal/errors"
)

// saveWorkbook writes rows (header first) to Sheet1 of a new workbook
func saveWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadWorkbook_TextCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Site_P1_COMPENSADA.xlsx")
	saveWorkbook(t, path, [][]interface{}{
		{"Date", "Time", "ms", "LEVEL", "TEMPERATURE"},
		{"2024-05-21", "09:15:00", 0, 1.25, 12.5},
		{"2024-05-21", "09:30:00", 0, 1.5},
	})

	raw, err := ReadWorkbook(path, PiezometerWorkbookOptions())
	require.NoError(t, err)

	assert.Equal(t, path, raw.Source)
	assert.Equal(t, []string{"Date", "Time", "ms", "LEVEL", "TEMPERATURE"}, raw.Header)
	require.Len(t, raw.Rows, 2)
	assert.Equal(t, "2024-05-21", raw.Cell(0, 0))
	assert.Equal(t, "09:15:00", raw.Cell(0, 1))
	assert.Equal(t, "12.5", raw.Cell(0, 4))
	assert.Equal(t, "", raw.Cell(1, 4), "short rows read as empty")
	assert.Equal(t, 4, raw.ColumnIndex("TEMPERATURE"))
	assert.Equal(t, -1, raw.ColumnIndex("NE_m"))
}

func TestReadWorkbook_SerialDateAndTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Site_P2_COMPENSADA.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Date", "Time", "NE_m"}))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellFloat("Sheet1", "B2", 555.0/1440.0, -1, 64))
	require.NoError(t, f.SetCellValue("Sheet1", "C2", 3.5))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	raw, err := ReadWorkbook(path, PiezometerWorkbookOptions())
	require.NoError(t, err)
	require.Len(t, raw.Rows, 1)
	assert.Equal(t, "2024-05-21", raw.Cell(0, 0))
	assert.Equal(t, "09:15:00", raw.Cell(0, 1))
	assert.Equal(t, "3.5", raw.Cell(0, 2), "non date columns stay raw")
}

func TestReadWorkbook_Errors(t *testing.T) {
	_, err := ReadWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"), WorkbookOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))

	empty := filepath.Join(t.TempDir(), "empty.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(empty))
	require.NoError(t, f.Close())

	_, err = ReadWorkbook(empty, WorkbookOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestSerialTimeText(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{0.5, "12:00:00"},
		{45433.75, "18:00:00"},
		{86399.0 / 86400.0, "23:59:59"},
		{0.9999999999, "00:00:00"},
	}
	for _, tt := range tests {
		got, ok := serialTimeText(tt.in)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
	_, ok := serialTimeText(-1)
	assert.False(t, ok)
}

func TestReadDelimited(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "z6-25818(1).csv",
		"\ufeffz6-25818,Port1,Port2",
		"x",
		"Timestamp,cbar Water Content,°C Soil Temperature",
		`2024-05-21 00:00:00,"1,5",20`,
	)

	records, err := ReadDelimited(path)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "z6-25818", records[0][0], "BOM removed")
	assert.Len(t, records[1], 1, "ragged records allowed")
	assert.Equal(t, "1,5", records[3][1])

	_, err = ReadDelimited(filepath.Join(dir, "nope.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestParseNumeric(t *testing.T) {
	assert.Equal(t, 1.5, ParseNumeric(" 1.5 "))
	assert.Equal(t, -2.0, ParseNumeric("-2"))
	assert.True(t, math.IsNaN(ParseNumeric("")))
	assert.True(t, math.IsNaN(ParseNumeric("#N/D")))
	assert.True(t, math.IsNaN(ParseNumeric("1,5")))
}
