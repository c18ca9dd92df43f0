package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "hydrocli/internal/errors"
)

// RawTable is a header row plus the string cells of an export, as read from disk.
type RawTable struct {
	Source string
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of a header or -1
func (r *RawTable) ColumnIndex(name string) int {
	for i, h := range r.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at row i, column j, or "" when the row is short
func (r *RawTable) Cell(i, j int) string {
	return cellAt(r.Rows[i], j)
}

func cellAt(row []string, j int) string {
	if j < 0 || j >= len(row) {
		return ""
	}
	return row[j]
}

// WorkbookOptions controls how a workbook sheet is read
type WorkbookOptions struct {
	// Sheet to read; the first sheet when empty
	Sheet string
	// Columns whose numeric cells are Excel date serials, rendered as 2006-01-02
	DateColumns []string
	// Columns whose numeric cells are Excel time-of-day fractions, rendered as 15:04:05
	TimeColumns []string
}

// ReadWorkbook reads one sheet of an xlsx export. Row 0 is the header.
// Cells are read unformatted; serial date and time cells in the configured
// columns are rendered as text so they go through the same strict parse as
// text cells.
func ReadWorkbook(path string, opts WorkbookOptions) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).WithContext("path", path)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewSchemaError("workbook has no header row", nil).WithContext("path", path)
	}

	raw := &RawTable{
		Source: path,
		Header: rows[0],
		Rows:   rows[1:],
	}

	for _, name := range opts.DateColumns {
		if j := raw.ColumnIndex(name); j >= 0 {
			convertSerialColumn(raw, j, serialDateText)
		}
	}
	for _, name := range opts.TimeColumns {
		if j := raw.ColumnIndex(name); j >= 0 {
			convertSerialColumn(raw, j, serialTimeText)
		}
	}

	slog.Debug("Workbook read",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", len(raw.Rows)),
		slog.Int("columns", len(raw.Header)))

	return raw, nil
}

func convertSerialColumn(raw *RawTable, j int, render func(float64) (string, bool)) {
	for _, row := range raw.Rows {
		if j >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64)
		if err != nil {
			continue
		}
		if text, ok := render(v); ok {
			row[j] = text
		}
	}
}

func serialDateText(v float64) (string, bool) {
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// serialTimeText renders the fractional part of a serial as a time of day
func serialTimeText(v float64) (string, bool) {
	if v < 0 {
		return "", false
	}
	_, frac := math.Modf(v)
	secs := int(math.Round(frac * 86400))
	if secs == 86400 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60), true
}

// ReadDelimited reads every record of a comma-separated export. Records may
// have differing lengths. A leading UTF-8 byte order mark is removed.
func ReadDelimited(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open file", err).WithContext("path", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("malformed delimited file", err).WithContext("path", path)
		}
		records = append(records, rec)
	}

	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// ParseNumeric converts a cell to float64. Empty or non-numeric cells are NaN.
func ParseNumeric(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
