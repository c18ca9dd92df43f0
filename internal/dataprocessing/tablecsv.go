package dataprocessing

import (
	"fmt"
	"math"
	"strings"

	apperrors "hydrocli/internal/errors"
	"hydrocli/pkg/contracts/domain"
)

// TableLayouts are the index formats written by the pipeline
var TableLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

// ReadTableCSV reads a table written by a previous stage: a header row whose
// first cell is the index label, then one row per timestamp. Cells equal to
// one of the missing tokens, empty cells and non-numeric cells are NaN.
func ReadTableCSV(path string, missing []string) (*domain.Table, error) {
	records, err := ReadDelimited(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, apperrors.NewSchemaError("table has no header row", nil).WithContext("path", path)
	}

	sentinel := make(map[string]bool, len(missing))
	for _, m := range missing {
		sentinel[m] = true
	}

	header := records[0]
	columns := make([]string, len(header)-1)
	for j := range columns {
		columns[j] = strings.TrimSpace(header[j+1])
	}

	table := domain.NewTable(columns)
	values := make([]float64, len(columns))
	for i, rec := range records[1:] {
		ts, err := ParseTimestamp(cellAt(rec, 0), TableLayouts)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("invalid index in row %d", i+2), err).
				WithContext("path", path)
		}
		for j := range values {
			cell := strings.TrimSpace(cellAt(rec, j+1))
			if sentinel[cell] {
				values[j] = math.NaN()
				continue
			}
			values[j] = ParseNumeric(cell)
		}
		table.Append(ts, values)
	}

	return table, nil
}
