package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "hydrocli/internal/errors"
	"hydrocli/pkg/contracts/domain"
)

const (
	piezometerDateColumn = "Date"
	piezometerTimeColumn = "Time"
	piezometerLayout     = "2006-01-02 15:04:05"
)

// PiezometerRules holds the column rename dictionary and drop list
type PiezometerRules struct {
	Rename map[string]string
	Drop   []string
}

// PiezometerWorkbookOptions returns the read options for a compensated piezometer export
func PiezometerWorkbookOptions() WorkbookOptions {
	return WorkbookOptions{
		DateColumns: []string{piezometerDateColumn},
		TimeColumns: []string{piezometerTimeColumn},
	}
}

// NormalizePiezometer turns a compensated piezometer export into a time-indexed table.
// The timestamp is Date + " " + Time parsed strictly; any failure is an error
// naming the row. Remaining columns are renamed, then dropped, then coerced to
// float (non-numeric cells become NaN).
func NormalizePiezometer(raw *RawTable, rules PiezometerRules) (*domain.Table, error) {
	dateIdx := raw.ColumnIndex(piezometerDateColumn)
	timeIdx := raw.ColumnIndex(piezometerTimeColumn)
	if dateIdx < 0 || timeIdx < 0 {
		return nil, apperrors.NewSchemaError("missing Date or Time column", nil).
			WithContext("path", raw.Source).
			WithContext("header", raw.Header)
	}

	drop := make(map[string]bool, len(rules.Drop))
	for _, d := range rules.Drop {
		drop[d] = true
	}

	var (
		columns []string
		sources []int
	)
	for j, h := range raw.Header {
		if j == dateIdx || j == timeIdx {
			continue
		}
		name := strings.TrimSpace(h)
		if canonical, ok := rules.Rename[name]; ok {
			name = canonical
		}
		if drop[name] {
			continue
		}
		columns = append(columns, name)
		sources = append(sources, j)
	}

	table := domain.NewTable(columns)
	values := make([]float64, len(sources))
	for i := range raw.Rows {
		stamp := raw.Cell(i, dateIdx) + " " + raw.Cell(i, timeIdx)
		ts, err := time.Parse(piezometerLayout, stamp)
		if err != nil {
			// +2: one header row, 1-based rows
			return nil, apperrors.NewParsingError(fmt.Sprintf("invalid timestamp %q in row %d", stamp, i+2), err).
				WithContext("path", raw.Source)
		}
		for k, j := range sources {
			values[k] = ParseNumeric(raw.Cell(i, j))
		}
		table.Append(ts, values)
	}

	slog.Debug("Piezometer table normalized",
		slog.String("path", raw.Source),
		slog.Int("rows", table.Len()),
		slog.Any("columns", table.Columns))

	return table, nil
}
