package dataprocessing

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	apperrors "hydrocli/internal/errors"
	"hydrocli/pkg/contracts/domain"
)

// Datalogger export layout: row 0 holds port labels, row 1 is ignored,
// row 2 holds unit/variable descriptions, data starts at row 3.
const (
	soilPortRow        = 0
	soilDescriptionRow = 2
	soilHeaderRows     = 3
)

// DataloggerExport is the concatenated data of every file of one device,
// restricted to the retained columns. Position 0 is always the timestamp column.
type DataloggerExport struct {
	Files        []string
	Ports        []string
	Descriptions []string
	Rows         [][]string
}

// GroupDataloggerFiles groups export paths by device id (file name before the
// first "("). Paths within a group are sorted.
func GroupDataloggerFiles(paths []string) map[string][]string {
	groups := make(map[string][]string)
	for _, p := range paths {
		device := DeviceName(p)
		groups[device] = append(groups[device], p)
	}
	for _, files := range groups {
		sort.Strings(files)
	}
	return groups
}

// ConcatenateDatalogger reads the header of the lexicographically-first file,
// keeps column 0 and every column whose port label is in ports, and appends
// the data rows of every file in sorted order. Rows are neither deduplicated
// nor re-sorted. An empty path list yields an empty export.
func ConcatenateDatalogger(paths []string, ports domain.PortMap) (*DataloggerExport, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	export := &DataloggerExport{Files: sorted}
	if len(sorted) == 0 {
		return export, nil
	}

	first, err := ReadDelimited(sorted[0])
	if err != nil {
		return nil, err
	}
	if len(first) < soilHeaderRows {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("export has %d rows, need %d header rows", len(first), soilHeaderRows), nil).
			WithContext("path", sorted[0])
	}

	portRow := first[soilPortRow]
	descRow := first[soilDescriptionRow]
	var keep []int
	for j, label := range portRow {
		label = strings.TrimSpace(label)
		if j == 0 || ports.Has(label) {
			keep = append(keep, j)
			export.Ports = append(export.Ports, label)
			export.Descriptions = append(export.Descriptions, cellAt(descRow, j))
		}
	}

	for i, path := range sorted {
		records := first
		if i > 0 {
			if records, err = ReadDelimited(path); err != nil {
				return nil, err
			}
		}
		if len(records) <= soilHeaderRows {
			continue
		}
		for _, rec := range records[soilHeaderRows:] {
			row := make([]string, len(keep))
			for k, j := range keep {
				row[k] = cellAt(rec, j)
			}
			export.Rows = append(export.Rows, row)
		}
	}

	return export, nil
}

// NormalizeSoil names the retained columns and parses the data rows.
// Column 0 becomes the index, parsed with the first layout that matches.
// Other columns are named {sensor}_{variable}_{unit} and coerced to float.
func NormalizeSoil(export *DataloggerExport, ports domain.PortMap, layouts []string) (*domain.Table, error) {
	if len(export.Ports) == 0 {
		return domain.NewTable(nil), nil
	}

	columns := make([]string, 0, len(export.Ports)-1)
	for k := 1; k < len(export.Ports); k++ {
		sensor, ok := ports.Sensor(export.Ports[k])
		if !ok || sensor == "" {
			return nil, export.annotate(apperrors.NewSchemaError(fmt.Sprintf("port %q has no sensor", export.Ports[k]), nil))
		}
		name, err := SoilColumnName(sensor, export.Descriptions[k])
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				export.annotate(appErr)
			}
			return nil, err
		}
		columns = append(columns, name)
	}

	table := domain.NewTable(columns)
	values := make([]float64, len(columns))
	for i, row := range export.Rows {
		ts, err := ParseTimestamp(row[0], layouts)
		if err != nil {
			return nil, export.annotate(apperrors.NewParsingError(fmt.Sprintf("invalid timestamp in data row %d", i+1), err))
		}
		for k := range values {
			values[k] = ParseNumeric(row[k+1])
		}
		table.Append(ts, values)
	}

	slog.Debug("Soil table normalized",
		slog.Int("files", len(export.Files)),
		slog.Int("rows", table.Len()),
		slog.Any("columns", table.Columns))

	return table, nil
}

// annotate names the device and its source files on err
func (e *DataloggerExport) annotate(err *apperrors.AppError) *apperrors.AppError {
	if len(e.Ports) > 0 {
		err = err.WithContext("device", e.Ports[0])
	}
	if len(e.Files) > 0 {
		err = err.WithContext("files", e.Files)
	}
	return err
}

// ParseTimestamp parses s with each layout in turn; the first match wins
func ParseTimestamp(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q matches none of %d layouts", s, len(layouts))
}
