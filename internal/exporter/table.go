package exporter

import (
	"fmt"
	"log/slog"

	"hydrocli/internal/config"
	"hydrocli/pkg/contracts/domain"
)

// TableExporter writes time-indexed tables as CSV: a Timestamps column
// followed by one column per channel.
type TableExporter struct {
	writer *CSVWriter
}

// NewTableExporter creates a table exporter
func NewTableExporter(paths *config.Paths) *TableExporter {
	return &TableExporter{writer: NewCSVWriter(paths)}
}

// WriteTable writes t to filePath, formatting the index with layout.
// Rows are written in table order; a repeated timestamp is written as is.
func (e *TableExporter) WriteTable(filePath string, t *domain.Table, layout string) error {
	if err := t.CheckShape(); err != nil {
		return fmt.Errorf("refusing to write %s: %w", filePath, err)
	}

	stream, err := e.writer.CreateStreamWriter(filePath, e.getHeaders(t))
	if err != nil {
		return err
	}

	record := make([]string, len(t.Columns)+1)
	for i, ts := range t.Index {
		record[0] = formatTime(ts, layout)
		for j, v := range t.Rows[i] {
			record[j+1] = formatFloat(v)
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Abort()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := stream.Close(); err != nil {
		return err
	}

	slog.Debug("Table written",
		slog.String("path", stream.Path()),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns)))
	return nil
}

// WriteTimeSeries writes a table with full timestamps
func (e *TableExporter) WriteTimeSeries(filePath string, t *domain.Table) error {
	return e.WriteTable(filePath, t, config.TimestampLayout)
}

// WriteDaily writes a daily table with date-only timestamps
func (e *TableExporter) WriteDaily(filePath string, t *domain.Table) error {
	return e.WriteTable(filePath, t, config.DailyLayout)
}

func (e *TableExporter) getHeaders(t *domain.Table) []string {
	headers := make([]string, 0, len(t.Columns)+1)
	headers = append(headers, domain.TimestampColumn)
	return append(headers, t.Columns...)
}
