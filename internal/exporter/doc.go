// Package exporter writes pipeline tables as CSV files.
//
// CSVWriter is the core writer: every file goes to a temporary file in the
// target directory first and is renamed into place on Close, so a failed or
// interrupted run never leaves a truncated output behind.
//
// TableExporter formats domain tables: the first column is "Timestamps",
// missing values are empty cells and floats use their shortest round-trip form.
//
//	exp := exporter.NewTableExporter(paths)
//	err := exp.WriteTimeSeries(paths.CleanedPath("piezo-data_P1"), table)
package exporter
