// Package shared holds code used across packages that belongs to no single
// layer. Its testutil subpackage provides a capturing slog handler and
// builders for raw export fixtures (xlsx workbooks and datalogger CSVs).
package shared
