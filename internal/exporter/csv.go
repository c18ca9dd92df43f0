package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"hydrocli/internal/config"
)

// CSVWriter provides CSV export functionality. Every file is written to a
// temporary file in the target directory and renamed into place, so readers
// never observe a partial file.
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	stream, err := w.createStream(filePath, options.Headers, options.BOMPrefix)
	if err != nil {
		return err
	}

	for i, record := range options.Records {
		if err := stream.WriteRecord(record); err != nil {
			stream.Abort()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return stream.Close()
}

// WriteSimpleCSV writes a simple CSV file with headers and records
func (w *CSVWriter) WriteSimpleCSV(filePath string, headers []string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers: headers,
		Records: records,
	})
}

// StreamWriter provides streaming CSV writing for large datasets.
// Nothing is visible at the target path until Close succeeds.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	target string
	done   bool
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	return w.createStream(filePath, headers, false)
}

func (w *CSVWriter) createStream(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	s := &StreamWriter{
		file:   file,
		writer: csv.NewWriter(file),
		target: fullPath,
	}

	if bom {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			s.Abort()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	if len(headers) > 0 {
		if err := s.writer.Write(headers); err != nil {
			s.Abort()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return s, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Path returns the final destination of the stream
func (s *StreamWriter) Path() string {
	return s.target
}

// Close flushes the stream and moves it to its destination
func (s *StreamWriter) Close() error {
	if s.done {
		return nil
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.Abort()
		return err
	}
	if err := s.file.Close(); err != nil {
		os.Remove(s.file.Name())
		s.done = true
		return err
	}
	s.done = true
	if err := os.Chmod(s.file.Name(), 0644); err != nil {
		os.Remove(s.file.Name())
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(s.file.Name(), s.target); err != nil {
		os.Remove(s.file.Name())
		return fmt.Errorf("failed to move %s into place: %w", s.target, err)
	}
	return nil
}

// Abort discards everything written so far
func (s *StreamWriter) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.file.Close()
	os.Remove(s.file.Name())
}

// resolvePath resolves a relative path against the processed data directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return filepath.Join(w.paths.ProcessedDir, filePath)
}
