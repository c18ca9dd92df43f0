package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "hydrocli/internal/errors"
)

// xlsx files are zip containers
var zipMagic = []byte("PK\x03\x04")

// FileValidator checks stage inputs and outputs before any work is done
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory reports whether a raw input directory is usable.
// A missing directory is not an error: there is simply nothing to process,
// and found is false. A path that exists but is not a directory is an error.
func (v *FileValidator) ValidateInputDirectory(dir string) (found bool, err error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Warn("Input directory does not exist",
			slog.String("directory", dir))
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewStorageError("failed to stat input directory", err).
			WithContext("directory", dir)
	}
	if !info.IsDir() {
		return false, apperrors.NewValidationError(fmt.Sprintf("%s is not a directory", dir)).
			WithContext("directory", dir)
	}
	return true, nil
}

// ValidateOutputDirectory ensures an output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory", err).
			WithContext("directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory is not writable", err).
			WithContext("directory", dir)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateWorkbook checks that path is a readable xlsx file and not an
// editor lock file ("~$name.xlsx").
func (v *FileValidator) ValidateWorkbook(path string) error {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		return apperrors.NewValidationError(fmt.Sprintf("%s is a temporary lock file", base)).
			WithContext("path", path)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return apperrors.NewValidationError(fmt.Sprintf("%s is not an xlsx workbook (extension %q)", base, ext)).
			WithContext("path", path)
	}

	head, err := readHead(path, len(zipMagic))
	if err != nil {
		return err
	}
	if !bytes.Equal(head, zipMagic) {
		return apperrors.NewValidationError(fmt.Sprintf("%s is not a zip-based workbook", base)).
			WithContext("path", path)
	}
	return nil
}

// ValidateDelimited checks that path is a readable, non-empty text export
func (v *FileValidator) ValidateDelimited(path string) error {
	head, err := readHead(path, 1)
	if err != nil {
		return err
	}
	if len(head) == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("%s is empty", filepath.Base(path))).
			WithContext("path", path)
	}
	return nil
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("file is not readable", err).WithContext("path", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to stat file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewStorageError("failed to read file", err).WithContext("path", path)
	}
	return buf[:read], nil
}
