package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewValidationError("campaign list is empty"),
			wantMessage: "[VALIDATION] campaign list is empty",
		},
		{
			name:        "error with cause",
			appError:    NewParsingError("invalid timestamp in row 3", fmt.Errorf("bad month")),
			wantMessage: "[PARSING] invalid timestamp in row 3: bad month",
		},
		{
			name:        "not found",
			appError:    NewNotFoundError("port map for z6-99999"),
			wantMessage: "[NOT_FOUND] port map for z6-99999 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("write failed", cause)

	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("sensor P1: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewSchemaError("missing column", nil).
		WithContext("column", "Date").
		WithContext("file", "P1_COMPENSADA.xlsx")

	assert.Equal(t, "Date", err.Context["column"])
	assert.Equal(t, "P1_COMPENSADA.xlsx", err.Context["file"])

	bare := &AppError{Type: ErrTypeConfig}
	bare.WithContext("key", 1)
	assert.Equal(t, 1, bare.Context["key"])
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("device z6-25818: %w", NewSchemaError("header has no unit", nil))

	assert.True(t, IsType(err, ErrTypeSchema))
	assert.False(t, IsType(err, ErrTypeParsing))
	assert.False(t, IsType(errors.New("plain"), ErrTypeSchema))
	assert.False(t, IsType(nil, ErrTypeSchema))
}
