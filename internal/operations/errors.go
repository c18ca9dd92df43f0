package operations

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeDependency   ErrorType = "dependency"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeFatal        ErrorType = "fatal"
	ErrorTypeNotFound     ErrorType = "not_found"
)

// OperationError is a stage-level failure. Per-sensor failures never become
// OperationErrors; they are collected in the StageReport.
type OperationError struct {
	Type    ErrorType              `json:"type"`
	Step    string                 `json:"step,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates an error for a stage whose inputs or outputs are unusable
func NewValidationError(step, message string) *OperationError {
	return &OperationError{Type: ErrorTypeValidation, Step: step, Message: message}
}

// NewDependencyError creates an error for a stage skipped because dependsOn
// did not complete
func NewDependencyError(step, dependsOn string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeDependency,
		Step:    step,
		Message: fmt.Sprintf("%s did not complete", dependsOn),
		Context: map[string]interface{}{"depends_on": dependsOn},
	}
}

// NewExecutionError wraps a stage failure
func NewExecutionError(step string, cause error) *OperationError {
	return &OperationError{Type: ErrorTypeExecution, Step: step, Message: "step execution failed", Cause: cause}
}

// NewCancellationError creates an error for a run interrupted before step
func NewCancellationError(step string, cause error) *OperationError {
	return &OperationError{Type: ErrorTypeCancellation, Step: step, Message: "operation was cancelled", Cause: cause}
}

// NewFatalError creates an error for a run stopped before completion
func NewFatalError(message string, cause error) *OperationError {
	return &OperationError{Type: ErrorTypeFatal, Message: message, Cause: cause}
}

// NewNotFoundError creates an error for an unknown stage id
func NewNotFoundError(step string) *OperationError {
	return &OperationError{Type: ErrorTypeNotFound, Step: step, Message: "step not registered"}
}

// GetErrorType returns the type of the first OperationError in err's chain,
// ErrorTypeExecution for any other error, and "" for nil
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// WrapError attaches a step to err. OperationErrors keep their type.
func WrapError(err error, step string) *OperationError {
	if err == nil {
		return nil
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Step == "" {
			opErr.Step = step
		}
		return opErr
	}
	return NewExecutionError(step, err)
}
