package testutil

import (
	"context"
	"sync"

	"hydrocli/internal/operations"
)

// MockStage is a configurable Step for manager and registry tests
type MockStage struct {
	IDValue           string
	NameValue         string
	DependenciesValue []string

	ExecuteFunc  func(ctx context.Context, state *operations.OperationState, report *operations.StageReport) error
	ValidateFunc func(state *operations.OperationState) error

	mu            sync.Mutex
	executeCalls  int
	validateCalls int
}

// NewMockStage creates a stage that succeeds without doing anything
func NewMockStage(id string, deps ...string) *MockStage {
	return &MockStage{IDValue: id, NameValue: id, DependenciesValue: deps}
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	return m.NameValue
}

// GetDependencies returns the step dependencies
func (m *MockStage) GetDependencies() []string {
	if m.DependenciesValue == nil {
		return []string{}
	}
	return m.DependenciesValue
}

// Execute records the call and runs ExecuteFunc when set
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState, report *operations.StageReport) error {
	m.mu.Lock()
	m.executeCalls++
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state, report)
	}
	return nil
}

// Validate records the call and runs ValidateFunc when set
func (m *MockStage) Validate(state *operations.OperationState) error {
	m.mu.Lock()
	m.validateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// ExecuteCalls returns how many times Execute ran
func (m *MockStage) ExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeCalls
}

// ValidateCalls returns how many times Validate ran
func (m *MockStage) ValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateCalls
}

// FailingStage returns a stage whose Execute returns err
func FailingStage(id string, err error, deps ...string) *MockStage {
	m := NewMockStage(id, deps...)
	m.ExecuteFunc = func(context.Context, *operations.OperationState, *operations.StageReport) error {
		return err
	}
	return m
}

// RecordingStage returns a stage that appends its ID to order when it runs
func RecordingStage(id string, order *[]string, deps ...string) *MockStage {
	m := NewMockStage(id, deps...)
	m.ExecuteFunc = func(context.Context, *operations.OperationState, *operations.StageReport) error {
		*order = append(*order, id)
		return nil
	}
	return m
}
