package operations

import (
	"sync"
	"time"
)

// OperationStatus represents the overall operation status
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// OperationState is the state of one pipeline run
type OperationState struct {
	mu sync.RWMutex

	ID        string          `json:"id"`
	Status    OperationStatus `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`

	Steps   map[string]*StepState `json:"steps"`
	reports []*StageReport

	Error error `json:"-"`
}

// NewOperationState creates a new operation state
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.finish(OperationStatusCompleted, nil)
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.finish(OperationStatusFailed, err)
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.finish(OperationStatusCancelled, err)
}

func (p *OperationState) finish(status OperationStatus, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = status
	p.Error = err
}

// GetStatus returns the current status
func (p *OperationState) GetStatus() OperationStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stageID]
}

// SetStage updates the state of a specific Step
func (p *OperationState) SetStage(stageID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stageID] = state
}

// AddReport appends a finished stage report
func (p *OperationState) AddReport(r *StageReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, r)
}

// Reports returns the stage reports in execution order
func (p *OperationState) Reports() []*StageReport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*StageReport, len(p.reports))
	copy(out, p.reports)
	return out
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}
