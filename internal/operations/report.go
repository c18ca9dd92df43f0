package operations

import (
	"fmt"
	"sort"
	"sync"

	apperrors "hydrocli/internal/errors"
)

// SensorFailure records one sensor or device that produced no output
type SensorFailure struct {
	Sensor  string `json:"sensor"`
	Path    string `json:"path,omitempty"`
	ErrType string `json:"error_type"`
	Err     error  `json:"-"`
}

// Error returns the failure message
func (f SensorFailure) Error() string {
	if f.Err == nil {
		return f.Sensor
	}
	return fmt.Sprintf("%s: %v", f.Sensor, f.Err)
}

// OutlierRecord is the outcome of one campaign on one sensor
type OutlierRecord struct {
	Sensor   string `json:"sensor"`
	Campaign string `json:"campaign"`
	Rows     int    `json:"rows"`
	Removed  int    `json:"removed"`
	Skipped  bool   `json:"skipped"`
}

// StageReport collects what a stage did. It is filled concurrently by the
// per-sensor workers and sorted when the stage finishes.
type StageReport struct {
	mu sync.Mutex

	Stage       string          `json:"stage"`
	Discovered  []string        `json:"discovered"`
	Written     []string        `json:"written"`
	Skipped     []string        `json:"skipped,omitempty"`
	Failures    []SensorFailure `json:"failures,omitempty"`
	Outliers    []OutlierRecord `json:"outliers,omitempty"`
	IndexIssues map[string]int  `json:"index_issues,omitempty"`
}

// NewStageReport creates an empty report for stage
func NewStageReport(stage string) *StageReport {
	return &StageReport{Stage: stage}
}

func (r *StageReport) addWritten(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Written = append(r.Written, path)
}

func (r *StageReport) addSkipped(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped = append(r.Skipped, name)
}

func (r *StageReport) addFailure(sensor, path string, err error) SensorFailure {
	f := SensorFailure{Sensor: sensor, Path: path, ErrType: errorTypeOf(err), Err: err}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, f)
	return f
}

func (r *StageReport) addOutliers(records ...OutlierRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outliers = append(r.Outliers, records...)
}

func (r *StageReport) addIndexIssue(device string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.IndexIssues == nil {
		r.IndexIssues = make(map[string]int)
	}
	r.IndexIssues[device] = n
}

// finish orders the collected entries so reports do not depend on worker scheduling
func (r *StageReport) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.Strings(r.Written)
	sort.Strings(r.Skipped)
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].Sensor < r.Failures[j].Sensor })
	sort.SliceStable(r.Outliers, func(i, j int) bool { return r.Outliers[i].Sensor < r.Outliers[j].Sensor })
}

// OutliersRemoved returns the number of rows masked across all sensors and campaigns
func (r *StageReport) OutliersRemoved() int {
	n := 0
	for _, o := range r.Outliers {
		n += o.Removed
	}
	return n
}

// String returns the one-line summary printed by the CLI
func (r *StageReport) String() string {
	s := fmt.Sprintf("%s: %d discovered, %d written, %d failed",
		r.Stage, len(r.Discovered), len(r.Written), len(r.Failures))
	if len(r.Skipped) > 0 {
		s += fmt.Sprintf(", %d skipped", len(r.Skipped))
	}
	if r.Stage == StageIDClean {
		s += fmt.Sprintf(", %d outliers removed", r.OutliersRemoved())
	}
	return s
}

// errorTypeOf labels err for metrics: the AppError type when there is one,
// otherwise the operation error type
func errorTypeOf(err error) string {
	for _, t := range []apperrors.ErrorType{
		apperrors.ErrTypeParsing,
		apperrors.ErrTypeSchema,
		apperrors.ErrTypeStorage,
		apperrors.ErrTypeValidation,
		apperrors.ErrTypeNotFound,
		apperrors.ErrTypeConfig,
	} {
		if apperrors.IsType(err, t) {
			return string(t)
		}
	}
	return string(GetErrorType(err))
}
