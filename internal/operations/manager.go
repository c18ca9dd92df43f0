package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hydrocli/internal/infrastructure"
)

// Manager runs registered stages in dependency order
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	metrics  *infrastructure.PipelineMetrics
	tracer   trace.Tracer
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, config *Config) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	return &Manager{
		registry: registry,
		config:   config,
		logger:   slog.Default(),
	}
}

// WithLogger sets the manager's logger
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithTelemetry sets the metrics and tracer used for stage spans and durations
func (m *Manager) WithTelemetry(metrics *infrastructure.PipelineMetrics, tracer trace.Tracer) *Manager {
	m.metrics = metrics
	m.tracer = tracer
	return m
}

// Execute runs the requested stages. The returned response is never nil.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.RunIDFromContext(ctx)
	}
	if req.ID == "" {
		req.ID = infrastructure.NewRunID()
	}
	ctx = infrastructure.WithRunID(ctx, req.ID)

	state := NewOperationState(req.ID)

	steps, err := m.registry.Resolve(req.Stages)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to resolve stages", slog.String("error", err.Error()))
		state.Fail(err)
		return m.createResponse(state), err
	}

	ids := make([]string, len(steps))
	for i, step := range steps {
		ids[i] = step.ID()
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := infrastructure.StartSpan(ctx, m.tracer, "pipeline.execute",
		attribute.String("operation.id", req.ID),
		attribute.StringSlice("operation.stages", ids))
	defer span.End()

	m.logger.InfoContext(ctx, "Pipeline started", slog.Any("stages", ids))
	state.Start()

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}

	m.logger.InfoContext(ctx, "Pipeline finished",
		slog.String("status", string(state.GetStatus())),
		slog.Duration("duration", state.Duration()))

	return m.createResponse(state), err
}

// executeSequential runs steps one after the other. A stage-level failure
// stops the run unless ContinueOnError is set; stages that depend on a
// failed or skipped stage are skipped.
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	var firstErr error

	for i, step := range steps {
		stepState := state.GetStage(step.ID())

		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], func(id string) error {
				return NewCancellationError(id, err)
			})
			return NewCancellationError(step.ID(), err)
		}

		if dep := m.blockedBy(state, step); dep != "" {
			stepState.Skip(NewDependencyError(step.ID(), dep))
			m.logger.WarnContext(ctx, "Stage skipped",
				slog.String("stage", step.ID()),
				slog.String("dependency", dep))
			continue
		}

		m.logger.InfoContext(ctx, "Executing stage",
			slog.String("stage", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			if GetErrorType(err) == ErrorTypeCancellation {
				m.skipRemaining(state, steps[i+1:], func(id string) error {
					return NewCancellationError(id, err)
				})
				return err
			}
			if !m.config.ContinueOnError {
				stopped := NewFatalError(fmt.Sprintf("run stopped after %s failed", step.ID()), err)
				m.skipRemaining(state, steps[i+1:], func(string) error { return stopped })
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
			m.logger.WarnContext(ctx, "Stage failed, continuing",
				slog.String("stage", step.ID()),
				slog.String("error", err.Error()))
		}
	}

	return firstErr
}

// executeStage validates and runs one step inside its own span
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())

	ctx, span := infrastructure.StartSpan(ctx, m.tracer, "stage."+step.ID(),
		attribute.String("stage", step.ID()))
	defer span.End()

	if err := step.Validate(state); err != nil {
		vErr := NewValidationError(step.ID(), err.Error())
		vErr.Cause = err
		stepState.Fail(vErr)
		infrastructure.RecordError(ctx, vErr)
		m.logger.ErrorContext(ctx, "Stage validation failed",
			slog.String("stage", step.ID()),
			slog.String("error", err.Error()))
		return vErr
	}

	report := NewStageReport(step.ID())
	stepState.Start()
	start := time.Now()
	err := step.Execute(ctx, state, report)
	duration := time.Since(start)

	report.finish()
	state.AddReport(report)
	m.metrics.RecordStage(ctx, step.ID(), duration, err == nil)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = NewCancellationError(step.ID(), err)
		} else {
			err = WrapError(err, step.ID())
		}
		stepState.Fail(err)
		infrastructure.RecordError(ctx, err)
		m.logger.ErrorContext(ctx, "Stage failed",
			slog.String("stage", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	stepState.Complete(report.String())
	infrastructure.SetSpanAttributes(ctx,
		attribute.Int("files.discovered", len(report.Discovered)),
		attribute.Int("files.written", len(report.Written)),
		attribute.Int("files.failed", len(report.Failures)))
	m.logger.InfoContext(ctx, "Stage completed",
		slog.String("stage", step.ID()),
		slog.Int("discovered", len(report.Discovered)),
		slog.Int("written", len(report.Written)),
		slog.Int("failed", len(report.Failures)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Duration("duration", duration))
	return nil
}

// blockedBy returns the first dependency of step that ran in this operation
// and did not complete. Dependencies outside the operation do not block.
func (m *Manager) blockedBy(state *OperationState, step Step) string {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			continue
		}
		if depState.GetStatus() != StepStatusCompleted {
			return dep
		}
	}
	return ""
}

// skipRemaining marks every pending step in steps as skipped with the error
// reason returns for it
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason func(id string) error) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason(step.ID()))
		}
	}
}

func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.GetStatus(),
		Duration: state.Duration(),
		Steps:    state.Steps,
		Reports:  state.Reports(),
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
