package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"hydrocli/internal/config"
	apperrors "hydrocli/internal/errors"
	"hydrocli/internal/infrastructure"
	"hydrocli/internal/operations"
)

// Application wires configuration, logging, telemetry and the stage manager
// for one CLI invocation
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Catalog       *config.Catalog
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Registry      *operations.Registry
	Manager       *operations.Manager
}

// NewApplication loads configuration and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig builds the application from an already loaded configuration
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("failed to ensure directories", err)
	}
	paths.LogPathResolution()

	catalog, err := config.LoadCatalog(cfg.Paths.CatalogFile)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load catalog", err)
	}
	logger.Debug("Catalog loaded",
		slog.Int("campaigns", len(catalog.CampaignList())),
		slog.Int("devices", len(catalog.Soil.Devices)))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	opConfig := operations.ConfigFrom(cfg.Pipeline)
	registry := operations.NewRegistry()
	if err := operations.RegisterPipeline(registry, &operations.StageOptions{
		Paths:             paths,
		Catalog:           catalog,
		Config:            opConfig,
		PiezometerPattern: cfg.Pipeline.PiezometerPattern,
		SoilPattern:       cfg.Pipeline.SoilPattern,
		Logger:            logger,
		Metrics:           metrics,
		Tracer:            otelProviders.Tracer,
	}); err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to register stages: %w", err)
	}
	logger.Debug("Stages registered", slog.Int("count", registry.Count()))

	return &Application{
		Config:        cfg,
		Paths:         paths,
		Catalog:       catalog,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Registry:      registry,
		Manager: operations.NewManager(registry, opConfig).
			WithLogger(logger).
			WithTelemetry(metrics, otelProviders.Tracer),
	}, nil
}

// Run executes stages for command and prints the summary to out. The error
// is non-nil only for a stage-level failure; per-sensor failures are in the
// response.
func (a *Application) Run(ctx context.Context, command string, stages []string, out io.Writer) (*operations.OperationResponse, error) {
	ctx = infrastructure.EnsureRunID(ctx)

	selected := stages
	if len(selected) == 0 {
		selected = a.Registry.ListIDs()
	}
	a.Logger.InfoContext(ctx, "Command started",
		slog.String("command", command),
		slog.Any("stages", selected))

	resp, err := a.Manager.Execute(ctx, operations.OperationRequest{
		ID:     infrastructure.RunIDFromContext(ctx),
		Stages: stages,
	})
	a.Metrics.RecordRunFinished(ctx, command, err == nil)

	if out != nil {
		fmt.Fprint(out, resp.Summary())
	}

	a.Logger.InfoContext(ctx, "Command finished",
		slog.String("command", command),
		slog.String("status", string(resp.Status)),
		slog.Int("sensor_failures", resp.Failed()))
	return resp, err
}

// Stop flushes telemetry and closes the log file
func (a *Application) Stop(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.OTelProviders != nil {
		if path := a.Config.Telemetry.MetricsTextfile; path != "" {
			if err := a.OTelProviders.WriteMetricsTextfile(path); err != nil {
				a.Logger.ErrorContext(ctx, "Failed to write metrics textfile",
					slog.String("path", path),
					slog.String("error", err.Error()))
				keep(err)
			}
		}
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			keep(err)
		}
	}

	a.Logger.DebugContext(ctx, "Application shutdown complete")
	keep(infrastructure.CloseLogFile())
	return firstErr
}
