package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"hydrocli/internal/config"
)

const (
	ServiceName    = config.AppName
	ServiceVersion = config.AppVersion
	MeterName      = config.AppName
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	TraceExporter  string    // "stdout" or "none"
	TraceWriter    io.Writer // destination for the stdout exporter, stderr when nil
	EnableMetrics  bool
}

// OTelProviders holds the OpenTelemetry providers for one run. Tracer and
// Meter are never nil; they are no-ops when the matching signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Logger         *slog.Logger
}

// DefaultOTelConfig returns tracing off and metrics on
func DefaultOTelConfig() *OTelConfig {
	return OTelConfigFrom(config.Default().Telemetry)
}

// OTelConfigFrom maps the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	exporter := cfg.TraceExporter
	if exporter == "" {
		exporter = "none"
	}
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		TraceExporter:  exporter,
		EnableMetrics:  cfg.MetricsEnabled,
	}
}

// InitializeOTel sets up tracing and metrics for a pipeline run
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	res := createResource(cfg)
	providers := &OTelProviders{
		Logger: logger,
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
	}

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

func createResource(cfg *OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.TraceExporter {
	case "none", "":
		return nil
	case "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	w := cfg.TraceWriter
	if w == nil {
		w = os.Stderr
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	return nil
}

// initializeMetrics registers the OTel prometheus exporter on a private
// registry so the textfile only carries pipeline metrics
func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetMeterProvider(mp)

	return nil
}

// WriteMetricsTextfile writes the current metric values in the Prometheus
// text format, for node_exporter's textfile collector. It must be called
// before Shutdown. A no-op when metrics are disabled.
func (p *OTelProviders) WriteMetricsTextfile(path string) error {
	if p.Registry == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Shutdown flushes pending spans and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown errors: %w", err)
	}
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// PipelineMetrics holds the counters and histograms recorded by stages.
// All methods are safe on a nil receiver.
type PipelineMetrics struct {
	FilesDiscovered metric.Int64Counter
	TablesWritten   metric.Int64Counter
	RowsWritten     metric.Int64Counter
	SensorFailures  metric.Int64Counter
	OutliersRemoved metric.Int64Counter
	StageDuration   metric.Float64Histogram
	LastRun         metric.Float64Gauge
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)

	if m.FilesDiscovered, err = meter.Int64Counter(
		"hydrocli_files_discovered",
		metric.WithDescription("Raw or intermediate files found by a stage"),
		metric.WithUnit("{file}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create files discovered counter: %w", err)
	}

	if m.TablesWritten, err = meter.Int64Counter(
		"hydrocli_tables_written",
		metric.WithDescription("Output CSV files written"),
		metric.WithUnit("{file}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create tables written counter: %w", err)
	}

	if m.RowsWritten, err = meter.Int64Counter(
		"hydrocli_rows_written",
		metric.WithDescription("Rows written to output CSV files"),
		metric.WithUnit("{row}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rows counter: %w", err)
	}

	if m.SensorFailures, err = meter.Int64Counter(
		"hydrocli_sensor_failures",
		metric.WithDescription("Sensors skipped because of an error"),
		metric.WithUnit("{sensor}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}

	if m.OutliersRemoved, err = meter.Int64Counter(
		"hydrocli_outliers_removed",
		metric.WithDescription("Rows masked by the campaign outlier filter"),
		metric.WithUnit("{row}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create outliers counter: %w", err)
	}

	if m.StageDuration, err = meter.Float64Histogram(
		"hydrocli_stage_duration",
		metric.WithDescription("Wall time of a pipeline stage"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 30, 60, 300),
	); err != nil {
		return nil, fmt.Errorf("failed to create stage duration histogram: %w", err)
	}

	if m.LastRun, err = meter.Float64Gauge(
		"hydrocli_last_run_timestamp",
		metric.WithDescription("Unix time the last pipeline command finished"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create last run gauge: %w", err)
	}

	return &m, nil
}

// RecordDiscovered counts files found by a stage
func (m *PipelineMetrics) RecordDiscovered(ctx context.Context, stage string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.FilesDiscovered.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordWritten counts one output file and its rows
func (m *PipelineMetrics) RecordWritten(ctx context.Context, stage string, rows int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	m.TablesWritten.Add(ctx, 1, attrs)
	m.RowsWritten.Add(ctx, int64(rows), attrs)
}

// RecordFailure counts a skipped sensor by stage and error type
func (m *PipelineMetrics) RecordFailure(ctx context.Context, stage, errType string) {
	if m == nil {
		return
	}
	m.SensorFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("error_type", errType),
	))
}

// RecordOutliers counts rows masked within one campaign
func (m *PipelineMetrics) RecordOutliers(ctx context.Context, campaign string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.OutliersRemoved.Add(ctx, int64(n), metric.WithAttributes(attribute.String("campaign", campaign)))
}

// RecordStage records a stage's duration and outcome
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, d time.Duration, success bool) {
	if m == nil {
		return
	}
	m.StageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", success),
	))
}

// RecordRunFinished stamps the last-run gauge with now
func (m *PipelineMetrics) RecordRunFinished(ctx context.Context, command string, success bool) {
	if m == nil {
		return
	}
	m.LastRun.Record(ctx, float64(time.Now().Unix()), metric.WithAttributes(
		attribute.String("command", command),
		attribute.Bool("success", success),
	))
}

// StartSpan starts a span on tracer, falling back to the global tracer when nil
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = otel.Tracer(MeterName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// SpanIDFromContext extracts the active span ID, "" when there is none
func SpanIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.SpanID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attrs...)
}
