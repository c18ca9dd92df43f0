package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hydrocli/internal/config"
	"hydrocli/internal/dataprocessing"
	apperrors "hydrocli/internal/errors"
	"hydrocli/internal/exporter"
	"hydrocli/internal/files"
	"hydrocli/internal/infrastructure"
	"hydrocli/internal/validation"
	"hydrocli/pkg/contracts/domain"
)

// StageOptions carries what every stage needs
type StageOptions struct {
	Paths   *config.Paths
	Catalog *config.Catalog
	Config  *Config

	PiezometerPattern string
	SoilPattern       string

	Logger  *slog.Logger
	Metrics *infrastructure.PipelineMetrics
	Tracer  trace.Tracer
}

// RegisterPipeline registers the four stages in pipeline order
func RegisterPipeline(registry *Registry, opts *StageOptions) error {
	for _, step := range []Step{
		NewFormatPiezometersStage(opts),
		NewFormatSoilStage(opts),
		NewCleanStage(opts),
		NewDailyStage(opts),
	} {
		if err := registry.Register(step); err != nil {
			return err
		}
	}
	return nil
}

// stageRuntime holds the collaborators shared by every stage
type stageRuntime struct {
	id        string
	opts      *StageOptions
	logger    *slog.Logger
	discovery *files.Discovery
	validator *validation.FileValidator
	tables    *exporter.TableExporter
}

func newStageRuntime(id string, opts *StageOptions) stageRuntime {
	if opts.Config == nil {
		opts.Config = NewConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "pipeline").With(slog.String("stage", id))

	return stageRuntime{
		id:        id,
		opts:      opts,
		logger:    logger,
		discovery: files.NewDiscovery(opts.Paths.DataDir),
		validator: validation.NewFileValidator(logger),
		tables:    exporter.NewTableExporter(opts.Paths),
	}
}

// validateOutput fails the stage when its output directory cannot be written
func (s *stageRuntime) validateOutput(dir string) error {
	return s.validator.ValidateOutputDirectory(dir)
}

// discover lists the files matching pattern in dir. A missing directory is
// the same as an empty one.
func (s *stageRuntime) discover(dir, pattern string) ([]files.FileInfo, error) {
	ok, err := s.validator.ValidateInputDirectory(dir)
	if err != nil || !ok {
		return nil, err
	}
	return s.discovery.FindFilesByPattern(dir, pattern)
}

// announce logs the file listing and records it in the report. It returns
// false when there is nothing to do.
func (s *stageRuntime) announce(ctx context.Context, report *StageReport, found []files.FileInfo) bool {
	report.Discovered = files.PathsOf(found)
	s.opts.Metrics.RecordDiscovered(ctx, s.id, len(found))

	if len(found) == 0 {
		s.logger.InfoContext(ctx, "No files found")
		return false
	}

	s.logger.InfoContext(ctx, "Files identified",
		slog.Int("count", len(found)),
		slog.Int64("bytes", files.TotalSize(found)),
		slog.Any("paths", report.Discovered))
	return true
}

// process runs work for one sensor inside its own span. A failure is logged,
// counted and recorded in the report; it never stops the stage.
func (s *stageRuntime) process(ctx context.Context, report *StageReport, sensor, path string, work func(ctx context.Context, logger *slog.Logger) error) {
	ctx, span := infrastructure.StartSpan(ctx, s.opts.Tracer, s.id+".sensor",
		attribute.String("sensor", sensor),
		attribute.String("path", path))
	defer span.End()

	logger := s.logger.With(slog.String("sensor", sensor))
	logger.InfoContext(ctx, "Processing")

	if err := work(ctx, logger); err != nil {
		f := report.addFailure(sensor, path, err)
		s.opts.Metrics.RecordFailure(ctx, s.id, f.ErrType)
		infrastructure.RecordError(ctx, err)
		attrs := []any{
			slog.String("path", path),
			slog.String("error_type", f.ErrType),
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && len(appErr.Context) > 0 {
			attrs = append(attrs, slog.Any("context", appErr.Context))
		}
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Sensor skipped", attrs...)
	}
}

// write stores t atomically with writeFn and records it in the report
func (s *stageRuntime) write(ctx context.Context, report *StageReport, logger *slog.Logger, path string, t *domain.Table, writeFn func(string, *domain.Table) error) error {
	if err := writeFn(path, t); err != nil {
		return apperrors.NewStorageError("failed to write output", err).WithContext("path", path)
	}
	report.addWritten(path)
	s.opts.Metrics.RecordWritten(ctx, s.id, t.Len())
	infrastructure.AddSpanEvent(ctx, "table.written",
		attribute.String("path", path),
		attribute.Int("rows", t.Len()))
	logger.InfoContext(ctx, "Processed data saved",
		slog.String("path", path),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns)))
	return nil
}

// FormatPiezometersStage converts piezometer workbooks into formatted tables
type FormatPiezometersStage struct {
	BaseStage
	stageRuntime
}

// NewFormatPiezometersStage creates the piezometer formatting stage
func NewFormatPiezometersStage(opts *StageOptions) *FormatPiezometersStage {
	return &FormatPiezometersStage{
		BaseStage:    NewBaseStage(StageIDFormatPiezometers, StageNameFormatPiezometers, nil),
		stageRuntime: newStageRuntime(StageIDFormatPiezometers, opts),
	}
}

// Validate checks the output directory
func (s *FormatPiezometersStage) Validate(state *OperationState) error {
	return s.validateOutput(s.opts.Paths.FormattedDir)
}

// Execute formats every workbook matching the piezometer pattern
func (s *FormatPiezometersStage) Execute(ctx context.Context, state *OperationState, report *StageReport) error {
	found, err := s.discover(s.opts.Paths.RawPiezometersDir, s.opts.PiezometerPattern)
	if err != nil {
		return err
	}
	if !s.announce(ctx, report, found) {
		return nil
	}

	rules := dataprocessing.PiezometerRules{
		Rename: s.opts.Catalog.Piezometer.Rename,
		Drop:   s.opts.Catalog.Piezometer.Drop,
	}

	return forEachLimit(ctx, len(found), s.opts.Config.Workers, func(ctx context.Context, i int) {
		path := found[i].Path
		name, nameErr := dataprocessing.PiezometerName(path)
		sensor := name
		if nameErr != nil {
			sensor = found[i].Name
		}

		s.process(ctx, report, sensor, path, func(ctx context.Context, logger *slog.Logger) error {
			if nameErr != nil {
				return nameErr
			}
			if err := s.validator.ValidateWorkbook(path); err != nil {
				return err
			}
			raw, err := dataprocessing.ReadWorkbook(path, dataprocessing.PiezometerWorkbookOptions())
			if err != nil {
				return err
			}
			table, err := dataprocessing.NormalizePiezometer(raw, rules)
			if err != nil {
				return err
			}
			logger.DebugContext(ctx, "Timestamp index configured", slog.Int("rows", table.Len()))
			return s.write(ctx, report, logger, s.opts.Paths.PiezometerFormattedPath(name), table, s.tables.WriteTimeSeries)
		})
	})
}

// FormatSoilStage concatenates datalogger exports per device and formats them
type FormatSoilStage struct {
	BaseStage
	stageRuntime
}

// NewFormatSoilStage creates the soil formatting stage
func NewFormatSoilStage(opts *StageOptions) *FormatSoilStage {
	return &FormatSoilStage{
		BaseStage:    NewBaseStage(StageIDFormatSoil, StageNameFormatSoil, nil),
		stageRuntime: newStageRuntime(StageIDFormatSoil, opts),
	}
}

// Validate checks the output directory
func (s *FormatSoilStage) Validate(state *OperationState) error {
	return s.validateOutput(s.opts.Paths.FormattedDir)
}

// Execute formats one table per datalogger device
func (s *FormatSoilStage) Execute(ctx context.Context, state *OperationState, report *StageReport) error {
	found, err := s.discover(s.opts.Paths.RawSoilDir, s.opts.SoilPattern)
	if err != nil {
		return err
	}
	if !s.announce(ctx, report, found) {
		return nil
	}

	groups := dataprocessing.GroupDataloggerFiles(files.PathsOf(found))
	devices := make([]string, 0, len(groups))
	for device := range groups {
		devices = append(devices, device)
	}
	sort.Strings(devices)

	s.logger.InfoContext(ctx, "Dataloggers identified", slog.Int("count", len(devices)))
	for _, device := range devices {
		s.logger.InfoContext(ctx, "Datalogger files",
			slog.String("device", device),
			slog.Any("paths", groups[device]))
	}

	portMaps := s.opts.Catalog.PortMaps()
	layouts := s.opts.Catalog.Soil.TimestampLayouts

	return forEachLimit(ctx, len(devices), s.opts.Config.Workers, func(ctx context.Context, i int) {
		device := devices[i]
		ports, ok := portMaps[device]
		if !ok {
			report.addSkipped(device)
			s.logger.WarnContext(ctx, "No port map for datalogger, skipping", slog.String("device", device))
			return
		}

		s.process(ctx, report, device, filepath.Dir(groups[device][0]), func(ctx context.Context, logger *slog.Logger) error {
			for _, p := range groups[device] {
				if err := s.validator.ValidateDelimited(p); err != nil {
					return err
				}
			}

			export, err := dataprocessing.ConcatenateDatalogger(groups[device], ports)
			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "Data concatenated",
				slog.Int("files", len(export.Files)),
				slog.Int("records", len(export.Rows)))

			table, err := dataprocessing.NormalizeSoil(export, ports, layouts)
			if err != nil {
				return err
			}

			if n := table.CheckMonotonic(); n > 0 {
				report.addIndexIssue(device, n)
				if s.opts.Config.StrictIndexOrder {
					return apperrors.NewValidationError(
						fmt.Sprintf("timestamps do not strictly increase at %d positions", n))
				}
				logger.WarnContext(ctx, "Timestamps do not strictly increase",
					slog.Int("positions", n))
			}

			return s.write(ctx, report, logger, s.opts.Paths.SoilFormattedPath(device), table, s.tables.WriteTimeSeries)
		})
	})
}

// CleanStage masks campaign outliers in the formatted piezometer tables
type CleanStage struct {
	BaseStage
	stageRuntime
	csv *exporter.CSVWriter
}

// NewCleanStage creates the outlier cleaning stage
func NewCleanStage(opts *StageOptions) *CleanStage {
	return &CleanStage{
		BaseStage:    NewBaseStage(StageIDClean, StageNameClean, []string{StageIDFormatPiezometers}),
		stageRuntime: newStageRuntime(StageIDClean, opts),
		csv:          exporter.NewCSVWriter(opts.Paths),
	}
}

// Validate checks the output directory
func (s *CleanStage) Validate(state *OperationState) error {
	return s.validateOutput(s.opts.Paths.CleanedDir)
}

// Execute runs the campaign fold over every formatted piezometer table
func (s *CleanStage) Execute(ctx context.Context, state *OperationState, report *StageReport) error {
	pattern := config.PiezometerPrefix + "*_" + config.SuffixFormatted + config.OutputExt
	found, err := s.discover(s.opts.Paths.FormattedDir, pattern)
	if err != nil {
		return err
	}
	if !s.announce(ctx, report, found) {
		return nil
	}

	campaigns := s.opts.Catalog.CampaignList()
	threshold := s.opts.Catalog.Outliers.ZScoreThreshold
	missing := s.opts.Catalog.MissingTokens()

	err = forEachLimit(ctx, len(found), s.opts.Config.Workers, func(ctx context.Context, i int) {
		path := found[i].Path
		sensor := config.SensorNameFromOutput(path)

		s.process(ctx, report, sensor, path, func(ctx context.Context, logger *slog.Logger) error {
			table, err := dataprocessing.ReadTableCSV(path, missing)
			if err != nil {
				return err
			}

			cleaned, results := dataprocessing.FilterCampaigns(table, campaigns, threshold)
			records := make([]OutlierRecord, 0, len(results))
			for _, res := range results {
				records = append(records, OutlierRecord{
					Sensor:   sensor,
					Campaign: res.Campaign.Name,
					Rows:     res.Rows,
					Removed:  res.Outliers,
					Skipped:  res.Skipped,
				})
				s.logCampaign(ctx, logger, res)
				s.opts.Metrics.RecordOutliers(ctx, res.Campaign.Name, res.Outliers)
			}
			report.addOutliers(records...)

			return s.write(ctx, report, logger, s.opts.Paths.CleanedPath(sensor), cleaned, s.tables.WriteTimeSeries)
		})
	})
	if err != nil {
		return err
	}
	return s.writeSummary(ctx, report)
}

// writeSummary writes one row per sensor and campaign with the rows inside
// the window and the rows masked
func (s *CleanStage) writeSummary(ctx context.Context, report *StageReport) error {
	report.mu.Lock()
	outliers := make([]OutlierRecord, len(report.Outliers))
	copy(outliers, report.Outliers)
	report.mu.Unlock()

	if len(outliers) == 0 {
		return nil
	}
	sort.SliceStable(outliers, func(i, j int) bool { return outliers[i].Sensor < outliers[j].Sensor })

	records := make([][]string, len(outliers))
	for i, o := range outliers {
		records[i] = []string{o.Sensor, o.Campaign, strconv.Itoa(o.Rows), strconv.Itoa(o.Removed), strconv.FormatBool(o.Skipped)}
	}

	path := s.opts.Paths.OutlierSummaryPath()
	if err := s.csv.WriteSimpleCSV(path, []string{"sensor", "campaign", "rows", "removed", "skipped"}, records); err != nil {
		return apperrors.NewStorageError("failed to write outlier summary", err).WithContext("path", path)
	}
	s.logger.InfoContext(ctx, "Outlier summary saved",
		slog.String("path", path),
		slog.Int("removed", report.OutliersRemoved()))
	return nil
}

func (s *CleanStage) logCampaign(ctx context.Context, logger *slog.Logger, res dataprocessing.CampaignResult) {
	logger = logger.With(slog.String("campaign", res.Campaign.Name))
	switch {
	case res.Skipped:
		logger.DebugContext(ctx, "No records in campaign window")
	case res.Outliers == 0:
		logger.InfoContext(ctx, "No outliers found", slog.Int("rows", res.Rows))
	default:
		logger.InfoContext(ctx, "Outlier records removed",
			slog.Int("outliers", res.Outliers),
			slog.Int("rows", res.Rows))
		infrastructure.AddSpanEvent(ctx, "outliers.removed",
			attribute.String("campaign", res.Campaign.Name),
			attribute.Int("rows", res.Outliers))
	}
}

// DailyStage resamples cleaned piezometer and formatted soil tables to daily means
type DailyStage struct {
	BaseStage
	stageRuntime
}

// NewDailyStage creates the daily aggregation stage
func NewDailyStage(opts *StageOptions) *DailyStage {
	return &DailyStage{
		BaseStage:    NewBaseStage(StageIDDaily, StageNameDaily, []string{StageIDClean, StageIDFormatSoil}),
		stageRuntime: newStageRuntime(StageIDDaily, opts),
	}
}

// Validate checks the output directory
func (s *DailyStage) Validate(state *OperationState) error {
	return s.validateOutput(s.opts.Paths.DailyDir)
}

// Execute aggregates every cleaned piezometer table and formatted soil table
func (s *DailyStage) Execute(ctx context.Context, state *OperationState, report *StageReport) error {
	piezo, err := s.discover(s.opts.Paths.CleanedDir, "*_"+config.SuffixCleaned+config.OutputExt)
	if err != nil {
		return err
	}
	soil, err := s.discover(s.opts.Paths.FormattedDir, config.SoilPrefix+"*_"+config.SuffixFormatted+config.OutputExt)
	if err != nil {
		return err
	}
	found := append(piezo, soil...)
	if !s.announce(ctx, report, found) {
		return nil
	}

	missing := s.opts.Catalog.MissingTokens()

	return forEachLimit(ctx, len(found), s.opts.Config.Workers, func(ctx context.Context, i int) {
		path := found[i].Path
		sensor := config.SensorNameFromOutput(path)

		s.process(ctx, report, sensor, path, func(ctx context.Context, logger *slog.Logger) error {
			table, err := dataprocessing.ReadTableCSV(path, missing)
			if err != nil {
				return err
			}
			start := time.Now()
			daily := dataprocessing.AggregateDaily(table)
			logger.DebugContext(ctx, "Data aggregated daily",
				slog.Int("days", daily.Len()),
				slog.Duration("elapsed", time.Since(start)))
			return s.write(ctx, report, logger, s.opts.Paths.DailyPath(sensor), daily, s.tables.WriteDaily)
		})
	})
}
