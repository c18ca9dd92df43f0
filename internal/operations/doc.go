// Package operations runs the monitoring pipeline as a sequence of stages.
//
// Four stages are registered by RegisterPipeline:
//
//   - format_piezometers: piezometer workbooks to 01_formatted/piezo-data_{name}_formatted.csv
//   - format_soil: datalogger exports, one table per device, to 01_formatted/soil-data_{device}_formatted.csv
//   - clean_piezometers: campaign z-score masking to 02_cleaned/{sensor}_cleaned.csv
//   - aggregate_daily: daily means to 03_daily/{sensor}_daily.csv
//
// The Registry orders stages by dependency. The Manager executes them one at a
// time. Inside a stage each sensor or device is processed independently, with
// at most Config.Workers in flight. A sensor that fails is logged and recorded
// in the stage's StageReport; the stage itself still completes. Only a
// stage-level problem (an unusable output directory, cancellation) fails the
// stage and, unless ContinueOnError is set, the run.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	if err := operations.RegisterPipeline(registry, opts); err != nil {
//		return err
//	}
//	manager := operations.NewManager(registry, operations.ConfigFrom(cfg.Pipeline)).
//		WithLogger(logger)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{Stages: operations.FormatStages})
//	fmt.Print(resp.Summary())
package operations
