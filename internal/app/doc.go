// Package app builds the pipeline for one CLI invocation.
//
// NewApplication loads the configuration, initializes the global logger,
// resolves and creates the data directories, loads the catalog, starts
// OpenTelemetry and registers the four stages with an operations.Manager.
// Run executes a command's stages and prints the per-stage summary; Stop
// writes the metrics textfile, flushes telemetry and closes the log file.
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	defer application.Stop(context.Background())
//	_, err = application.Run(ctx, "run", nil, os.Stdout)
package app
