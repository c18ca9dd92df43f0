package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"hydrocli/internal/app"
	"hydrocli/internal/operations"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Format raw piezometer workbooks and soil datalogger exports",
	Args:  cobra.NoArgs,
	RunE:  runStages("format", operations.FormatStages),
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Mask campaign outliers in the formatted piezometer tables",
	Args:  cobra.NoArgs,
	RunE:  runStages("clean", operations.CleanStages),
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Aggregate cleaned piezometer and formatted soil tables to daily means",
	Args:  cobra.NoArgs,
	RunE:  runStages("daily", operations.DailyStages),
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run format, clean and daily in order",
	Args:  cobra.NoArgs,
	RunE:  runStages("run", nil),
}

func init() {
	rootCmd.AddCommand(formatCmd, cleanCmd, dailyCmd, runCmd)
}

// runStages returns a RunE that executes stages and prints the summary to
// stdout. Per-sensor failures do not change the exit status.
func runStages(command string, stages []string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApplication()
		if err != nil {
			return err
		}

		_, runErr := application.Run(cmd.Context(), command, stages, cmd.OutOrStdout())

		// the run context may already be cancelled; flushing gets its own deadline
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Stop(stopCtx); err != nil && runErr == nil {
			return err
		}
		return runErr
	}
}
