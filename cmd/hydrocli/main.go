package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hydrocli/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Environmental monitoring pipeline for piezometer and soil sensor data",
	Long: `hydrocli formats raw piezometer workbooks and soil datalogger exports,
masks outliers inside field campaign windows and aggregates every sensor
to daily means. Configuration is read from HYDRO_* environment variables,
an optional .env file and an optional hydrocli.yaml.`,
	Version:       config.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
