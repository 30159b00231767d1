package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"uaexport/internal/config"
	"uaexport/internal/export"
)

var version = "0.1.0"

const credentialsHelp = `To create a credentials file, follow these instructions:
  https://developers.google.com/analytics/devguides/reporting/core/v4/quickstart/service-go
and save the service account key as conf/<id>.json`

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "uaexport <start-date>",
		Short: "Export Universal Analytics report data to monthly CSV files",
		Long: `uaexport pages through the Analytics Reporting API one month at a time,
starting at the given date and stopping at the present, and writes each month
to data/YYYY-MM-DD.csv. Months without data leave no file behind.

Examples:
  uaexport 2019-01-01
  uaexport 2019-01-01 --data-dir exports --ledger exports/ledger.duckdb
  uaexport history --ledger exports/ledger.duckdb`,
		Version:       version,
		Args:          startDateArgs,
		RunE:          runExport,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("conf-dir", config.DefaultConfDir, "Directory holding <id>.json and view_id.txt")
	rootCmd.PersistentFlags().String("settings", "", "Settings file (default <conf-dir>/"+config.SettingsFileName+")")
	rootCmd.PersistentFlags().String("ledger", "", "DuckDB run ledger path (overrides settings, empty disables)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose progress output")
	rootCmd.Flags().String("data-dir", "", "Output directory for CSV files (default \"data\")")

	rootCmd.AddCommand(newHistoryCmd(), newConfigCmd())
	return rootCmd
}

func startDateArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected exactly one start date, got %d arguments", export.ErrInvalidInput, len(args))
	}
	_, err := export.ParseStartDate(args[0])
	return err
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, export.ErrInvalidInput):
			fmt.Fprintf(os.Stderr, "Usage: uaexport <start-date>\n  where start-date = YYYY-MM-DD\n")
		case errors.Is(err, config.ErrConfigurationMissing):
			fmt.Fprintln(os.Stderr, credentialsHelp)
		}
		os.Exit(1)
	}
}
