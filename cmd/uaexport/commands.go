package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"uaexport/internal/api"
	"uaexport/internal/config"
	"uaexport/internal/export"
	"uaexport/internal/ledger"
	"uaexport/internal/results"
)

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	start, err := export.ParseStartDate(args[0])
	if err != nil {
		return err
	}

	confDir, _ := cmd.Flags().GetString("conf-dir")
	settingsPath, _ := cmd.Flags().GetString("settings")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(confDir, settingsPath)
	if err != nil {
		return err
	}

	dataDir := cfg.Settings.DataDir
	if cmd.Flags().Changed("data-dir") {
		dataDir, _ = cmd.Flags().GetString("data-dir")
	}

	creds, err := api.LoadCredentials(ctx, cfg.CredentialsFile)
	if err != nil {
		return err
	}

	client, err := api.NewReportingClient(ctx, creds)
	if err != nil {
		return err
	}

	opts := export.Options{
		DataDir: dataDir,
		Format: export.Format{
			HeaderDelimiter: cfg.Settings.HeaderDelimiter,
			TrailingComma:   cfg.Settings.UseTrailingComma(),
		},
		Out:     out,
		Verbose: verbose,
	}

	if path := ledgerPath(cmd, cfg.Settings); path != "" {
		l, err := ledger.Open(path)
		if err != nil {
			return err
		}
		defer l.Close()
		opts.Ledger = l
	}

	exporter := export.New(cfg.ViewID, export.NewFetcher(client), opts)
	summary, err := exporter.Run(ctx, start)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Done: %d months, %d files written, %d empty, %d rows\n",
		summary.Months, summary.Written, summary.Empty, summary.Rows)
	return nil
}

func ledgerPath(cmd *cobra.Command, settings config.Settings) string {
	if cmd.Flags().Changed("ledger") {
		path, _ := cmd.Flags().GetString("ledger")
		return path
	}
	return settings.LedgerPath
}

func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	confDir, _ := cmd.Flags().GetString("conf-dir")
	settingsPath, _ := cmd.Flags().GetString("settings")
	if settingsPath == "" {
		settingsPath = filepath.Join(confDir, config.SettingsFileName)
	}
	return config.LoadSettings(settingsPath)
}

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show exported months from the run ledger",
		Args:  cobra.NoArgs,
		RunE:  historyCmdHandler,
	}
	historyCmd.Flags().String("format", string(results.FormatTable), "Output format (table, json)")
	historyCmd.Flags().Int("max-width", 40, "Maximum column width")
	return historyCmd
}

func historyCmdHandler(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	path := ledgerPath(cmd, settings)
	if path == "" {
		return fmt.Errorf("no ledger configured - pass --ledger or set ledger_path in %s", config.SettingsFileName)
	}

	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()

	format, _ := cmd.Flags().GetString("format")
	maxWidth, _ := cmd.Flags().GetInt("max-width")

	return results.NewManager(l).Write(cmd.Context(), cmd.OutOrStdout(), results.OutputFormat(format), maxWidth)
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect exporter configuration",
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show discovered credentials, view id and settings",
		Args:  cobra.NoArgs,
		RunE:  configShowCmdHandler,
	}
	configShowCmd.Flags().Bool("validate", false, "Request an access token to check the credentials")

	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file",
		Args:  cobra.NoArgs,
		RunE:  configInitCmdHandler,
	}
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing settings file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	return configCmd
}

func configShowCmdHandler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	confDir, _ := cmd.Flags().GetString("conf-dir")
	settingsPath, _ := cmd.Flags().GetString("settings")

	cfg, err := config.Load(confDir, settingsPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Credentials file: %s\n", cfg.CredentialsFile)
	fmt.Fprintf(out, "View id:          %s\n", cfg.ViewID)
	fmt.Fprintf(out, "Data dir:         %s\n", cfg.Settings.DataDir)
	fmt.Fprintf(out, "Header delimiter: %q\n", cfg.Settings.HeaderDelimiter)
	fmt.Fprintf(out, "Trailing comma:   %t\n", cfg.Settings.UseTrailingComma())
	if path := ledgerPath(cmd, cfg.Settings); path != "" {
		fmt.Fprintf(out, "Ledger:           %s\n", path)
	} else {
		fmt.Fprintln(out, "Ledger:           disabled")
	}

	if validate, _ := cmd.Flags().GetBool("validate"); validate {
		creds, err := api.LoadCredentials(cmd.Context(), cfg.CredentialsFile)
		if err != nil {
			return err
		}
		token, err := api.ValidateCredentials(creds)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Access token valid until %s\n", token.Expiry.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func configInitCmdHandler(cmd *cobra.Command, args []string) error {
	confDir, _ := cmd.Flags().GetString("conf-dir")
	settingsPath, _ := cmd.Flags().GetString("settings")
	if settingsPath == "" {
		settingsPath = filepath.Join(confDir, config.SettingsFileName)
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if exists, err := config.FileExists(settingsPath); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("%s already exists - pass --force to overwrite", settingsPath)
		}
	}

	if err := config.SaveSettings(settingsPath, config.DefaultSettings()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", settingsPath)
	return nil
}
