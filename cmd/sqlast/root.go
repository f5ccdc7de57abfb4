package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zoobzio/sqlast"
	"github.com/zoobzio/sqlast/dialects"
	"github.com/zoobzio/sqlast/internal/config"
	"github.com/zoobzio/sqlast/internal/log"
)

// Version information set via ldflags at build time
var Version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sqlast",
		Short:         "Translate SQL ASTs into dialect SQL",
		Long:          `Translates YAML query documents into the SQL of DB2, HSQL, PostgreSQL, SQLite, MariaDB or SQL Server.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("sqlast version {{.Version}}\n")

	root.PersistentFlags().String("config", "", "Configuration file")
	root.PersistentFlags().StringP("dialect", "d", "", "Target dialect (overrides config)")
	root.PersistentFlags().String("dialect-version", "", "Target dialect version (overrides config)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newTranslateCmd(), newCapabilitiesCmd(), newDialectsCmd())
	return root
}

// loadConfig merges the config file with the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if d, _ := cmd.Flags().GetString("dialect"); d != "" {
		cfg.Dialect = d
		if !cmd.Flags().Changed("dialect-version") {
			cfg.Version = ""
		}
	}
	if v, _ := cmd.Flags().GetString("dialect-version"); v != "" {
		cfg.Version = v
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.Log.Level = l
	}
	return cfg, nil
}

// openDialect opens the configured dialect with a logger writing to stderr.
func openDialect(cmd *cobra.Command) (sqlast.Dialect, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(cmd.ErrOrStderr(), cfg.Log)
	d, err := dialects.Open(cfg.Dialect, cfg.Version, dialects.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return d, logger, nil
}
