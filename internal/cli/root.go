// Package cli implements the quire command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/elbader17/quire/internal/config"
	"github.com/elbader17/quire/internal/logging"
	"github.com/elbader17/quire/pkg/quire"
)

// Build information, set with -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
	pretty     bool
}

// opener builds the DB a command runs against.
type opener func(cmd *cobra.Command, flags *globalFlags) (*quire.DB, error)

func newRootCmd(open opener) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "quire",
		Short: "Query a spreadsheet backend like a database",
		Long: `quire talks to a spreadsheet exposed through a single Apps Script
endpoint (or the Google Sheets API) and offers select, insert and update
with client-side filtering and projection.

Configuration comes from QUIRE_* environment variables, an optional .env
file and an optional config file. Every data command prints a JSON
envelope of the form {"data": ..., "error": ...}.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Environment file loaded if present")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.pretty, "pretty", false, "Human-readable logs")

	cmd.AddCommand(newHealthCmd(flags, open))
	cmd.AddCommand(newSelectCmd(flags, open))
	cmd.AddCommand(newInsertCmd(flags, open))
	cmd.AddCommand(newUpdateCmd(flags, open))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("quire version %s\n", Version)
			cmd.Printf("Git commit: %s\n", GitCommit)
			cmd.Printf("Build date: %s\n", BuildDate)
		},
	}
}

// openFromConfig loads the env file and configuration and builds a DB
// logging through zerolog.
func openFromConfig(cmd *cobra.Command, flags *globalFlags) (*quire.DB, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", flags.envFile, err)
		}
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if cmd.Flags().Changed("pretty") {
		cfg.Log.Pretty = flags.pretty
	}

	logger := logging.NewWithComponent(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	}, "quire")

	qc, err := cfg.Quire()
	if err != nil {
		return nil, err
	}

	db, err := quire.New(qc, quire.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if !db.Configured() {
		logger.Debug().Str("backend", cfg.Backend).Msg("data backend not configured")
	}
	return db, nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd(openFromConfig).ExecuteContext(context.Background())
}
