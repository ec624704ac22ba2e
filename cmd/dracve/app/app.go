// Package app wires the dracve CLI: configuration loading, logger setup,
// cobra command registration and top-level error handling.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/dracve/pkg/logging"
)

// App is the CLI application.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger
}

// New creates the application, loading configuration from all sources.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
	}
	a.setupLogger()
	return a, nil
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Execute runs the dracve CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dracve",
		Short:   "Supply-chain data reconciliation CLI",
		Version: a.version,
		Long: `dracve reconciles supply-chain records from multiple independent,
inconsistently formatted data exports into a single authoritative view of
inventory and open orders, surfacing every place the sources disagree.

Three sources are mandatory (legacy export, spreadsheet, supplier feed);
returns and historical-backup feeds are optional. An optional AI correction
round trip consolidates conflicting records under the
Supplier > Spreadsheet > Legacy > Historical priority.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.dracve.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for LOG_LEVEL=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output")

	rootCmd.SetVersionTemplate("dracve {{.Version}}\n")

	rootCmd.AddCommand(a.NewReconcileCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	a.config.Verbose, _ = cmd.Flags().GetBool("verbose")
	a.config.Quiet, _ = cmd.Flags().GetBool("quiet")
	a.setupLogger()
	return nil
}

// setupLogger configures the global logger from the current config.
func (a *App) setupLogger() {
	logger := logging.NewConsole()
	switch {
	case a.config.Verbose:
		logger = logger.Level(zerolog.DebugLevel)
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case a.config.Quiet:
		logger = logger.Level(zerolog.WarnLevel)
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	logging.SetDefault(logger)
	a.logger = logging.Default()
}

// ContextWithSignals creates a context that is cancelled when the
// application receives an interrupt or termination signal.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// ExitOnError prints an error and exits with status 1. Meant for top-level
// error handling in main.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
