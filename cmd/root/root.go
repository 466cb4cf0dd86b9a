// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/spendwise/internal/config"
	"fjacquet/spendwise/internal/container"

	"github.com/spf13/cobra"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigFile string
	UserID     string
	Database   string
	LogLevel   string
}

var (
	// Flags holds the parsed persistent flags.
	Flags = GlobalFlags{}

	app *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "spendwise",
		Short: "Track personal spending: accounts, categories, rules and CSV imports.",
		Long: `spendwise keeps bank accounts and their transactions in a local SQLite
database. Bank CSV exports are imported with automatic column detection,
and transactions are categorized by user-defined rules.

The same data is served as a JSON API by the serve command.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	Cmd.PersistentFlags().StringVarP(&Flags.ConfigFile, "config", "c", "", "Config file (default: $HOME/.spendwise/config.yaml)")
	Cmd.PersistentFlags().StringVarP(&Flags.UserID, "user", "u", "", "User to act as (overrides user.default_id)")
	Cmd.PersistentFlags().StringVar(&Flags.Database, "db", "", "SQLite database path (overrides database.path)")
	Cmd.PersistentFlags().StringVar(&Flags.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
}

// App returns the container built for the running command.
func App() *container.Container {
	return app
}

// UserID is the user the running command acts as.
func UserID() string {
	return app.UserID()
}

func setup(cmd *cobra.Command, args []string) error {
	if _, err := config.LoadEnv(); err != nil {
		return err
	}

	cfg, err := config.InitializeConfig(Flags.ConfigFile)
	if err != nil {
		return err
	}
	if Flags.UserID != "" {
		cfg.User.DefaultID = Flags.UserID
	}
	if Flags.Database != "" {
		cfg.Database.Path = Flags.Database
	}
	if Flags.LogLevel != "" {
		cfg.Log.Level = Flags.LogLevel
	}

	c, err := container.NewContainer(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	app = c
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if app == nil {
		return
	}
	if err := app.Close(); err != nil {
		app.GetLogger().WithError(err).Warn("Failed to close application")
	}
	app = nil
}
