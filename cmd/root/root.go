// Package root contains the root command for the application
package root

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fjacquet/rabbit/internal/config"
	"fjacquet/rabbit/internal/container"
	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/store"

	"github.com/spf13/cobra"
)

// ErrAccessDenied is returned when a private profile is used without its password.
var ErrAccessDenied = errors.New("access denied: wrong or missing password for private profile")

var (
	// ConfigFile is an explicit configuration file path
	ConfigFile string
	// LogLevel overrides log.level when set
	LogLevel string
	// DatabasePath overrides database.path when set
	DatabasePath string

	app *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "rabbit",
		Short: "Categorize bank statement exports with keyword rules and a model fallback.",
		Long: `rabbit cleans a bank statement CSV, assigns a spending category to every
expense using the keyword rules of a profile, asks a language model when no rule
matches, and records the descriptions nobody could place as rules to review.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				_ = app.Close()
				app = nil
			}
		},
	}
)

// Init initializes the root command flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default $HOME/.rabbit/config.yaml)")
	Cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&DatabasePath, "db", "", "SQLite database path")
}

func setup(cmd *cobra.Command, args []string) error {
	config.LoadEnv()
	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return err
	}
	if LogLevel != "" {
		cfg.Log.Level = LogLevel
	}
	if DatabasePath != "" {
		cfg.Database.Path = DatabasePath
	}

	c, err := container.NewContainer(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	logging.SetLogger(c.GetLogger())
	app = c
	return nil
}

// App returns the container built for the running command.
func App() *container.Container {
	return app
}

// SetApp replaces the container, for tests driving handlers directly.
func SetApp(c *container.Container) {
	app = c
}

// Authorize checks password against a private profile. Public profiles always pass.
func Authorize(ctx context.Context, s *store.SQLStore, profile, password string) error {
	ok, err := s.VerifyPassword(ctx, profile, password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

// Printf writes to the command output.
func Printf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}
