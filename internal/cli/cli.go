// Package cli implements the brokerage maintenance command line: schema
// migrations, staff provisioning and demo data.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/amirasaad/brokerage/infra"
	"github.com/amirasaad/brokerage/infra/initializer"
	infrarepo "github.com/amirasaad/brokerage/infra/repository"
	"github.com/amirasaad/brokerage/pkg/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	envFile string
	verbose bool

	cfg    *config.App
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "brokerage",
		Short: "Maintenance tool for the brokerage back-office",
		Long: `brokerage manages the back-office database: it applies schema
migrations, provisions staff accounts and fills an empty installation with
demo catalogue data.

Settings are read from the same environment (or .env file) as the API server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// ExecuteContext runs the root command until ctx is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"environment file to load settings from")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log at debug level")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(staffCmd)
	rootCmd.AddCommand(seedCmd)
}

func initConfig(logOut io.Writer) error {
	var err error
	cfg, err = config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Roles == nil {
		cfg.Roles = config.DefaultRoles()
	}
	logCfg := cfg.Log
	if verbose {
		c := config.Log{Level: -4, Format: "text", Prefix: "[brokerage]"}
		if logCfg != nil {
			c = *logCfg
			c.Level = -4
		}
		logCfg = &c
	}
	logger = initializer.NewLogger(logCfg, logOut)
	slog.SetDefault(logger)
	return nil
}

// openDB connects to the configured database without running migrations.
func openDB() (*gorm.DB, error) {
	return infra.NewDBConnection(cfg.DB, cfg.Env)
}

// openUoW connects to the database for commands that go through services.
func openUoW() (*infrarepo.UoW, func(), error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return infrarepo.NewUoW(db), closeFn, nil
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	keyColor  = color.New(color.FgCyan)
)

func success(w io.Writer, format string, args ...any) {
	_, _ = okColor.Fprint(w, "✔ ")
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

func field(w io.Writer, key string, value any) {
	_, _ = keyColor.Fprintf(w, "  %-16s", key)
	_, _ = fmt.Fprintln(w, value)
}
