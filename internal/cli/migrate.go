package cli

import (
	"github.com/amirasaad/brokerage/infra/migrations"
	"github.com/spf13/cobra"
)

var migrateDownSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the embedded schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close() //nolint:errcheck

		if err := migrations.Up(sqlDB, logger); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Long: `Roll back the given number of migrations. Without --steps every
migration is rolled back and all data is lost.

Example:
  brokerage migrate down --steps 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close() //nolint:errcheck

		if migrateDownSteps <= 0 {
			_, _ = warnColor.Fprintln(cmd.ErrOrStderr(), "rolling back every migration")
		}
		if err := migrations.Down(sqlDB, migrateDownSteps, logger); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "rolled back")
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 0,
		"number of migrations to roll back (0 rolls back all)")
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}
