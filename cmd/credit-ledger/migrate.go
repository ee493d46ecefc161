package main

import (
	"github.com/LavaJover/credit-ledger/internal/infrastructure/migrate"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

var rollbackSteps int

func init() {
	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the ledger database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := postgres.OpenDB(cfg)
		if err != nil {
			return err
		}
		return migrate.RunMigrations(db, cfg.LedgerDB.MigrationsPath, log)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := postgres.OpenDB(cfg)
		if err != nil {
			return err
		}
		return migrate.RollbackMigrations(db, cfg.LedgerDB.MigrationsPath, rollbackSteps, log)
	},
}
