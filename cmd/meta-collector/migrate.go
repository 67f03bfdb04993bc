package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/meta-collector/internal/storage"
)

func migrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down|status",
		Short:     "Manage database migrations",
		Args:      usageArgs(cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			dbConfig := storage.DefaultConfig(cfg.App.DBPath)
			dbConfig.AutoMigrate = false
			db, err := storage.Open(dbConfig)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			mgr, err := storage.NewMigrationManagerForDB(db)
			if err != nil {
				return err
			}
			defer mgr.Close()

			switch args[0] {
			case "up":
				if err := mgr.Up(); err != nil {
					return err
				}
				fmt.Println("✓ Migrations applied")
			case "down":
				if err := mgr.Down(); err != nil {
					return err
				}
				fmt.Println("✓ Migrations rolled back")
			}

			version, dirty, err := mgr.Version()
			if err != nil {
				return err
			}
			fmt.Printf("Database: %s\n", cfg.App.DBPath)
			fmt.Printf("Schema version: %d", version)
			if dirty {
				fmt.Print(" (dirty)")
			}
			fmt.Println()
			return nil
		},
	}
}
