package main

import (
	"context"

	"github.com/spf13/cobra"

	"authapi/internal/config"
)

func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Create the database if it does not exist and apply all pending migrations.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.StorageDriver != config.StorageDriverPostgres {
		cmd.Println("Nothing to migrate for the", cfg.StorageDriver, "storage driver")
		return nil
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := runMigrations(ctx, database, logger); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}
