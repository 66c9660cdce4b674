package main

import (
	"fmt"

	"github.com/jonathan/aeo-insights/internal/db"
	"github.com/jonathan/aeo-insights/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	RunE:  runMigrate,
}

var migrateList bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateList, "list", false, "List migrations without applying them")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migrateList {
		names, err := db.Migrations()
		if err != nil {
			return err
		}
		for _, name := range names {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, currentConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	names, _ := db.Migrations()
	logging.Info("migrations applied", zap.Int("count", len(names)))
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
	return nil
}
