package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/elemcore/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|version]",
	Short:     "Manage the mastery database schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "version"},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	action := "up"
	if len(args) == 1 {
		action = args[0]
	}
	ctx := cmd.Context()
	dsn := cfg.Database.DSN()

	switch action {
	case "up":
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return err
		}
	case "down":
		if err := db.RollbackMigration(ctx, dsn); err != nil {
			return err
		}
	}

	version, err := db.SchemaVersion(ctx, dsn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", version)
	return nil
}
