package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mclaude-statusline/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run history database migrations",
	Long: `Run history database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  mclaude-statusline migrate      # Run all pending migrations
  mclaude-statusline migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	db, err := app.DB()
	if err != nil {
		return err
	}

	currentVersion, allMigrations, err := migrate.Prepare(ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Current version: %d\n", currentVersion)

	if len(args) == 0 {
		return migrate.MigrateUp(ctx, db, out, allMigrations, currentVersion)
	}

	targetVersion, err := strconv.Atoi(args[0])
	if err != nil || targetVersion < 0 {
		return fmt.Errorf("invalid version number: %s", args[0])
	}

	switch {
	case targetVersion > currentVersion:
		return migrate.MigrateUpTo(ctx, db, out, allMigrations, currentVersion, targetVersion)
	case targetVersion < currentVersion:
		return migrate.MigrateDownTo(ctx, db, out, allMigrations, currentVersion, targetVersion)
	default:
		fmt.Fprintln(out, "Already at target version")
		return nil
	}
}
