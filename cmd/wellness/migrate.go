// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Moves the signed-in user's records from one backend to another.
package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/auth"
	"github.com/harperreed/wellness/internal/storage"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy your data to another storage backend",
	Long: `Copy the signed-in user's goals, weights, meals and activities from one
storage backend to another. Ids and timestamps are preserved.

The source defaults to the configured backend. Afterwards, point the config
at the destination with "backend" or WELLNESS_BACKEND.

EXAMPLES:

  wellness migrate --to postgres                  # sqlite (default) to postgres
  wellness migrate --from sqlite --to charm       # local database to Charm sync
  wellness migrate --to charm --dry-run           # count what would be copied`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateTo == "" {
			return errors.New("--to is required")
		}
		from := migrateFrom
		if from == "" {
			from = cfg.GetBackend()
		}
		if from == migrateTo {
			return fmt.Errorf("source and destination are both %s", from)
		}

		userID, err := gate.RequireSession()
		if err != nil {
			return fmt.Errorf("%w: run 'wellness login <email>' first", auth.ErrNotAuthenticated)
		}

		ctx := cmd.Context()
		src, err := cfg.OpenBackend(ctx, from)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		defer src.Close()

		out := cmd.OutOrStdout()
		if migrateDryRun {
			data, err := storage.Export(ctx, storage.NewClient(src, storage.StaticOwner(userID)))
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			summary := &storage.MigrateSummary{
				Weights: len(data.Weights),
				Diets:   len(data.Diets),
				Fitness: len(data.Fitness),
			}
			if data.Profile != nil {
				summary.Profiles = 1
			}
			fmt.Fprintf(out, "Would copy from %s to %s:\n", from, migrateTo)
			printSummary(out, summary)
			return nil
		}

		dst, err := cfg.OpenBackend(ctx, migrateTo)
		if err != nil {
			return fmt.Errorf("open destination: %w", err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(ctx, src, dst, userID)
		if err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
		fmt.Fprintln(out, color.GreenString("✓ Migrated %d records from %s to %s", summary.Total(), from, migrateTo))
		printSummary(out, summary)
		return nil
	},
}

func printSummary(out io.Writer, s *storage.MigrateSummary) {
	fmt.Fprintf(out, "  Goals:      %d\n", s.Profiles)
	fmt.Fprintf(out, "  Weights:    %d\n", s.Weights)
	fmt.Fprintf(out, "  Meals:      %d\n", s.Diets)
	fmt.Fprintf(out, "  Activities: %d\n", s.Fitness)
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source backend (default: configured backend)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend (sqlite, postgres, charm, memory)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "only count what would be copied")
	rootCmd.AddCommand(migrateCmd)
}
