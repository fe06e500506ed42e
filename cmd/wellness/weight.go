// ABOUTME: CLI commands for the weight screen.
// ABOUTME: Shows goal progress and adds, lists, deletes weights and sets goals.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/auth"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/harperreed/wellness/internal/tracker"
)

var (
	weightAt     string
	weightLimit  int
	weightTarget float64
	weightStart  float64
)

var weightCmd = &cobra.Command{
	Use:         "weight",
	Aliases:     []string{"w"},
	Short:       "Show weight progress",
	Annotations: onScreen(auth.ScreenWeight),
	Long: `Show your current weight, goal progress and the last 7 days of weigh-ins.

The start weight is the one set with 'weight goal --start', or your earliest
logged weight. Progress is how far you have come from start toward target.

EXAMPLES:

  wellness weight                         # Progress and recent weigh-ins
  wellness weight add 72.4                # Log a weight in kg
  wellness weight add 72.1 --at "2025-01-31 07:30"
  wellness weight goal --target 68        # Set a target
  wellness weight list -n 50              # Full history
  wellness weight delete abc123           # Delete by id prefix`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pages.Weight.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load weights: %w", err)
		}

		out := cmd.OutOrStdout()
		v := pages.Weight.View()
		fmt.Fprintf(out, "%s %s\n", padRight("Current", 9), kg(v.Current))
		fmt.Fprintf(out, "%s %s\n", padRight("Start", 9), kg(v.Start))
		fmt.Fprintf(out, "%s %s\n", padRight("Target", 9), kg(v.Target))
		fmt.Fprintf(out, "%s %s\n", padRight("Progress", 9), color.GreenString("%.0f%%", v.Progress))
		if v.DeltaKnown {
			fmt.Fprintf(out, "%s %.1f kg to go\n", padRight("Remaining", 9), v.Delta)
		}

		fmt.Fprintln(out)
		if len(v.History) == 0 {
			fmt.Fprintln(out, faint.Sprint("No weigh-ins in the last 7 days."))
			return nil
		}
		for i := len(v.History) - 1; i >= 0; i-- {
			w := v.History[i]
			fmt.Fprintf(out, "%s %s %.1f kg\n", faint.Sprint(w.ShortID()), when(w.RecordedAt), w.Weight)
		}
		return nil
	},
}

var weightAddCmd = &cobra.Command{
	Use:     "add <kg>",
	Aliases: []string{"a"},
	Short:   "Log a weight in kg",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := recordedAt(weightAt)
		if err != nil {
			return err
		}

		var stored *models.WeightLog
		if at.IsZero() {
			stored, err = pages.Weight.Submit(cmd.Context(), args[0])
		} else if value, ok := tracker.ParseWeight(args[0]); ok {
			stored, err = pages.Weight.Add(cmd.Context(), models.NewWeightLog(value).WithRecordedAt(at))
		}
		if err != nil {
			return err
		}
		if stored == nil {
			printIgnored(cmd.OutOrStdout(), "weight must be a positive number")
			return nil
		}
		printAdded(cmd.OutOrStdout(), "weight", &stored.LogMeta, fmt.Sprintf("%.1f kg", stored.Weight))
		return nil
	},
}

var weightListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List weigh-ins, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logs, err := client.Weights.List(cmd.Context(), storage.All, storage.Descending)
		if err != nil {
			return fmt.Errorf("list weights: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(logs) == 0 {
			fmt.Fprintln(out, "No weights found.")
			return nil
		}
		for _, w := range limit(logs, weightLimit) {
			fmt.Fprintf(out, "%s %s %.1f kg\n", faint.Sprint(w.ShortID()), when(w.RecordedAt), w.Weight)
		}
		return nil
	},
}

var weightDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm", "del"},
	Short:   "Delete a weigh-in by id or id prefix",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := client.Weights.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := pages.Weight.Delete(cmd.Context(), id); err != nil {
			return err
		}
		printDeleted(cmd.OutOrStdout(), "weight", args[0])
		return nil
	},
}

var weightGoalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Set target and start weights",
	Long: `Set the goal weight, the start weight, or both. Flags you leave out keep
their current value.

EXAMPLES:

  wellness weight goal --target 68
  wellness weight goal --target 68 --start 80`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var fields models.ProfileFields
		if cmd.Flags().Changed("target") {
			fields.TargetWeight = models.Float(weightTarget)
		}
		if cmd.Flags().Changed("start") {
			fields.StartWeight = models.Float(weightStart)
		}
		if fields.TargetWeight == nil && fields.StartWeight == nil {
			return errors.New("nothing to set: use --target and/or --start")
		}

		profile, err := pages.Weight.SetGoal(cmd.Context(), fields)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Goal updated"))
		fmt.Fprintf(cmd.OutOrStdout(), "  target %s, start %s\n", kg(profile.TargetWeight), kg(profile.StartWeight))
		return nil
	},
}

func init() {
	weightAddCmd.Flags().StringVar(&weightAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	weightListCmd.Flags().IntVarP(&weightLimit, "limit", "n", 20, "max number of results")
	weightGoalCmd.Flags().Float64Var(&weightTarget, "target", 0, "target weight in kg")
	weightGoalCmd.Flags().Float64Var(&weightStart, "start", 0, "start weight in kg")

	weightCmd.AddCommand(weightAddCmd)
	weightCmd.AddCommand(weightListCmd)
	weightCmd.AddCommand(weightDeleteCmd)
	weightCmd.AddCommand(weightGoalCmd)
	rootCmd.AddCommand(weightCmd)
}
