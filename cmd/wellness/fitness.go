// ABOUTME: CLI commands for the fitness screen.
// ABOUTME: Today's activities, manual entries and the live workout stopwatch.
package main

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/auth"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/harperreed/wellness/internal/tui"
)

var (
	fitnessLimit int
	fitnessDays  int
)

var fitnessCmd = &cobra.Command{
	Use:         "fitness",
	Aliases:     []string{"f", "workout"},
	Short:       "Show today's activities",
	Annotations: onScreen(auth.ScreenFitness),
	Long: fmt.Sprintf(`Show today's activities, newest first, with minutes and calories burned.

Activity types are free-form; suggested ones are %s.

EXAMPLES:

  wellness fitness                       # Today's activities
  wellness fitness add running 30 300    # 30 minutes, 300 kcal
  wellness fitness timer yoga            # Time a session live and save it
  wellness fitness list --days 7         # The last week
  wellness fitness delete abc123         # Delete by id prefix`, suggestedActivities()),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pages.Fitness.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load activities: %w", err)
		}

		out := cmd.OutOrStdout()
		v := pages.Fitness.View()
		fmt.Fprintf(out, "%s %s\n", padRight("Burned", 8), color.CyanString("%d kcal", v.Burned))
		fmt.Fprintf(out, "%s %d min\n\n", padRight("Active", 8), v.Minutes)
		if len(v.Today) == 0 {
			fmt.Fprintln(out, faint.Sprint("No activities logged today."))
			return nil
		}
		for _, f := range v.Today {
			printActivity(out, f)
		}
		return nil
	},
}

func printActivity(out io.Writer, f *models.FitnessLog) {
	fmt.Fprintf(out, "%s %s %s %3d min  %d kcal\n",
		faint.Sprint(f.ShortID()),
		when(f.RecordedAt),
		padRight(string(f.ActivityType), 10),
		f.DurationMinutes,
		f.CaloriesBurned)
}

func suggestedActivities() string {
	names := make([]string, len(models.SuggestedActivities))
	for i, a := range models.SuggestedActivities {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

var fitnessAddCmd = &cobra.Command{
	Use:     "add <activity> <minutes> <kcal>",
	Aliases: []string{"a"},
	Short:   "Log an activity by hand",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, _ := parseCount(args[1])
		calories, _ := parseCount(args[2])

		stored, err := pages.Fitness.Add(cmd.Context(), args[0], minutes, calories)
		if err != nil {
			return err
		}
		if stored == nil {
			printIgnored(cmd.OutOrStdout(), "duration and calories must be positive whole numbers")
			return nil
		}
		printAdded(cmd.OutOrStdout(), "activity", &stored.LogMeta,
			fmt.Sprintf("%s, %d min, %d kcal", stored.ActivityType, stored.DurationMinutes, stored.CaloriesBurned))
		return nil
	},
}

var fitnessTimerCmd = &cobra.Command{
	Use:   "timer [activity]",
	Short: "Time a workout live",
	Long: `Open the workout stopwatch. Space starts and pauses, tab picks the
activity, r resets, enter saves and q discards. Saving records the elapsed
minutes, rounded up. Running also gets a 10 kcal per minute estimate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var activity models.ActivityType
		if len(args) == 1 {
			activity = models.NormalizeActivity(args[0])
		}

		m, sw, err := tui.RunStopwatch(activity, tea.WithContext(cmd.Context()))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !m.Saved() {
			fmt.Fprintln(out, "Discarded.")
			return nil
		}
		stored, err := pages.Fitness.AddFromTimer(cmd.Context(), sw, m.Activity())
		if err != nil {
			return err
		}
		if stored == nil {
			printIgnored(out, "no time on the clock")
			return nil
		}
		printAdded(out, "activity", &stored.LogMeta,
			fmt.Sprintf("%s, %d min, %d kcal", stored.ActivityType, stored.DurationMinutes, stored.CaloriesBurned))
		return nil
	},
}

var fitnessListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List activities, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rng := storage.All
		if fitnessDays > 0 {
			rng = storage.DaysRange(client.Now(), fitnessDays)
		}
		logs, err := client.Fitness.List(cmd.Context(), rng, storage.Descending)
		if err != nil {
			return fmt.Errorf("list activities: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(logs) == 0 {
			fmt.Fprintln(out, "No activities found.")
			return nil
		}
		for _, f := range limit(logs, fitnessLimit) {
			printActivity(out, f)
		}
		return nil
	},
}

var fitnessDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm", "del"},
	Short:   "Delete an activity by id or id prefix",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := client.Fitness.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := pages.Fitness.Delete(cmd.Context(), id); err != nil {
			return err
		}
		printDeleted(cmd.OutOrStdout(), "activity", args[0])
		return nil
	},
}

func init() {
	fitnessListCmd.Flags().IntVarP(&fitnessLimit, "limit", "n", 20, "max number of results")
	fitnessListCmd.Flags().IntVar(&fitnessDays, "days", 0, "only the last N days (0 for all)")

	fitnessCmd.AddCommand(fitnessAddCmd)
	fitnessCmd.AddCommand(fitnessTimerCmd)
	fitnessCmd.AddCommand(fitnessListCmd)
	fitnessCmd.AddCommand(fitnessDeleteCmd)
	rootCmd.AddCommand(fitnessCmd)
}
