// ABOUTME: CLI command for the home screen.
// ABOUTME: Shows today's intake, burn and net calories with the day's entries.
package main

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/auth"
	"github.com/harperreed/wellness/internal/tracker"
)

var homeNoBanner bool

var homeCmd = &cobra.Command{
	Use:         "home",
	Aliases:     []string{"today"},
	Short:       "Show today at a glance",
	Annotations: onScreen(auth.ScreenHome),
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if err := pages.Home.Refresh(cmd.Context()); err != nil && !pages.Home.Snapshot().Loaded() {
			return fmt.Errorf("load today: %w", err)
		}

		if !homeNoBanner {
			fmt.Fprint(out, figure.NewFigure("wellness", "cybermedium", true).String())
			fmt.Fprintln(out)
		}
		if s := gate.CurrentSession(); s != nil {
			fmt.Fprintf(out, "Hello, %s\n\n", s.Email)
		}
		printToday(out, pages.Home.View())
		return nil
	},
}

func printToday(out io.Writer, v tracker.TodayView) {
	fmt.Fprintf(out, "%s %s\n", padRight("Intake", 8), color.GreenString("%d kcal", v.Totals.Intake))
	fmt.Fprintf(out, "%s %s\n", padRight("Burned", 8), color.CyanString("%d kcal", v.Totals.Burned))
	fmt.Fprintf(out, "%s %d kcal\n", padRight("Net", 8), v.Totals.Net())

	fmt.Fprintln(out)
	if len(v.Diet) == 0 {
		fmt.Fprintln(out, faint.Sprint("No meals logged today."))
	}
	for _, d := range v.Diet {
		fmt.Fprintf(out, "%s %s %s %d kcal\n",
			faint.Sprint(d.ShortID()),
			padRight(string(d.MealType), 10),
			padRight(truncate(d.Description, 30), 30),
			d.Calories)
	}

	if len(v.Fitness) == 0 {
		fmt.Fprintln(out, faint.Sprint("No activities logged today."))
	}
	for _, f := range v.Fitness {
		fmt.Fprintf(out, "%s %s %3d min  %d kcal\n",
			faint.Sprint(f.ShortID()),
			padRight(string(f.ActivityType), 10),
			f.DurationMinutes,
			f.CaloriesBurned)
	}
}

func init() {
	homeCmd.Flags().BoolVar(&homeNoBanner, "no-banner", false, "skip the banner")
	rootCmd.AddCommand(homeCmd)
}
