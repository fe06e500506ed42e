// ABOUTME: CLI command for the weekly report screen.
// ABOUTME: Prints a 7-day intake/burn table, daily averages and the macro split.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/auth"
)

var reportCmd = &cobra.Command{
	Use:         "report",
	Aliases:     []string{"r", "week"},
	Short:       "Summarise the last 7 days",
	Annotations: onScreen(auth.ScreenReport),
	Long: `Summarise the last 7 days: calories eaten and burned per day, daily
averages, and the protein/carbs/fat split of everything eaten.

Days without entries count as zero in the averages.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pages.Report.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load report: %w", err)
		}

		out := cmd.OutOrStdout()
		v := pages.Report.View()

		fmt.Fprintf(out, "%s %s %s %s\n", padRight("Day", 5), padRight("Date", 6), padRight("Intake", 8), "Burned")
		for _, d := range v.Series {
			fmt.Fprintf(out, "%s %s %s %s\n",
				padRight(d.Label, 5),
				faint.Sprint(d.Date.Format("01/02")+" "),
				color.GreenString(padRight(fmt.Sprint(d.Intake), 8)),
				color.CyanString(fmt.Sprint(d.Burn)))
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s %.0f kcal/day\n", padRight("Avg intake", 11), v.Averages.Intake)
		fmt.Fprintf(out, "%s %.0f kcal/day\n", padRight("Avg burned", 11), v.Averages.Burn)
		fmt.Fprintf(out, "%s %.0f kcal/day\n", padRight("Avg net", 11), v.Averages.Net)
		fmt.Fprintf(out, "%s protein %d%%  carbs %d%%  fat %d%%\n", padRight("Macros", 11),
			v.Macros.ProteinPct, v.Macros.CarbPct, v.Macros.FatPct)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
