// ABOUTME: CLI commands for the diet screen.
// ABOUTME: Today's meals with macro split, photo scans and manual meal entries.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/auth"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/harperreed/wellness/internal/tracker"
)

var (
	dietAt      string
	dietMeal    string
	dietProtein float64
	dietCarbs   float64
	dietFat     float64
	dietYes     bool
	dietLimit   int
	dietDays    int
)

var dietCmd = &cobra.Command{
	Use:         "diet",
	Aliases:     []string{"d", "meals"},
	Short:       "Show today's meals",
	Annotations: onScreen(auth.ScreenDiet),
	Long: `Show today's meals, newest first, with total intake and macro split.

EXAMPLES:

  wellness diet                                      # Today's meals
  wellness diet add "Chicken salad" 450 --meal lunch --protein 35 --carbs 12 --fat 20
  wellness diet scan lunch.jpg                       # Recognize a photo, then confirm
  wellness diet scan lunch.jpg --yes                 # Save without asking
  wellness diet list --days 7                        # The last week
  wellness diet delete abc123                        # Delete by id prefix`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pages.Diet.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("load meals: %w", err)
		}
		printDietView(cmd.OutOrStdout(), pages.Diet.View())
		return nil
	},
}

func printDietView(out io.Writer, v tracker.DietView) {
	fmt.Fprintf(out, "%s %s\n", padRight("Intake", 8), color.GreenString("%d kcal", v.Intake))
	fmt.Fprintf(out, "%s protein %d%%  carbs %d%%  fat %d%%\n", padRight("Macros", 8),
		v.Macros.ProteinPct, v.Macros.CarbPct, v.Macros.FatPct)
	fmt.Fprintln(out)

	if len(v.Today) == 0 {
		fmt.Fprintln(out, faint.Sprint("No meals logged today."))
		return
	}
	for _, d := range v.Today {
		printMeal(out, d)
	}
}

func printMeal(out io.Writer, d *models.DietLog) {
	ai := ""
	if d.IsAIGenerated {
		ai = faint.Sprint(" (scanned)")
	}
	fmt.Fprintf(out, "%s %s %s %s %4d kcal  P%.0f C%.0f F%.0f%s\n",
		faint.Sprint(d.ShortID()),
		when(d.RecordedAt),
		padRight(string(d.MealType), 10),
		padRight(truncate(d.Description, 30), 30),
		d.Calories, d.ProteinG, d.CarbsG, d.FatG, ai)
}

var dietAddCmd = &cobra.Command{
	Use:     "add <description> <kcal>",
	Aliases: []string{"a"},
	Short:   "Log a meal by hand",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := recordedAt(dietAt)
		if err != nil {
			return err
		}

		calories, ok := parseCount(args[1])
		if !ok {
			printIgnored(cmd.OutOrStdout(), "calories must be a positive whole number")
			return nil
		}

		mealType := models.DefaultScanMealType
		if dietMeal != "" {
			mealType, err = models.ParseMealType(dietMeal)
			if err != nil {
				return err
			}
		}

		entry := models.NewDietLog(args[0], calories, mealType).WithMacros(dietProtein, dietCarbs, dietFat)
		if !at.IsZero() {
			entry.WithRecordedAt(at)
		}

		stored, err := pages.Diet.Add(cmd.Context(), entry)
		if err != nil {
			return err
		}
		if stored == nil {
			printIgnored(cmd.OutOrStdout(), "a meal needs a description and calories")
			return nil
		}
		printAdded(cmd.OutOrStdout(), "meal", &stored.LogMeta,
			fmt.Sprintf("%s, %d kcal (%s)", stored.Description, stored.Calories, stored.MealType))
		return nil
	},
}

var dietScanCmd = &cobra.Command{
	Use:   "scan [photo]",
	Short: "Recognize a meal from a photo",
	Long: `Analyse a meal photo and propose a diet entry with calories and macros.
The proposal is saved as a lunch entry once you confirm it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var photo []byte
		if len(args) == 1 {
			var err error
			photo, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read photo: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, faint.Sprint("Analyzing..."))
		res, err := pages.Diet.Scan(cmd.Context(), photo)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s\n  %d kcal  protein %.0fg  carbs %.0fg  fat %.0fg\n",
			color.New(color.Bold).Sprint(res.Description), res.Calories, res.ProteinG, res.CarbsG, res.FatG)

		if !dietYes && !confirm(cmd.InOrStdin(), out, "Save this meal? [Y/n]: ") {
			pages.Diet.Discard()
			fmt.Fprintln(out, "Discarded.")
			return nil
		}

		stored, err := pages.Diet.Confirm(cmd.Context())
		if err != nil {
			return err
		}
		printAdded(out, "meal", &stored.LogMeta, fmt.Sprintf("%s, %d kcal", stored.Description, stored.Calories))
		return nil
	},
}

var dietListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List meals, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rng := storage.All
		if dietDays > 0 {
			rng = storage.DaysRange(client.Now(), dietDays)
		}
		logs, err := client.Diets.List(cmd.Context(), rng, storage.Descending)
		if err != nil {
			return fmt.Errorf("list meals: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(logs) == 0 {
			fmt.Fprintln(out, "No meals found.")
			return nil
		}
		for _, d := range limit(logs, dietLimit) {
			printMeal(out, d)
		}
		return nil
	},
}

var dietDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm", "del"},
	Short:   "Delete a meal by id or id prefix",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := client.Diets.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := pages.Diet.Delete(cmd.Context(), id); err != nil {
			return err
		}
		printDeleted(cmd.OutOrStdout(), "meal", args[0])
		return nil
	},
}

// confirm asks a yes/no question; an empty answer means yes.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "" || answer == "y" || answer == "yes"
}

func init() {
	dietAddCmd.Flags().StringVar(&dietAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	dietAddCmd.Flags().StringVarP(&dietMeal, "meal", "m", "", "breakfast, lunch, dinner or snack (default lunch)")
	dietAddCmd.Flags().Float64Var(&dietProtein, "protein", 0, "protein in grams")
	dietAddCmd.Flags().Float64Var(&dietCarbs, "carbs", 0, "carbohydrates in grams")
	dietAddCmd.Flags().Float64Var(&dietFat, "fat", 0, "fat in grams")
	dietScanCmd.Flags().BoolVarP(&dietYes, "yes", "y", false, "save without asking")
	dietListCmd.Flags().IntVarP(&dietLimit, "limit", "n", 20, "max number of results")
	dietListCmd.Flags().IntVar(&dietDays, "days", 0, "only the last N days (0 for all)")

	dietCmd.AddCommand(dietAddCmd)
	dietCmd.AddCommand(dietScanCmd)
	dietCmd.AddCommand(dietListCmd)
	dietCmd.AddCommand(dietDeleteCmd)
	rootCmd.AddCommand(dietCmd)
}
