// ABOUTME: Pure derivations over fetched records: daily totals, weekly series, macro split.
// ABOUTME: Shared by every page so no screen re-implements its own aggregation.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/harperreed/wellness/internal/models"
)

// DefaultDays is the length of the weekly series.
const DefaultDays = 7

// Totals is a day's calorie intake and burn.
type Totals struct {
	Intake int `json:"intake"`
	Burned int `json:"burned"`
}

// Net returns intake minus burn.
func (t Totals) Net() int {
	return t.Intake - t.Burned
}

// DayPoint is one bar of the intake vs burn chart.
type DayPoint struct {
	Label  string    `json:"label"`
	Date   time.Time `json:"date"`
	Intake int       `json:"intake"`
	Burn   int       `json:"burn"`
}

// Macros is the percentage share of each macronutrient by mass.
type Macros struct {
	ProteinPct int `json:"protein_pct"`
	CarbPct    int `json:"carb_pct"`
	FatPct     int `json:"fat_pct"`
}

// Averages summarises a series for the report cards.
type Averages struct {
	Intake float64 `json:"intake"`
	Burn   float64 `json:"burn"`
	Net    float64 `json:"net"`
}

// DailyTotals sums calories eaten and burned. Empty input yields zeros.
func DailyTotals(diet []*models.DietLog, fitness []*models.FitnessLog) Totals {
	var t Totals
	for _, d := range diet {
		t.Intake += d.Calories
	}
	for _, f := range fitness {
		t.Burned += f.CaloriesBurned
	}
	return t
}

// WeeklySeries buckets records into one entry per calendar day for the
// window [today-(days-1), today], oldest first. Days without records are
// zero-filled. Records outside the window are ignored. days <= 0 means 7.
func WeeklySeries(diet []*models.DietLog, fitness []*models.FitnessLog, today time.Time, days int) []DayPoint {
	if days <= 0 {
		days = DefaultDays
	}
	loc := today.Location()
	first := StartOfDay(today).AddDate(0, 0, -(days - 1))

	series := make([]DayPoint, days)
	index := make(map[string]int, days)
	for i := range series {
		d := first.AddDate(0, 0, i)
		series[i] = DayPoint{Label: d.Format("Mon"), Date: d}
		index[d.Format(time.DateOnly)] = i
	}

	for _, d := range diet {
		if i, ok := index[d.RecordedAt.In(loc).Format(time.DateOnly)]; ok {
			series[i].Intake += d.Calories
		}
	}
	for _, f := range fitness {
		if i, ok := index[f.RecordedAt.In(loc).Format(time.DateOnly)]; ok {
			series[i].Burn += f.CaloriesBurned
		}
	}
	return series
}

// MacroBreakdown converts summed macro grams into whole percentages that add
// up to exactly 100, using the largest-remainder method. When no macros were
// recorded it returns 33/33/34. Negative or non-finite grams count as zero.
func MacroBreakdown(diet []*models.DietLog) Macros {
	var protein, carbs, fat float64
	for _, d := range diet {
		protein += grams(d.ProteinG)
		carbs += grams(d.CarbsG)
		fat += grams(d.FatG)
	}
	total := protein + carbs + fat
	if total <= 0 {
		return Macros{ProteinPct: 33, CarbPct: 33, FatPct: 34}
	}

	shares := []float64{protein / total * 100, carbs / total * 100, fat / total * 100}
	pct := make([]int, len(shares))
	remaining := 100
	for i, s := range shares {
		pct[i] = int(math.Floor(s))
		remaining -= pct[i]
	}

	order := []int{0, 1, 2}
	sort.SliceStable(order, func(a, b int) bool {
		fa := shares[order[a]] - math.Floor(shares[order[a]])
		fb := shares[order[b]] - math.Floor(shares[order[b]])
		return fa > fb
	})
	for i := 0; i < remaining; i++ {
		pct[order[i%len(order)]]++
	}

	return Macros{ProteinPct: pct[0], CarbPct: pct[1], FatPct: pct[2]}
}

func grams(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// SeriesAverages averages intake and burn across the series entries.
func SeriesAverages(series []DayPoint) Averages {
	if len(series) == 0 {
		return Averages{}
	}
	var intake, burn int
	for _, p := range series {
		intake += p.Intake
		burn += p.Burn
	}
	n := float64(len(series))
	a := Averages{Intake: float64(intake) / n, Burn: float64(burn) / n}
	a.Net = a.Intake - a.Burn
	return a
}

// StartOfDay returns local midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayWindow returns the half-open range [start-of-local-day, now).
func DayWindow(now time.Time) (time.Time, time.Time) {
	return StartOfDay(now), now
}

// WeekWindow returns [start of the first day of the series, now).
func WeekWindow(now time.Time, days int) (time.Time, time.Time) {
	if days <= 0 {
		days = DefaultDays
	}
	return StartOfDay(now).AddDate(0, 0, -(days - 1)), now
}
