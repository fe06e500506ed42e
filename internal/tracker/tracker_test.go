// ABOUTME: Tests for the page controllers.
// ABOUTME: Covers snapshots, silent rejects, pending scans, busy guards and derived views.
package tracker

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/recognition"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/harperreed/wellness/internal/timer"
)

func TestBusyRejectsOverlap(t *testing.T) {
	b := NewBusy()
	entered := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Do(func() error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	assert.True(t, b.InFlight())
	assert.ErrorIs(t, b.Do(func() error { return nil }), ErrBusy)

	close(release)
	wg.Wait()
	assert.False(t, b.InFlight())
	assert.NoError(t, b.Do(func() error { return nil }))
}

func TestHomeEmpty(t *testing.T) {
	f := newFixture(t)
	home := NewHome(f.client, f.opts...)

	require.NoError(t, home.Refresh(context.Background()))
	v := home.View()
	assert.True(t, home.Snapshot().Loaded())
	assert.Equal(t, 0, v.Totals.Intake)
	assert.Equal(t, 0, v.Totals.Burned)
	assert.Empty(t, v.Diet)
}

func TestHomeTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.client.Diets.Insert(ctx, models.NewDietLog("Eggs", 210, models.MealBreakfast))
	require.NoError(t, err)
	_, err = f.client.Diets.Insert(ctx, models.NewDietLog("Salad", 340, models.MealLunch))
	require.NoError(t, err)
	_, err = f.client.Fitness.Insert(ctx, models.NewFitnessLog(models.ActivityRunning, 30, 300))
	require.NoError(t, err)
	// Yesterday does not count.
	_, err = f.client.Diets.Insert(ctx, models.NewDietLog("Pizza", 900, models.MealDinner).
		WithRecordedAt(f.clock.Now().Add(-24*time.Hour)))
	require.NoError(t, err)

	home := NewHome(f.client, f.opts...)
	require.NoError(t, home.Refresh(ctx))

	v := home.View()
	assert.Equal(t, 550, v.Totals.Intake)
	assert.Equal(t, 300, v.Totals.Burned)
	assert.Equal(t, 250, v.Totals.Net())
	require.Len(t, v.Diet, 2)
	assert.Equal(t, "Salad", v.Diet[0].Description)
}

func TestHomeStaleButPresent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.client.Diets.Insert(ctx, models.NewDietLog("Eggs", 210, models.MealBreakfast))
	require.NoError(t, err)

	home := NewHome(f.client, f.opts...)
	require.NoError(t, home.Refresh(ctx))

	f.offline(true)
	err = home.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, storage.IsKind(err, storage.KindTransport))

	assert.Equal(t, 210, home.View().Totals.Intake)
	assert.Error(t, home.Snapshot().Err())

	f.offline(false)
	require.NoError(t, home.Refresh(ctx))
	assert.NoError(t, home.Snapshot().Err())
}

func TestFirstLoadFailureShowsDefaults(t *testing.T) {
	f := newFixture(t)
	f.offline(true)

	w := NewWeight(f.client, f.opts...)
	require.Error(t, w.Refresh(context.Background()))

	assert.False(t, w.Snapshot().Loaded())
	v := w.View()
	assert.Nil(t, v.Current)
	assert.Equal(t, 0.0, v.Progress)
}

func TestWeightNoRecords(t *testing.T) {
	f := newFixture(t)
	w := NewWeight(f.client, f.opts...)

	require.NoError(t, w.Refresh(context.Background()))
	v := w.View()
	assert.Nil(t, v.Current, "current weight is unknown, not 0")
	assert.NotNil(t, v.History)
	assert.Empty(t, v.History)
	assert.Equal(t, 0.0, v.Progress)
	assert.False(t, v.DeltaKnown)
}

func TestWeightSubmitRejectsGarbageSilently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewWeight(f.client, f.opts...)

	for _, input := range []string{"abc", "", "  ", "-5", "0", "NaN", "Inf", "72kg"} {
		rec, err := w.Submit(ctx, input)
		assert.NoError(t, err, "input %q", input)
		assert.Nil(t, rec, "input %q", input)
	}

	logs, err := f.client.Weights.List(ctx, storage.All, storage.Ascending)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestWeightSubmitAndProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewWeight(f.client, f.opts...)

	_, err := w.SetGoal(ctx, models.ProfileFields{TargetWeight: models.Float(65), StartWeight: models.Float(72)})
	require.NoError(t, err)

	rec, err := w.Submit(ctx, " 68.5 ")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "alice", rec.UserID)

	v := w.View()
	require.NotNil(t, v.Current)
	assert.Equal(t, 68.5, *v.Current)
	assert.InDelta(t, 50.0, v.Progress, 0.01)
	assert.True(t, v.DeltaKnown)
	assert.InDelta(t, 3.5, v.Delta, 1e-9)
	assert.Len(t, v.History, 1)
}

func TestWeightStartFallsBackToEarliestLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewWeight(f.client, f.opts...)

	_, err := w.SetGoal(ctx, models.ProfileFields{TargetWeight: models.Float(65)})
	require.NoError(t, err)
	_, err = w.Add(ctx, models.NewWeightLog(72).WithRecordedAt(f.clock.Now().Add(-30*24*time.Hour)))
	require.NoError(t, err)
	_, err = w.Submit(ctx, "65")
	require.NoError(t, err)

	v := w.View()
	require.NotNil(t, v.Start)
	assert.Equal(t, 72.0, *v.Start)
	assert.Equal(t, 100.0, v.Progress)
	assert.Len(t, v.History, 1, "month-old log is outside the weekly history")
}

func TestWeightSetGoalValidation(t *testing.T) {
	f := newFixture(t)
	w := NewWeight(f.client, f.opts...)

	_, err := w.SetGoal(context.Background(), models.ProfileFields{TargetWeight: models.Float(0)})
	assert.ErrorIs(t, err, ErrInvalidGoal)
	_, err = w.SetGoal(context.Background(), models.ProfileFields{StartWeight: models.Float(-1)})
	assert.ErrorIs(t, err, ErrInvalidGoal)
}

func TestWeightDeleteRefetches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewWeight(f.client, f.opts...)

	rec, err := w.Submit(ctx, "70")
	require.NoError(t, err)
	require.NotNil(t, w.View().Current)

	require.NoError(t, w.Delete(ctx, rec.ID))
	assert.Nil(t, w.View().Current)

	// Deleting again is not an error.
	require.NoError(t, w.Delete(ctx, rec.ID))
}

func TestWeightSubmitFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewWeight(f.client, f.opts...)

	f.offline(true)
	_, err := w.Submit(ctx, "70")
	require.Error(t, err)
	assert.True(t, storage.IsKind(err, storage.KindTransport))
	assert.False(t, w.Busy().InFlight())
}

func TestWeightWithoutSession(t *testing.T) {
	client := storage.NewClient(storage.OpenMemory(), func() (string, error) {
		return "", errOffline
	})
	w := NewWeight(client, newFixture(t).opts...)

	err := w.Refresh(context.Background())
	assert.True(t, storage.IsKind(err, storage.KindUnauthorized))
}

func TestDietScanConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := NewDiet(f.client, recognition.NewSimulated(0), f.opts...)

	res, err := d.Scan(ctx, []byte("photo"))
	require.NoError(t, err)
	assert.Equal(t, 320, res.Calories)
	assert.Same(t, res, d.Pending())

	stored, err := d.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MealLunch, stored.MealType)
	assert.True(t, stored.IsAIGenerated)
	assert.Nil(t, d.Pending())

	v := d.View()
	require.Len(t, v.Today, 1)
	assert.Equal(t, 320, v.Intake)
	assert.Equal(t, 64, v.Macros.ProteinPct)
	assert.Equal(t, 22, v.Macros.CarbPct)
	assert.Equal(t, 14, v.Macros.FatPct)
}

func TestDietConfirmFailureKeepsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := NewDiet(f.client, recognition.NewSimulated(0), f.opts...)

	_, err := d.Scan(ctx, nil)
	require.NoError(t, err)

	f.offline(true)
	_, err = d.Confirm(ctx)
	require.Error(t, err)
	assert.NotNil(t, d.Pending(), "scan survives a failed save")

	f.offline(false)
	_, err = d.Confirm(ctx)
	require.NoError(t, err)
	assert.Nil(t, d.Pending())
}

func TestDietConfirmAndDiscard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := NewDiet(f.client, recognition.NewSimulated(0), f.opts...)

	_, err := d.Confirm(ctx)
	assert.ErrorIs(t, err, ErrNothingPending)

	_, err = d.Scan(ctx, nil)
	require.NoError(t, err)
	d.Discard()
	assert.Nil(t, d.Pending())
}

func TestDietWithoutRecognizer(t *testing.T) {
	f := newFixture(t)
	d := NewDiet(f.client, nil, f.opts...)

	_, err := d.Scan(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoRecognizer)
}

func TestDietScanCancelled(t *testing.T) {
	f := newFixture(t)
	d := NewDiet(f.client, recognition.NewSimulated(time.Hour), f.opts...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Scan(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, d.Pending())
}

func TestDietManualAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := NewDiet(f.client, nil, f.opts...)

	rec, err := d.Add(ctx, models.NewDietLog("  ", 100, models.MealSnack))
	assert.NoError(t, err)
	assert.Nil(t, rec)
	rec, err = d.Add(ctx, models.NewDietLog("Apple", 0, models.MealSnack))
	assert.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = d.Add(ctx, models.NewDietLog(" Apple ", 95, ""))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Apple", rec.Description)
	assert.Equal(t, models.MealLunch, rec.MealType)
	assert.False(t, rec.IsAIGenerated)

	require.NoError(t, d.Delete(ctx, rec.ID))
	assert.Empty(t, d.View().Today)
}

func TestDietAddRejectsInvalidMacros(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := NewDiet(f.client, nil, f.opts...)
	require.NoError(t, d.Refresh(ctx))

	tests := []struct {
		name      string
		p, c, fat float64
	}{
		{"negative carbs", 50, -10, 0},
		{"NaN protein", math.NaN(), 10, 10},
		{"infinite fat", 10, 10, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := d.Add(ctx, models.NewDietLog("Toast", 200, models.MealBreakfast).WithMacros(tt.p, tt.c, tt.fat))
			assert.NoError(t, err)
			assert.Nil(t, rec)
		})
	}

	all, err := f.client.Diets.List(ctx, storage.All, storage.Ascending)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 33, d.View().Macros.ProteinPct)
}

func TestFitnessAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fit := NewFitness(f.client, f.opts...)

	tests := []struct {
		minutes, calories int
	}{
		{0, 100},
		{30, 0},
		{-1, -1},
	}
	for _, tt := range tests {
		rec, err := fit.Add(ctx, "yoga", tt.minutes, tt.calories)
		assert.NoError(t, err)
		assert.Nil(t, rec)
	}

	rec, err := fit.Add(ctx, " Yoga ", 45, 150)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityYoga, rec.ActivityType)

	_, err = fit.Add(ctx, "", 20, 200)
	require.NoError(t, err)

	v := fit.View()
	assert.Len(t, v.Today, 2)
	assert.Equal(t, 350, v.Burned)
	assert.Equal(t, 65, v.Minutes)
	assert.Equal(t, models.ActivityRunning, v.Today[0].ActivityType)
}

func TestFitnessAddFromTimer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fit := NewFitness(f.client, f.opts...)

	ticks := make(chan time.Time)
	seen := make(chan int, 1)
	sw := timer.New(
		timer.WithTicker(func(time.Duration) (<-chan time.Time, func()) { return ticks, func() {} }),
		timer.WithOnTick(func(s int) { seen <- s }),
	)
	defer sw.Close()

	// Nothing elapsed: nothing recorded.
	rec, err := fit.AddFromTimer(ctx, sw, models.ActivityRunning)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, sw.Start())
	ticks <- time.Now()
	<-seen

	rec, err = fit.AddFromTimer(ctx, sw, models.ActivityRunning)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.DurationMinutes)
	assert.Equal(t, 10, rec.CaloriesBurned)
	assert.Equal(t, timer.Idle, sw.State())
	assert.Equal(t, 0, sw.Elapsed())
}

func TestReportWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	for i := 0; i < 9; i++ {
		at := now.AddDate(0, 0, -i).Add(-time.Minute)
		_, err := f.client.Diets.Insert(ctx, models.NewDietLog("meal", 2000, models.MealLunch).
			WithMacros(30, 45, 25).WithRecordedAt(at))
		require.NoError(t, err)
	}
	_, err := f.client.Fitness.Insert(ctx, models.NewFitnessLog(models.ActivityRunning, 70, 700).
		WithRecordedAt(now.Add(-time.Minute)))
	require.NoError(t, err)

	r := NewReport(f.client, f.opts...)
	assert.False(t, r.Snapshot().Loaded())
	require.NoError(t, r.Refresh(ctx))
	assert.True(t, r.Snapshot().Loaded())
	assert.NoError(t, r.Snapshot().Err())

	v := r.View()
	require.Len(t, v.Series, 7)
	for _, p := range v.Series {
		assert.Equal(t, 2000, p.Intake, p.Label)
	}
	assert.Equal(t, 700, v.Series[6].Burn)
	assert.Equal(t, 2000.0, v.Averages.Intake)
	assert.Equal(t, 100.0, v.Averages.Burn)
	assert.Equal(t, 30, v.Macros.ProteinPct)
	assert.Equal(t, 45, v.Macros.CarbPct)
	assert.Equal(t, 25, v.Macros.FatPct)
}

func TestReportEmptyWeek(t *testing.T) {
	f := newFixture(t)
	r := NewReport(f.client, f.opts...)

	require.NoError(t, r.Refresh(context.Background()))
	v := r.View()
	assert.Len(t, v.Series, 7)
	assert.Equal(t, 33, v.Macros.ProteinPct)
	assert.Equal(t, 33, v.Macros.CarbPct)
	assert.Equal(t, 34, v.Macros.FatPct)
}

func TestNewTracker(t *testing.T) {
	f := newFixture(t)
	tr := New(f.client, recognition.NewSimulated(0), f.opts...)

	require.NotNil(t, tr.Home)
	require.NotNil(t, tr.Weight)
	require.NotNil(t, tr.Diet)
	require.NotNil(t, tr.Fitness)
	require.NotNil(t, tr.Report)
	assert.NotSame(t, tr.Weight.Busy(), tr.Diet.Busy())
}
