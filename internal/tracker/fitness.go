// ABOUTME: Fitness page controller: today's activities, manual and timed entries.
// ABOUTME: Manual entries need both a duration and a calorie count.
package tracker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/harperreed/wellness/internal/timer"
)

// FitnessView is today's activities, newest first, with totals.
type FitnessView struct {
	Today   []*models.FitnessLog
	Burned  int
	Minutes int
}

// Fitness is the activity tracking page.
type Fitness struct {
	page
	snap Snapshot[FitnessView]
}

// NewFitness returns an unloaded Fitness page.
func NewFitness(client *storage.Client, opts ...Option) *Fitness {
	return &Fitness{page: newPage("fitness", client, opts)}
}

// Refresh re-reads today's fitness logs.
func (f *Fitness) Refresh(ctx context.Context) error {
	logs, err := f.client.Fitness.Today(ctx, storage.Descending)
	if err != nil {
		f.snap.fail(err)
		f.logger.Warn("refresh failed", "page", f.name, "err", err)
		return err
	}

	v := FitnessView{Today: logs}
	for _, l := range logs {
		v.Burned += l.CaloriesBurned
		v.Minutes += l.DurationMinutes
	}
	f.snap.set(v, f.client.Now())
	return nil
}

// View returns the last loaded view.
func (f *Fitness) View() FitnessView {
	return f.snap.Value()
}

// Snapshot exposes load state and the last fetch error.
func (f *Fitness) Snapshot() *Snapshot[FitnessView] {
	return &f.snap
}

// Add stores a manual entry. Missing or non-positive duration or calories
// mean nothing is recorded and no error is returned.
func (f *Fitness) Add(ctx context.Context, activity string, minutes, calories int) (*models.FitnessLog, error) {
	if minutes <= 0 || calories <= 0 {
		f.logger.Debug("ignoring incomplete activity", "minutes", minutes, "calories", calories)
		return nil, nil
	}
	kind := models.NormalizeActivity(activity)
	if kind == "" {
		kind = models.ActivityRunning
	}
	return f.save(ctx, models.NewFitnessLog(kind, minutes, calories))
}

// AddFromTimer stores the stopwatch's draft and resets the stopwatch. A
// draft shorter than a minute cannot occur; zero elapsed time records nothing.
func (f *Fitness) AddFromTimer(ctx context.Context, sw *timer.Stopwatch, activity models.ActivityType) (*models.FitnessLog, error) {
	if sw.State() == timer.Running {
		if err := sw.Stop(); err != nil {
			return nil, err
		}
	}
	draft := sw.Draft(activity)
	if draft.DurationMinutes <= 0 {
		return nil, nil
	}

	stored, err := f.save(ctx, draft)
	if err != nil {
		return nil, err
	}
	sw.Reset()
	return stored, nil
}

func (f *Fitness) save(ctx context.Context, entry *models.FitnessLog) (*models.FitnessLog, error) {
	var stored *models.FitnessLog
	err := f.busy.Do(func() error {
		var err error
		stored, err = f.client.Fitness.Insert(ctx, entry)
		if err != nil {
			return fmt.Errorf("save activity: %w", err)
		}
		f.refreshAfter(ctx, f.Refresh)
		return nil
	})
	return stored, err
}

// Delete removes an activity and re-reads the page.
func (f *Fitness) Delete(ctx context.Context, id uuid.UUID) error {
	return f.busy.Do(func() error {
		if err := f.client.Fitness.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete activity: %w", err)
		}
		f.refreshAfter(ctx, f.Refresh)
		return nil
	})
}
