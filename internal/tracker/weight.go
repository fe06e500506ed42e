// ABOUTME: Weight page controller: history, current weight and goal progress.
// ABOUTME: Unparsable weight input is dropped without creating a record.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/wellness/internal/metrics"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
)

// ErrInvalidGoal is returned for a non-positive target or start weight.
var ErrInvalidGoal = errors.New("goal weights must be positive")

// WeightView is everything the weight page shows. Current, Start and
// Target are nil when unknown.
type WeightView struct {
	History    []*models.WeightLog
	Current    *float64
	Start      *float64
	Target     *float64
	Progress   float64
	Delta      float64
	DeltaKnown bool
}

// Weight is the weight tracking page.
type Weight struct {
	page
	snap Snapshot[WeightView]
}

// NewWeight returns an unloaded Weight page.
func NewWeight(client *storage.Client, opts ...Option) *Weight {
	return &Weight{page: newPage("weight", client, opts)}
}

// Refresh re-reads weight logs and the profile.
func (w *Weight) Refresh(ctx context.Context) error {
	logs, err := w.client.Weights.List(ctx, storage.All, storage.Ascending)
	if err != nil {
		return w.failed(err)
	}
	profile, err := w.client.Profile(ctx)
	if err != nil {
		return w.failed(err)
	}

	now := w.client.Now()
	w.snap.set(BuildWeightView(logs, profile, now), now)
	return nil
}

func (w *Weight) failed(err error) error {
	w.snap.fail(err)
	w.logger.Warn("refresh failed", "page", w.name, "err", err)
	return err
}

// BuildWeightView derives the page from ascending logs. The start weight is
// the profile's, else the earliest log.
func BuildWeightView(logs []*models.WeightLog, profile *models.Profile, now time.Time) WeightView {
	v := WeightView{
		History: recentWeights(logs, now, metrics.DefaultDays),
		Current: metrics.LatestWeight(logs),
		Start:   metrics.EarliestWeight(logs),
	}
	if profile != nil {
		v.Target = profile.TargetWeight
		if profile.StartWeight != nil {
			v.Start = profile.StartWeight
		}
	}
	v.Progress = metrics.GoalProgress(v.Start, v.Current, v.Target)
	v.Delta, v.DeltaKnown = metrics.WeightDelta(v.Current, v.Target)
	return v
}

func recentWeights(logs []*models.WeightLog, now time.Time, days int) []*models.WeightLog {
	from, _ := metrics.WeekWindow(now, days)
	out := make([]*models.WeightLog, 0, len(logs))
	for _, l := range logs {
		if !l.RecordedAt.Before(from) {
			out = append(out, l)
		}
	}
	return out
}

// View returns the last loaded view; everything unknown before the first load.
func (w *Weight) View() WeightView {
	return w.snap.Value()
}

// Snapshot exposes load state and the last fetch error.
func (w *Weight) Snapshot() *Snapshot[WeightView] {
	return &w.snap
}

// ParseWeight accepts a positive, finite decimal number of kilograms.
func ParseWeight(input string) (float64, bool) {
	kg, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(kg) || math.IsInf(kg, 0) || kg <= 0 {
		return 0, false
	}
	return kg, true
}

// Submit records a weight typed by the user. Input that is not a positive
// number is ignored: no record, no error.
func (w *Weight) Submit(ctx context.Context, input string) (*models.WeightLog, error) {
	kg, ok := ParseWeight(input)
	if !ok {
		w.logger.Debug("ignoring weight input", "input", input)
		return nil, nil
	}
	return w.Add(ctx, models.NewWeightLog(kg))
}

// Add stores log and re-reads the page.
func (w *Weight) Add(ctx context.Context, log *models.WeightLog) (*models.WeightLog, error) {
	var stored *models.WeightLog
	err := w.busy.Do(func() error {
		var err error
		stored, err = w.client.Weights.Insert(ctx, log)
		if err != nil {
			return fmt.Errorf("save weight: %w", err)
		}
		w.refreshAfter(ctx, w.Refresh)
		return nil
	})
	return stored, err
}

// Delete removes a weight log and re-reads the page.
func (w *Weight) Delete(ctx context.Context, id uuid.UUID) error {
	return w.busy.Do(func() error {
		if err := w.client.Weights.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete weight: %w", err)
		}
		w.refreshAfter(ctx, w.Refresh)
		return nil
	})
}

// SetGoal updates the named goal fields. Nil leaves a field unchanged.
func (w *Weight) SetGoal(ctx context.Context, fields models.ProfileFields) (*models.Profile, error) {
	for _, v := range []*float64{fields.TargetWeight, fields.StartWeight} {
		if v != nil && !(*v > 0) {
			return nil, ErrInvalidGoal
		}
	}

	var profile *models.Profile
	err := w.busy.Do(func() error {
		var err error
		profile, err = w.client.UpsertProfile(ctx, fields)
		if err != nil {
			return fmt.Errorf("save goal: %w", err)
		}
		w.refreshAfter(ctx, w.Refresh)
		return nil
	})
	return profile, err
}
