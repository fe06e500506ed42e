// ABOUTME: Diet page controller: today's meals, photo scanning and manual entries.
// ABOUTME: A scanned dish stays pending until confirmed, and survives a failed save.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/harperreed/wellness/internal/metrics"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/recognition"
	"github.com/harperreed/wellness/internal/storage"
)

var (
	ErrNothingPending = errors.New("no scanned meal to confirm")
	ErrNoRecognizer   = errors.New("meal recognition is not available")
)

// DietView is today's meals, newest first, with totals and macro split.
type DietView struct {
	Today  []*models.DietLog
	Intake int
	Macros metrics.Macros
}

// Diet is the diet tracking page.
type Diet struct {
	page
	recognizer recognition.Recognizer
	snap       Snapshot[DietView]

	mu      sync.Mutex
	pending *recognition.Result
}

// NewDiet returns an unloaded Diet page. recognizer may be nil.
func NewDiet(client *storage.Client, recognizer recognition.Recognizer, opts ...Option) *Diet {
	return &Diet{page: newPage("diet", client, opts), recognizer: recognizer}
}

// Refresh re-reads today's diet logs.
func (d *Diet) Refresh(ctx context.Context) error {
	logs, err := d.client.Diets.Today(ctx, storage.Descending)
	if err != nil {
		d.snap.fail(err)
		d.logger.Warn("refresh failed", "page", d.name, "err", err)
		return err
	}
	d.snap.set(DietView{
		Today:  logs,
		Intake: metrics.DailyTotals(logs, nil).Intake,
		Macros: metrics.MacroBreakdown(logs),
	}, d.client.Now())
	return nil
}

// View returns the last loaded view.
func (d *Diet) View() DietView {
	return d.snap.Value()
}

// Snapshot exposes load state and the last fetch error.
func (d *Diet) Snapshot() *Snapshot[DietView] {
	return &d.snap
}

// Scan recognizes a meal photo and holds the result as pending.
func (d *Diet) Scan(ctx context.Context, photo []byte) (*recognition.Result, error) {
	if d.recognizer == nil {
		return nil, ErrNoRecognizer
	}

	var res *recognition.Result
	err := d.busy.Do(func() error {
		var err error
		res, err = d.recognizer.Recognize(ctx, photo)
		if err != nil {
			return fmt.Errorf("recognize meal: %w", err)
		}
		d.mu.Lock()
		d.pending = res
		d.mu.Unlock()
		return nil
	})
	return res, err
}

// Pending returns the scanned dish awaiting confirmation, or nil.
func (d *Diet) Pending() *recognition.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Discard drops the pending scan.
func (d *Diet) Discard() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
}

// Confirm saves the pending scan as an AI-generated lunch entry. On failure
// the scan stays pending so the user can retry.
func (d *Diet) Confirm(ctx context.Context) (*models.DietLog, error) {
	pending := d.Pending()
	if pending == nil {
		return nil, ErrNothingPending
	}

	var stored *models.DietLog
	err := d.busy.Do(func() error {
		var err error
		stored, err = d.client.Diets.Insert(ctx, pending.DietLog())
		if err != nil {
			return fmt.Errorf("save scanned meal: %w", err)
		}
		d.mu.Lock()
		if d.pending == pending {
			d.pending = nil
		}
		d.mu.Unlock()
		d.refreshAfter(ctx, d.Refresh)
		return nil
	})
	return stored, err
}

// Add stores a manually entered meal. Entries without a description, with a
// non-positive calorie count, or with negative or non-finite macros are ignored.
func (d *Diet) Add(ctx context.Context, entry *models.DietLog) (*models.DietLog, error) {
	entry.Description = strings.TrimSpace(entry.Description)
	if entry.Description == "" || entry.Calories <= 0 {
		d.logger.Debug("ignoring incomplete meal", "description", entry.Description, "calories", entry.Calories)
		return nil, nil
	}
	if !validGrams(entry.ProteinG) || !validGrams(entry.CarbsG) || !validGrams(entry.FatG) {
		d.logger.Debug("ignoring meal with invalid macros", "protein", entry.ProteinG, "carbs", entry.CarbsG, "fat", entry.FatG)
		return nil, nil
	}
	if entry.MealType == "" {
		entry.MealType = models.DefaultScanMealType
	}

	var stored *models.DietLog
	err := d.busy.Do(func() error {
		var err error
		stored, err = d.client.Diets.Insert(ctx, entry)
		if err != nil {
			return fmt.Errorf("save meal: %w", err)
		}
		d.refreshAfter(ctx, d.Refresh)
		return nil
	})
	return stored, err
}

func validGrams(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Delete removes a meal and re-reads the page.
func (d *Diet) Delete(ctx context.Context, id uuid.UUID) error {
	return d.busy.Do(func() error {
		if err := d.client.Diets.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete meal: %w", err)
		}
		d.refreshAfter(ctx, d.Refresh)
		return nil
	})
}
