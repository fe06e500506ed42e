// ABOUTME: Home page controller: today's intake, burn and net calories.
// ABOUTME: Diet and fitness are fetched concurrently.
package tracker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/wellness/internal/metrics"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
)

// TodayView is today's activity at a glance.
type TodayView struct {
	Diet    []*models.DietLog
	Fitness []*models.FitnessLog
	Totals  metrics.Totals
}

// Home is the landing page.
type Home struct {
	page
	snap Snapshot[TodayView]
}

// NewHome returns an unloaded Home page.
func NewHome(client *storage.Client, opts ...Option) *Home {
	return &Home{page: newPage("home", client, opts)}
}

// Refresh re-reads today's diet and fitness logs.
func (h *Home) Refresh(ctx context.Context) error {
	var (
		diet    []*models.DietLog
		fitness []*models.FitnessLog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		diet, err = h.client.Diets.Today(gctx, storage.Descending)
		return err
	})
	g.Go(func() error {
		var err error
		fitness, err = h.client.Fitness.Today(gctx, storage.Descending)
		return err
	})
	if err := g.Wait(); err != nil {
		h.snap.fail(err)
		h.logger.Warn("refresh failed", "page", h.name, "err", err)
		return err
	}

	h.snap.set(TodayView{
		Diet:    diet,
		Fitness: fitness,
		Totals:  metrics.DailyTotals(diet, fitness),
	}, h.client.Now())
	return nil
}

// View returns the last loaded view; zero totals before the first load.
func (h *Home) View() TodayView {
	return h.snap.Value()
}

// Snapshot exposes load state and the last fetch error.
func (h *Home) Snapshot() *Snapshot[TodayView] {
	return &h.snap
}
