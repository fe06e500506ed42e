// ABOUTME: Weekly report controller: daily intake/burn series, averages and macro split.
// ABOUTME: Always covers exactly the last seven calendar days ending today.
package tracker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/wellness/internal/metrics"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
)

// ReportView is the weekly summary.
type ReportView struct {
	Series   []metrics.DayPoint
	Averages metrics.Averages
	Macros   metrics.Macros
}

// Report is the weekly summary page.
type Report struct {
	page
	days int
	snap Snapshot[ReportView]
}

// NewReport returns an unloaded Report page over metrics.DefaultDays.
func NewReport(client *storage.Client, opts ...Option) *Report {
	return &Report{page: newPage("report", client, opts), days: metrics.DefaultDays}
}

// Refresh re-reads the week's diet and fitness logs.
func (r *Report) Refresh(ctx context.Context) error {
	var (
		diet    []*models.DietLog
		fitness []*models.FitnessLog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		diet, err = r.client.Diets.LastDays(gctx, r.days, storage.Ascending)
		return err
	})
	g.Go(func() error {
		var err error
		fitness, err = r.client.Fitness.LastDays(gctx, r.days, storage.Ascending)
		return err
	})
	if err := g.Wait(); err != nil {
		r.snap.fail(err)
		r.logger.Warn("refresh failed", "page", r.name, "err", err)
		return err
	}

	now := r.client.Now()
	r.snap.set(BuildReport(diet, fitness, now, r.days), now)
	return nil
}

// View returns the last loaded view.
func (r *Report) View() ReportView {
	return r.snap.Value()
}

// Snapshot exposes load state and the last fetch error.
func (r *Report) Snapshot() *Snapshot[ReportView] {
	return &r.snap
}

// BuildReport derives the weekly summary from already-fetched logs.
func BuildReport(diet []*models.DietLog, fitness []*models.FitnessLog, today time.Time, days int) ReportView {
	series := metrics.WeeklySeries(diet, fitness, today, days)
	return ReportView{
		Series:   series,
		Averages: metrics.SeriesAverages(series),
		Macros:   metrics.MacroBreakdown(diet),
	}
}
