// ABOUTME: Store and Table interfaces shared by every storage backend.
// ABOUTME: Range and Order describe the one query shape the app needs.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/wellness/internal/models"
)

// Order is the sort direction on recorded_at.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) sql() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// Range is a half-open interval [From, To) on recorded_at.
// A zero bound leaves that side open.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// All is the unbounded range.
var All = Range{}

// Table is one per-user log collection.
type Table[R models.Record] interface {
	// ListByUserAndRange never returns a nil slice on success.
	ListByUserAndRange(ctx context.Context, userID string, rng Range, order Order) ([]R, error)
	// Insert assigns ID and RecordedAt when they are zero.
	Insert(ctx context.Context, rec R) (R, error)
	// DeleteByID succeeds even when no row matched.
	DeleteByID(ctx context.Context, userID string, id uuid.UUID) error
}

// ProfileTable holds one profile row per user.
type ProfileTable interface {
	// Get returns nil, nil when the user has no profile yet.
	Get(ctx context.Context, userID string) (*models.Profile, error)
	// Upsert creates the row or replaces only the non-nil fields.
	Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error)
}

// Store groups the four collections of a backend.
type Store interface {
	Weights() Table[*models.WeightLog]
	Diets() Table[*models.DietLog]
	Fitness() Table[*models.FitnessLog]
	Profiles() ProfileTable
	Close() error
}

// stamp fills server-assigned metadata on a record about to be written.
func stamp(m *models.LogMeta, now time.Time) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = now
	}
}
