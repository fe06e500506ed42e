// ABOUTME: Session-scoped record store client used by every page and tool.
// ABOUTME: Fills and checks user_id from the owner func; never caches results.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/wellness/internal/metrics"
	"github.com/harperreed/wellness/internal/models"
)

// OwnerFunc returns the signed-in user id, or an error when there is none.
type OwnerFunc func() (string, error)

// StaticOwner always acts as userID.
func StaticOwner(userID string) OwnerFunc {
	return func() (string, error) { return userID, nil }
}

// Collection is one log table bound to the current session.
type Collection[R models.Record] struct {
	name  models.Collection
	table Table[R]
	owner OwnerFunc
	now   func() time.Time
}

func (c *Collection[R]) user(op string) (string, error) {
	userID, err := c.owner()
	if err != nil {
		return "", storeErr(op, c.name, KindUnauthorized, err)
	}
	return userID, nil
}

// List returns the session user's records within rng.
func (c *Collection[R]) List(ctx context.Context, rng Range, order Order) ([]R, error) {
	userID, err := c.user("list")
	if err != nil {
		return nil, err
	}
	return c.table.ListByUserAndRange(ctx, userID, rng, order)
}

// Today lists records from local midnight up to now.
func (c *Collection[R]) Today(ctx context.Context, order Order) ([]R, error) {
	return c.List(ctx, TodayRange(c.now()), order)
}

// LastDays lists records from midnight days-1 days ago up to now.
func (c *Collection[R]) LastDays(ctx context.Context, days int, order Order) ([]R, error) {
	return c.List(ctx, DaysRange(c.now(), days), order)
}

// Insert stores rec for the session user. A record carrying another user's
// id is refused.
func (c *Collection[R]) Insert(ctx context.Context, rec R) (R, error) {
	var zero R
	userID, err := c.user("insert")
	if err != nil {
		return zero, err
	}

	m := rec.Meta()
	switch m.UserID {
	case "":
		m.UserID = userID
	case userID:
	default:
		return zero, storeErr("insert", c.name, KindUnauthorized, ErrUserMismatch)
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = c.now()
	}
	return c.table.Insert(ctx, rec)
}

// Delete removes one of the session user's records. Missing ids are not an error.
func (c *Collection[R]) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := c.user("delete")
	if err != nil {
		return err
	}
	return c.table.DeleteByID(ctx, userID, id)
}

// Resolve turns a full id or a unique id prefix into a record id.
func (c *Collection[R]) Resolve(ctx context.Context, ref string) (uuid.UUID, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	if ref == "" {
		return uuid.Nil, fmt.Errorf("resolve %s id: %w", c.name, ErrNotFound)
	}

	recs, err := c.List(ctx, All, Descending)
	if err != nil {
		return uuid.Nil, err
	}

	var matches []uuid.UUID
	for _, r := range recs {
		if id := r.Meta().ID; strings.HasPrefix(id.String(), ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("resolve %s id %q: %w", c.name, ref, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("resolve %s id %q: %w", c.name, ref, ErrAmbiguousID)
	}
}

// Client scopes a Store to the signed-in user.
type Client struct {
	Weights *Collection[*models.WeightLog]
	Diets   *Collection[*models.DietLog]
	Fitness *Collection[*models.FitnessLog]

	store Store
	owner OwnerFunc
	now   func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClock replaces time.Now for "today" windows and record timestamps.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient binds store to owner.
func NewClient(store Store, owner OwnerFunc, opts ...ClientOption) *Client {
	c := &Client{store: store, owner: owner, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.Weights = &Collection[*models.WeightLog]{name: models.CollectionWeight, table: store.Weights(), owner: owner, now: c.now}
	c.Diets = &Collection[*models.DietLog]{name: models.CollectionDiet, table: store.Diets(), owner: owner, now: c.now}
	c.Fitness = &Collection[*models.FitnessLog]{name: models.CollectionFitness, table: store.Fitness(), owner: owner, now: c.now}
	return c
}

// Now returns the client's clock reading.
func (c *Client) Now() time.Time {
	return c.now()
}

// UserID returns the session user, or an Unauthorized StoreError.
func (c *Client) UserID() (string, error) {
	userID, err := c.owner()
	if err != nil {
		return "", storeErr("session", models.CollectionProfile, KindUnauthorized, err)
	}
	return userID, nil
}

// Profile returns the session user's profile, or nil when none exists.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	userID, err := c.UserID()
	if err != nil {
		return nil, err
	}
	return c.store.Profiles().Get(ctx, userID)
}

// UpsertProfile creates or partially updates the session user's profile.
func (c *Client) UpsertProfile(ctx context.Context, fields models.ProfileFields) (*models.Profile, error) {
	userID, err := c.UserID()
	if err != nil {
		return nil, err
	}
	return c.store.Profiles().Upsert(ctx, userID, fields)
}

// TodayRange is [local midnight, now).
func TodayRange(now time.Time) Range {
	return DaysRange(now, 1)
}

// DaysRange covers the last days calendar days ending at now. days <= 0 means 1.
func DaysRange(now time.Time, days int) Range {
	if days <= 0 {
		days = 1
	}
	from, to := metrics.WeekWindow(now, days)
	return Range{From: from, To: to}
}
