// ABOUTME: Shared fixtures for page controller tests.
// ABOUTME: In-memory store, a ticking clock, and a store that can be switched offline.
package tracker

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
)

var errOffline = errors.New("connection refused")

// tickingClock advances one second on every reading so that records
// stamped "now" fall inside the next [midnight, now) window.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *tickingClock {
	return &tickingClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type flakyStore struct {
	storage.Store
	offline atomic.Bool
}

func (f *flakyStore) Weights() storage.Table[*models.WeightLog] {
	return flakyTable[*models.WeightLog]{inner: f.Store.Weights(), offline: &f.offline}
}

func (f *flakyStore) Diets() storage.Table[*models.DietLog] {
	return flakyTable[*models.DietLog]{inner: f.Store.Diets(), offline: &f.offline}
}

func (f *flakyStore) Fitness() storage.Table[*models.FitnessLog] {
	return flakyTable[*models.FitnessLog]{inner: f.Store.Fitness(), offline: &f.offline}
}

func (f *flakyStore) Profiles() storage.ProfileTable {
	return flakyProfiles{inner: f.Store.Profiles(), offline: &f.offline}
}

func transportErr(op string) error {
	return &storage.StoreError{Op: op, Kind: storage.KindTransport, Err: errOffline}
}

type flakyTable[R models.Record] struct {
	inner   storage.Table[R]
	offline *atomic.Bool
}

func (t flakyTable[R]) ListByUserAndRange(ctx context.Context, userID string, rng storage.Range, order storage.Order) ([]R, error) {
	if t.offline.Load() {
		return nil, transportErr("list")
	}
	return t.inner.ListByUserAndRange(ctx, userID, rng, order)
}

func (t flakyTable[R]) Insert(ctx context.Context, rec R) (R, error) {
	if t.offline.Load() {
		var zero R
		return zero, transportErr("insert")
	}
	return t.inner.Insert(ctx, rec)
}

func (t flakyTable[R]) DeleteByID(ctx context.Context, userID string, id uuid.UUID) error {
	if t.offline.Load() {
		return transportErr("delete")
	}
	return t.inner.DeleteByID(ctx, userID, id)
}

type flakyProfiles struct {
	inner   storage.ProfileTable
	offline *atomic.Bool
}

func (p flakyProfiles) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if p.offline.Load() {
		return nil, transportErr("get")
	}
	return p.inner.Get(ctx, userID)
}

func (p flakyProfiles) Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error) {
	if p.offline.Load() {
		return nil, transportErr("upsert")
	}
	return p.inner.Upsert(ctx, userID, fields)
}

type fixture struct {
	store  *flakyStore
	client *storage.Client
	clock  *tickingClock
	opts   []Option
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newClock()
	store := &flakyStore{Store: storage.OpenMemory()}
	return &fixture{
		store:  store,
		client: storage.NewClient(store, storage.StaticOwner("alice"), storage.WithClock(clock.Now)),
		clock:  clock,
		opts:   []Option{WithLogger(log.New(io.Discard))},
	}
}

func (f *fixture) offline(v bool) {
	f.store.offline.Store(v)
}
