// ABOUTME: Page controllers that fetch, derive and mutate one screen's data.
// ABOUTME: Each page owns a snapshot, re-reads after every mutation and refuses overlapping writes.
package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/harperreed/wellness/internal/recognition"
	"github.com/harperreed/wellness/internal/storage"
)

// ErrBusy is returned when a mutating action is already in flight.
var ErrBusy = errors.New("another change is still being saved")

// Snapshot holds the last successfully fetched value of a page. A failed
// fetch keeps the previous value and records the error.
type Snapshot[T any] struct {
	mu        sync.RWMutex
	value     T
	loaded    bool
	err       error
	fetchedAt time.Time
}

// Value returns the last good value, or the zero value before the first load.
func (s *Snapshot[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Loaded reports whether any fetch has succeeded.
func (s *Snapshot[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err returns the error of the most recent fetch, nil if it succeeded.
func (s *Snapshot[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// FetchedAt is when the current value was read.
func (s *Snapshot[T]) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

func (s *Snapshot[T]) set(v T, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.loaded = true
	s.err = nil
	s.fetchedAt = at
}

func (s *Snapshot[T]) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Busy admits one mutating action at a time and rejects the rest.
type Busy struct {
	sem *semaphore.Weighted
}

// NewBusy returns an idle guard.
func NewBusy() *Busy {
	return &Busy{sem: semaphore.NewWeighted(1)}
}

// Do runs fn unless another Do is running, in which case it returns ErrBusy.
func (b *Busy) Do(fn func() error) error {
	if !b.sem.TryAcquire(1) {
		return ErrBusy
	}
	defer b.sem.Release(1)
	return fn()
}

// InFlight reports whether an action is currently running.
func (b *Busy) InFlight() bool {
	if b.sem.TryAcquire(1) {
		b.sem.Release(1)
		return false
	}
	return true
}

// Option configures a page controller.
type Option func(*page)

// WithLogger routes refresh and mutation diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *page) { p.logger = logger }
}

// page is the state every controller shares.
type page struct {
	name   string
	client *storage.Client
	logger *log.Logger
	busy   *Busy
}

func newPage(name string, client *storage.Client, opts []Option) page {
	p := page{name: name, client: client, logger: log.Default(), busy: NewBusy()}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Busy exposes the page's in-flight guard so a UI can disable its controls.
func (p *page) Busy() *Busy {
	return p.busy
}

// refreshAfter logs a failed re-read following a successful mutation. The
// mutation's own result stands; the stale snapshot reports the error.
func (p *page) refreshAfter(ctx context.Context, refresh func(context.Context) error) {
	if err := refresh(ctx); err != nil {
		p.logger.Warn("refresh after change failed", "page", p.name, "err", err)
	}
}

// Tracker bundles the five page controllers over one client.
type Tracker struct {
	Home    *Home
	Weight  *Weight
	Diet    *Diet
	Fitness *Fitness
	Report  *Report
}

// New builds every page controller.
func New(client *storage.Client, recognizer recognition.Recognizer, opts ...Option) *Tracker {
	return &Tracker{
		Home:    NewHome(client, opts...),
		Weight:  NewWeight(client, opts...),
		Diet:    NewDiet(client, recognizer, opts...),
		Fitness: NewFitness(client, opts...),
		Report:  NewReport(client, opts...),
	}
}
