// ABOUTME: Charm KV backend for the record store, with automatic cloud sync.
// ABOUTME: Records are JSON under "<collection>:<user>:<id>" keys, filtered client-side.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/google/uuid"

	"github.com/harperreed/wellness/internal/models"
)

const (
	// DefaultCharmDB is the KV database name used by the charm backend.
	DefaultCharmDB = "wellness"
	// DefaultCharmHost is the Charm server records sync to.
	DefaultCharmHost = "charm.2389.dev"
)

// kvStore is the subset of *kv.KV the backend needs.
type kvStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	IsReadOnly() bool
	Close() error
}

var _ kvStore = (*kv.KV)(nil)

// CharmStore is a Store over a Charm KV database.
type CharmStore struct {
	kv       kvStore
	autoSync bool
	mu       sync.RWMutex
	now      func() time.Time
}

var _ Store = (*CharmStore)(nil)

// OpenCharm opens the named KV database against host, pulling remote data
// on startup unless another process holds the lock.
func OpenCharm(host, name string) (*CharmStore, error) {
	if host == "" {
		host = DefaultCharmHost
	}
	if name == "" {
		name = DefaultCharmDB
	}

	// Set server before opening KV
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, fmt.Errorf("set charm host: %w", err)
	}

	db, err := kv.OpenWithDefaultsFallback(name)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	s := newCharmStore(db)
	if !db.IsReadOnly() {
		_ = db.Sync()
	}
	return s, nil
}

func newCharmStore(db kvStore) *CharmStore {
	return &CharmStore{kv: db, autoSync: true, now: time.Now}
}

func (s *CharmStore) Weights() Table[*models.WeightLog] {
	return &charmTable[*models.WeightLog]{store: s, collection: models.CollectionWeight, newRecord: func() *models.WeightLog { return &models.WeightLog{} }}
}

func (s *CharmStore) Diets() Table[*models.DietLog] {
	return &charmTable[*models.DietLog]{store: s, collection: models.CollectionDiet, newRecord: func() *models.DietLog { return &models.DietLog{} }}
}

func (s *CharmStore) Fitness() Table[*models.FitnessLog] {
	return &charmTable[*models.FitnessLog]{store: s, collection: models.CollectionFitness, newRecord: func() *models.FitnessLog { return &models.FitnessLog{} }}
}

func (s *CharmStore) Profiles() ProfileTable {
	return &charmProfiles{store: s}
}

// Close closes the KV database.
func (s *CharmStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Close()
}

// IsReadOnly returns true if another process (like an MCP server) holds the lock.
func (s *CharmStore) IsReadOnly() bool {
	return s.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (s *CharmStore) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kv.IsReadOnly() {
		return nil
	}
	return s.kv.Sync()
}

// CharmID returns the Charm account id this machine is linked to.
func CharmID(host string) (string, error) {
	if host == "" {
		host = DefaultCharmHost
	}
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return "", fmt.Errorf("set charm host: %w", err)
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// SetAutoSync enables or disables automatic sync after writes.
func (s *CharmStore) SetAutoSync(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSync = enabled
}

// syncIfEnabled calls Sync if autoSync is enabled. Caller holds mu.
func (s *CharmStore) syncIfEnabled() {
	if s.autoSync && !s.kv.IsReadOnly() {
		_ = s.kv.Sync()
	}
}

func (s *CharmStore) set(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := s.kv.Set([]byte(key), data); err != nil {
		return err
	}
	s.syncIfEnabled()
	return nil
}

// delete removes key if present.
func (s *CharmStore) delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv.IsReadOnly() {
		return ErrReadOnly
	}

	keys, err := s.kv.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if string(k) == key {
			if err := s.kv.Delete(k); err != nil {
				return err
			}
			s.syncIfEnabled()
			return nil
		}
	}
	return nil
}

// get returns the value for key, or nil when absent.
func (s *CharmStore) get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys, err := s.kv.Keys()
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if string(k) == key {
			return s.kv.Get(k)
		}
	}
	return nil, nil
}

// listByPrefix returns all values with keys matching the given prefix.
func (s *CharmStore) listByPrefix(prefix string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys, err := s.kv.Keys()
	if err != nil {
		return nil, err
	}

	var results [][]byte
	prefixBytes := []byte(prefix)
	for _, key := range keys {
		if bytes.HasPrefix(key, prefixBytes) {
			val, err := s.kv.Get(key)
			if err != nil {
				return nil, err
			}
			results = append(results, val)
		}
	}
	return results, nil
}

func userPrefix(c models.Collection, userID string) string {
	return string(c) + ":" + userID + ":"
}

func recordKey(c models.Collection, userID string, id uuid.UUID) string {
	return userPrefix(c, userID) + id.String()
}

type charmTable[R models.Record] struct {
	store      *CharmStore
	collection models.Collection
	newRecord  func() R
}

func (t *charmTable[R]) ListByUserAndRange(_ context.Context, userID string, rng Range, order Order) ([]R, error) {
	all, err := t.store.listByPrefix(userPrefix(t.collection, userID))
	if err != nil {
		return nil, storeErr("list", t.collection, KindTransport, err)
	}

	out := make([]R, 0, len(all))
	for _, data := range all {
		rec := t.newRecord()
		if err := json.Unmarshal(data, rec); err != nil {
			continue // Skip invalid entries
		}
		if rng.Contains(rec.Meta().RecordedAt) {
			out = append(out, rec)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Meta(), out[j].Meta()
		if !a.RecordedAt.Equal(b.RecordedAt) {
			if order == Descending {
				return a.RecordedAt.After(b.RecordedAt)
			}
			return a.RecordedAt.Before(b.RecordedAt)
		}
		if order == Descending {
			return a.ID.String() > b.ID.String()
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

func (t *charmTable[R]) Insert(_ context.Context, rec R) (R, error) {
	var zero R
	m := rec.Meta()
	if m.UserID == "" {
		return zero, storeErr("insert", t.collection, KindConstraint, ErrMissingUser)
	}
	stamp(m, t.store.now())

	data, err := json.Marshal(rec)
	if err != nil {
		return zero, storeErr("insert", t.collection, KindConstraint, fmt.Errorf("marshal record: %w", err))
	}
	if err := t.store.set(recordKey(t.collection, m.UserID, m.ID), data); err != nil {
		return zero, storeErr("insert", t.collection, KindTransport, err)
	}
	return rec, nil
}

func (t *charmTable[R]) DeleteByID(_ context.Context, userID string, id uuid.UUID) error {
	if err := t.store.delete(recordKey(t.collection, userID, id)); err != nil {
		return storeErr("delete", t.collection, KindTransport, err)
	}
	return nil
}

type charmProfiles struct {
	store *CharmStore
}

func profileKey(userID string) string {
	return string(models.CollectionProfile) + ":" + userID
}

func (p *charmProfiles) Get(_ context.Context, userID string) (*models.Profile, error) {
	data, err := p.store.get(profileKey(userID))
	if err != nil {
		return nil, storeErr("get", models.CollectionProfile, KindTransport, err)
	}
	if data == nil {
		return nil, nil
	}
	var prof models.Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, storeErr("get", models.CollectionProfile, KindTransport, fmt.Errorf("unmarshal profile: %w", err))
	}
	return &prof, nil
}

func (p *charmProfiles) Upsert(ctx context.Context, userID string, fields models.ProfileFields) (*models.Profile, error) {
	if userID == "" {
		return nil, storeErr("upsert", models.CollectionProfile, KindConstraint, ErrMissingUser)
	}
	prof, err := p.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prof == nil {
		prof = &models.Profile{ID: userID}
	}
	fields.Apply(prof)
	prof.UpdatedAt = p.store.now()

	data, err := json.Marshal(prof)
	if err != nil {
		return nil, storeErr("upsert", models.CollectionProfile, KindConstraint, fmt.Errorf("marshal profile: %w", err))
	}
	if err := p.store.set(profileKey(userID), data); err != nil {
		return nil, storeErr("upsert", models.CollectionProfile, KindTransport, err)
	}
	return prof, nil
}
