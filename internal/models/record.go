// ABOUTME: Shared record metadata for every per-user log collection.
// ABOUTME: Defines LogMeta, the Record constraint, and collection names.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection names the four logical tables owned by the record store.
type Collection string

const (
	CollectionWeight  Collection = "weight_logs"
	CollectionDiet    Collection = "diet_logs"
	CollectionFitness Collection = "fitness_logs"
	CollectionProfile Collection = "profiles"
)

// LogMeta carries the columns common to all log rows.
// ID and RecordedAt are assigned by the store when left zero.
type LogMeta struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	UserID     string    `json:"user_id" yaml:"user_id"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// Meta returns the metadata block so generic code can read and assign it.
func (m *LogMeta) Meta() *LogMeta {
	return m
}

// Record is implemented by pointers to WeightLog, DietLog and FitnessLog.
type Record interface {
	Meta() *LogMeta
}

// ShortID returns the 8-character ID prefix shown in listings.
func (m *LogMeta) ShortID() string {
	return m.ID.String()[:8]
}
